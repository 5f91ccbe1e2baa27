package translation

import (
	"testing"

	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/goliatone/go-translatable/internal/values"
)

func newLocaleStore(kind codec.Kind) *Store {
	return NewStore(keys.DomainLocale, "de", codec.ForKind(kind))
}

func TestReadDefaultsNewRecordToCurrentKey(t *testing.T) {
	store := newLocaleStore(codec.KindText)

	got := store.Read(nil, Scope{Current: "en", IsNew: true})
	if got.Len() != 1 {
		t.Fatalf("expected a single entry, got %v", got.Map())
	}
	if value, ok := got.Get("en"); !ok || value != "" {
		t.Fatalf("expected {en: \"\"}, got %v", got.Map())
	}

	persisted := store.Read("", Scope{Current: "en"})
	if persisted.Len() != 0 {
		t.Fatalf("expected empty mapping for persisted record, got %v", persisted.Map())
	}
}

func TestReadNormalizesKeys(t *testing.T) {
	store := newLocaleStore(codec.KindText)

	got := store.Read(`{"EN":"hello","pt_br":"olá"}`, Scope{Current: "en"})
	if value, _ := got.Get("en"); value != "hello" {
		t.Fatalf("expected en to be normalized, got %v", got.Map())
	}
	if value, _ := got.Get("pt-BR"); value != "olá" {
		t.Fatalf("expected pt-BR to be normalized, got %v", got.Map())
	}
}

func TestReadTreatsMalformedAsEmpty(t *testing.T) {
	store := newLocaleStore(codec.KindText)

	for _, raw := range []any{"{not json", "[1,2]", 12, []byte("null")} {
		if got := store.Read(raw, Scope{Current: "en"}); got.Len() != 0 {
			t.Fatalf("Read(%#v) = %v, want empty", raw, got.Map())
		}
	}
}

func TestLookupFallbackChain(t *testing.T) {
	store := newLocaleStore(codec.KindText)
	scope := Scope{Current: "en"}

	cases := []struct {
		name  string
		raw   string
		key   keys.Key
		want  string
		found bool
	}{
		{name: "exact", raw: `{"en":"en","de":"de"}`, key: "en", want: "en", found: true},
		{name: "fallback", raw: `{"en":"","de":"de"}`, key: "en", want: "de", found: true},
		{name: "first non-empty", raw: `{"de":"","en":"first val"}`, key: "it", want: "first val", found: true},
		{name: "first in order", raw: `{"fr":"","es":"es","en":"en"}`, key: "it", want: "es", found: true},
		{name: "absent", raw: `{"de":"","en":""}`, key: "it", want: "", found: false},
		{name: "empty mapping", raw: `{}`, key: "en", want: "", found: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := store.Lookup(tc.raw, scope, tc.key)
			if got != tc.want || ok != tc.found {
				t.Fatalf("Lookup(%s, %s) = (%q, %v), want (%q, %v)", tc.raw, tc.key, got, ok, tc.want, tc.found)
			}
		})
	}
}

func TestWriteMergesAtCurrentKey(t *testing.T) {
	for _, kind := range []codec.Kind{codec.KindText, codec.KindJSON} {
		t.Run(kind.String(), func(t *testing.T) {
			store := newLocaleStore(kind)
			raw := store.Replace(values.FromPairs("en", "hello", "de", "hallo"))

			raw = store.Write(raw, Scope{Current: "es"}, "hola")
			got := store.Read(raw, Scope{})
			want := values.FromPairs("en", "hello", "de", "hallo", "es", "hola")
			if !got.Equal(want) {
				t.Fatalf("expected merge %v, got %v", want.Map(), got.Map())
			}

			raw = store.Write(raw, Scope{Current: "en"}, "hi")
			if value := store.ValueFor(raw, Scope{}, "en"); value != "hi" {
				t.Fatalf("expected overwritten en, got %q", value)
			}
			if value := store.ValueFor(raw, Scope{}, "de"); value != "hallo" {
				t.Fatalf("expected untouched de, got %q", value)
			}
		})
	}
}

func TestWriteKeyLeavesOtherKeysUntouched(t *testing.T) {
	store := NewStore(keys.DomainChannel, "vev", codec.ForKind(codec.KindText))
	scope := Scope{Current: "vev"}

	raw := store.WriteKey(nil, scope, "vev", "base")
	raw = store.WriteKey(raw, scope, store.Normalize("EBAY"), "auction")

	got := store.Read(raw, scope)
	if !got.Equal(values.FromPairs("vev", "base", "ebay", "auction")) {
		t.Fatalf("unexpected mapping %v", got.Map())
	}
	if keysInOrder := got.Keys(); keysInOrder[0] != "vev" || keysInOrder[1] != "ebay" {
		t.Fatalf("expected insertion order to be kept, got %v", keysInOrder)
	}
}

func TestReplaceIsTotal(t *testing.T) {
	store := newLocaleStore(codec.KindText)

	raw := store.Replace(values.FromPairs("en", "a", "de", "b", "es", "c"))
	raw = store.Replace(values.FromPairs("fr", "d"))

	got := store.Read(raw, Scope{Current: "en"})
	if !got.Equal(values.FromPairs("fr", "d")) {
		t.Fatalf("replacement must not merge, got %v", got.Map())
	}
}

func TestReplaceIsIdempotent(t *testing.T) {
	store := newLocaleStore(codec.KindJSON)
	mapping := values.FromPairs("en", "one", "de", "")

	first := store.Replace(mapping)
	second := store.Replace(store.Read(first, Scope{}))
	for _, key := range []keys.Key{"en", "de", "it"} {
		if a, b := store.ValueFor(first, Scope{}, key), store.ValueFor(second, Scope{}, key); a != b {
			t.Fatalf("key %s resolved differently: %q vs %q", key, a, b)
		}
	}
}

func TestWriteOnNewRecordSeedsMapping(t *testing.T) {
	store := newLocaleStore(codec.KindText)
	scope := Scope{Current: "en", IsNew: true}

	raw := store.WriteKey(nil, scope, "de", "Titel")
	got := store.Read(raw, scope)
	if !got.Equal(values.FromPairs("en", "", "de", "Titel")) {
		t.Fatalf("unexpected mapping %v", got.Map())
	}
}
