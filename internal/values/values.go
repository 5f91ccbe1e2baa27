package values

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/tidwall/gjson"
)

// Values maps keys to translated strings while remembering insertion order.
// The zero value is an empty mapping ready for use. A key holding "" is
// present, which is distinct from a missing key.
type Values struct {
	order []keys.Key
	data  map[keys.Key]string
}

// FromPairs builds a mapping from alternating key/value arguments. A trailing
// key without a value is ignored.
func FromPairs(pairs ...string) Values {
	var v Values
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(keys.Key(pairs[i]), pairs[i+1])
	}
	return v
}

// FromMap builds a mapping from a Go map. Go maps carry no order, so keys are
// sorted to keep the result deterministic.
func FromMap(src map[string]string) Values {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)
	var v Values
	for _, name := range names {
		v.Set(keys.Key(name), src[name])
	}
	return v
}

// Len returns the number of keys.
func (v Values) Len() int { return len(v.order) }

// Keys returns the keys in insertion order.
func (v Values) Keys() []keys.Key {
	if len(v.order) == 0 {
		return nil
	}
	out := make([]keys.Key, len(v.order))
	copy(out, v.order)
	return out
}

// Get returns the value stored at key and whether the key is present.
func (v Values) Get(key keys.Key) (string, bool) {
	value, ok := v.data[key]
	return value, ok
}

// Has reports whether key is present.
func (v Values) Has(key keys.Key) bool {
	_, ok := v.data[key]
	return ok
}

// Set stores value at key. New keys are appended; existing keys keep their
// position.
func (v *Values) Set(key keys.Key, value string) {
	if v.data == nil {
		v.data = make(map[keys.Key]string)
	}
	if _, ok := v.data[key]; !ok {
		v.order = append(v.order, key)
	}
	v.data[key] = value
}

// Each visits entries in order until fn returns false.
func (v Values) Each(fn func(key keys.Key, value string) bool) {
	for _, key := range v.order {
		if !fn(key, v.data[key]) {
			return
		}
	}
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	var out Values
	v.Each(func(key keys.Key, value string) bool {
		out.Set(key, value)
		return true
	})
	return out
}

// Merge returns a copy of v updated with every entry of other.
func (v Values) Merge(other Values) Values {
	out := v.Clone()
	other.Each(func(key keys.Key, value string) bool {
		out.Set(key, value)
		return true
	})
	return out
}

// Map flattens the mapping into a plain Go map.
func (v Values) Map() map[string]string {
	out := make(map[string]string, len(v.order))
	v.Each(func(key keys.Key, value string) bool {
		out[string(key)] = value
		return true
	})
	return out
}

// Equal reports whether both mappings hold the same entries, ignoring order.
func (v Values) Equal(other Values) bool {
	if v.Len() != other.Len() {
		return false
	}
	for key, value := range v.data {
		got, ok := other.data[key]
		if !ok || got != value {
			return false
		}
	}
	return true
}

// String renders the mapping as its JSON document.
func (v Values) String() string {
	return string(v.Encode())
}

// Encode renders the mapping as a compact JSON object in insertion order.
func (v Values) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	v.Each(func(key keys.Key, value string) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(Quote(string(key)))
		buf.WriteByte(':')
		buf.Write(Quote(value))
		return true
	})
	buf.WriteByte('}')
	return buf.Bytes()
}

// MarshalJSON implements json.Marshaler preserving insertion order.
func (v Values) MarshalJSON() ([]byte, error) {
	return v.Encode(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Unlike Parse it rejects
// documents that are not JSON objects.
func (v *Values) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = Values{}
		return nil
	}
	parsed, ok := Parse(trimmed)
	if !ok {
		return fmt.Errorf("values: expected a JSON object, got %q", truncate(trimmed))
	}
	*v = parsed
	return nil
}

// Value implements driver.Valuer so Values can back a JSON column.
func (v Values) Value() (driver.Value, error) {
	return string(v.Encode()), nil
}

// Scan implements sql.Scanner. Malformed or absent content scans to an empty
// mapping so reads stay total.
func (v *Values) Scan(src any) error {
	switch data := src.(type) {
	case nil:
		*v = Values{}
	case []byte:
		*v, _ = Parse(data)
	case string:
		*v, _ = Parse([]byte(data))
	default:
		return fmt.Errorf("values: cannot scan %T", src)
	}
	return nil
}

// Parse decodes a JSON object keeping document order. It reports false when
// the input is empty, malformed, or not an object, returning an empty mapping.
// Null members decode to "", other scalars to their textual form.
func Parse(data []byte) (Values, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return Values{}, false
	}
	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return Values{}, false
	}
	var out Values
	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			out.Set(keys.Key(key.String()), "")
			return true
		}
		out.Set(keys.Key(key.String()), value.String())
		return true
	})
	return out, true
}

// Quote encodes s as a JSON string without HTML escaping. It is the single
// string encoder used for stored documents, so query fragments built with it
// match serialized content byte for byte.
func Quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

func truncate(data []byte) string {
	const limit = 64
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
