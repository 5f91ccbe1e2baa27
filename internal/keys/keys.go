package keys

import (
	"strings"

	"golang.org/x/text/language"
)

// Key identifies a translated variant: a locale tag such as "en" or a sales
// channel tag such as "ebay".
type Key string

// String returns the key as stored in the serialized mapping.
func (k Key) String() string { return string(k) }

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool { return k == "" }

// Domain selects how keys are normalized and how the active key is resolved.
type Domain uint8

const (
	// DomainLocale keys are BCP 47 locale tags resolved from the active locale.
	DomainLocale Domain = iota
	// DomainChannel keys are free-form channel tags resolved from the active
	// channel, falling back to the declaration default.
	DomainChannel
)

func (d Domain) String() string {
	switch d {
	case DomainChannel:
		return "channel"
	default:
		return "locale"
	}
}

// Normalize converts a caller supplied key into its canonical form. Locale keys
// keep BCP 47 casing ("en", "en-US") without remapping deprecated codes;
// channel keys and unparsable locales are trimmed and lowercased.
func Normalize(domain Domain, raw string) Key {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if domain == DomainLocale {
		if tag, err := language.Raw.Parse(strings.ReplaceAll(trimmed, "_", "-")); err == nil {
			return Key(tag.String())
		}
	}
	return Key(strings.ToLower(trimmed))
}

// NormalizeAll normalizes keys, dropping empties and duplicates while keeping
// the first occurrence order.
func NormalizeAll(domain Domain, raws []string) []Key {
	if len(raws) == 0 {
		return nil
	}
	out := make([]Key, 0, len(raws))
	seen := make(map[Key]struct{}, len(raws))
	for _, raw := range raws {
		key := Normalize(domain, raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Strings renders keys back to plain strings.
func Strings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = string(key)
	}
	return out
}
