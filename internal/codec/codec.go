package codec

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-translatable/internal/schema"
	"github.com/goliatone/go-translatable/internal/values"
)

// Kind classifies how a column stores the translated mapping.
type Kind uint8

const (
	// KindText columns hold the mapping as a JSON-encoded string.
	KindText Kind = iota
	// KindJSON columns natively store structured key/value data.
	KindJSON
)

func (k Kind) String() string {
	if k == KindJSON {
		return "json"
	}
	return "text"
}

// ParseKind maps "json"/"jsonb" to KindJSON and everything else to KindText.
func ParseKind(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "jsonb", "native":
		return KindJSON
	default:
		return KindText
	}
}

// Codec converts between the in-memory mapping and the raw column value.
// Decode is total: malformed or absent input decodes to an empty mapping.
type Codec interface {
	Kind() Kind
	Encode(v values.Values) any
	Decode(raw any) values.Values
}

// ForKind returns the codec for kind.
func ForKind(kind Kind) Codec {
	if kind == KindJSON {
		return nativeCodec{}
	}
	return textCodec{}
}

// Classify derives the storage kind from column metadata. Columns whose type
// is unknown or missing are treated as text.
func Classify(col schema.Column) Kind {
	if !col.Exists {
		return KindText
	}
	return ParseKind(col.Type)
}

type nativeCodec struct{}

func (nativeCodec) Kind() Kind { return KindJSON }

// Encode returns the mapping itself; the column type carries the structure.
func (nativeCodec) Encode(v values.Values) any {
	return v.Clone()
}

func (nativeCodec) Decode(raw any) values.Values {
	return decodeAny(raw)
}

type textCodec struct{}

func (textCodec) Kind() Kind { return KindText }

func (textCodec) Encode(v values.Values) any {
	return string(v.Encode())
}

func (textCodec) Decode(raw any) values.Values {
	return decodeAny(raw)
}

// decodeAny accepts every shape a record or driver may hand over: the mapping
// itself, Go maps, or JSON documents as strings or bytes.
func decodeAny(raw any) values.Values {
	switch data := raw.(type) {
	case nil:
		return values.Values{}
	case values.Values:
		return data.Clone()
	case *values.Values:
		if data == nil {
			return values.Values{}
		}
		return data.Clone()
	case map[string]string:
		return values.FromMap(data)
	case map[string]any:
		return fromAnyMap(data)
	case string:
		parsed, _ := values.Parse([]byte(data))
		return parsed
	case *string:
		if data == nil {
			return values.Values{}
		}
		parsed, _ := values.Parse([]byte(*data))
		return parsed
	case json.RawMessage:
		parsed, _ := values.Parse(data)
		return parsed
	case []byte:
		parsed, _ := values.Parse(data)
		return parsed
	default:
		return values.Values{}
	}
}

func fromAnyMap(src map[string]any) values.Values {
	flat := make(map[string]string, len(src))
	for key, value := range src {
		switch v := value.(type) {
		case nil:
			flat[key] = ""
		case string:
			flat[key] = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			flat[key] = string(encoded)
		}
	}
	return values.FromMap(flat)
}
