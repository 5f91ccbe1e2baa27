package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-translatable/internal/values"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid   = errors.New("document schema invalid")
	ErrDocumentInvalid = errors.New("translation document invalid")
)

// Issue captures a single validation failure.
type Issue struct {
	Location string
	Message  string
}

// DocumentError surfaces validation issues with their JSON pointer locations.
type DocumentError struct {
	Issues []Issue
	Cause  error
}

func (e *DocumentError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrDocumentInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *DocumentError) Unwrap() error {
	return ErrDocumentInvalid
}

// Issues extracts validation issues from an error.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var docErr *DocumentError
	if errors.As(err, &docErr) && docErr != nil {
		return docErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectIssues(validationErr)
	}
	return []Issue{{Message: err.Error()}}
}

// Validator checks stored translation documents: a JSON object whose values
// are strings (or null). Reads never depend on it; it backs diagnostics.
type Validator struct {
	schema *jsonschema.Schema
}

// Option customises the document schema.
type Option func(map[string]any)

// WithAllowedKeys restricts object keys to keys.
func WithAllowedKeys(keys ...string) Option {
	return func(schema map[string]any) {
		if len(keys) == 0 {
			return
		}
		enum := make([]any, 0, len(keys))
		for _, key := range keys {
			enum = append(enum, key)
		}
		schema["propertyNames"] = map[string]any{"enum": enum}
	}
}

// DocumentSchema renders the JSON schema used for translation documents.
func DocumentSchema(opts ...Option) map[string]any {
	schema := map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"type": []any{"string", "null"},
		},
		"propertyNames": map[string]any{"minLength": 1},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(schema)
		}
	}
	return schema
}

// NewValidator compiles the document schema.
func NewValidator(opts ...Option) (*Validator, error) {
	compiled, err := compileSchema(DocumentSchema(opts...))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks a raw column value. Absent content is valid.
func (v *Validator) Validate(raw any) error {
	doc, err := decode(raw)
	if err != nil {
		return &DocumentError{
			Issues: []Issue{{Location: "#", Message: err.Error()}},
			Cause:  err,
		}
	}
	if doc == nil {
		return nil
	}
	if err := v.schema.Validate(doc); err != nil {
		return &DocumentError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

func decode(raw any) (any, error) {
	var data []byte
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case string:
		data = []byte(typed)
	case *string:
		if typed == nil {
			return nil, nil
		}
		data = []byte(*typed)
	case []byte:
		data = typed
	case json.RawMessage:
		data = typed
	case values.Values:
		data = typed.Encode()
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return nil, err
		}
		data = encoded
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("malformed JSON: trailing data after document")
	}
	return doc, nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("document.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("document.json")
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	if err == nil {
		return nil
	}
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
