package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const baseURL = "https://wkflws-shopify.schemas.local/"

// ErrValidation matches every *ValidationError through errors.Is
var ErrValidation = errors.New("validation failed")

// FieldError is a single failed check. Field is the JSON pointer of the
// offending value without the leading slash, empty for the document root.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

/* ValidationError reports every leaf failure of a schema check
 * so callers can surface field-level detail instead of a single message
 */
type ValidationError struct {
	Schema string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validator is a compiled JSON Schema. Safe for concurrent use.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles a Draft 2020-12 schema document registered under name
func Compile(name, doc string) (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := baseURL + name + ".schema.json"
	if err := c.AddResource(url, strings.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return &Validator{name: name, schema: compiled}, nil
}

// MustCompile is like Compile but panics on error. For package level schemas.
func MustCompile(name, doc string) *Validator {
	v, err := Compile(name, doc)
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the name the schema was compiled under
func (v *Validator) Name() string {
	return v.name
}

// Validate checks data against the schema. data may be any JSON-encodable
// value; it is normalized to the decoded JSON form before validation.
func (v *Validator) Validate(data any) error {
	doc, err := normalize(data)
	if err != nil {
		return fmt.Errorf("normalizing %s input: %w", v.name, err)
	}

	err = v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validating %s: %w", v.name, err)
	}
	return &ValidationError{Schema: v.name, Fields: flatten(verr)}
}

// normalize turns arbitrary Go values (typed maps, ints, structs) into the
// generic map[string]any / []any / json.Number form the validator accepts
func normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func flatten(verr *jsonschema.ValidationError) []FieldError {
	var out []FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, FieldError{
				Field:   strings.TrimPrefix(e.InstanceLocation, "/"),
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return out
}
