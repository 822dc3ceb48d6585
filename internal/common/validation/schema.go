// Package validation checks externally supplied payloads against JSON
// schemas. Schema violations are fatal: the caller must surface them, never
// coerce the payload into shape.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validator holds a compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
	name   string
}

// NewValidator compiles a JSON schema document.
func NewValidator(name, schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &Validator{schema: schema, name: name}, nil
}

// MustValidator compiles a schema known at build time.
func MustValidator(name, schemaJSON string) *Validator {
	v, err := NewValidator(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateBytes checks a raw JSON document against the schema. The returned
// error lists every violation.
func (v *Validator) ValidateBytes(doc []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%s payload is not valid JSON: %w", v.name, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%s payload failed schema validation: %s", v.name, strings.Join(msgs, "; "))
}
