// Package actionschema validates next-action payloads against JSON Schemas
// before they are decoded.
//
// Plug a Validator into a decoder to demote actions whose payload breaks
// the schema, with the schema errors reported to demotion hooks:
//
//	decoder := paykit.NewDecoder(
//	    paykit.WithPayloadValidator(actionschema.MustNew()),
//	)
package actionschema

import (
	"embed"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/types"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// ValidationResult represents the result of validating an action
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validator holds one compiled schema per action kind.
// It is safe for concurrent use.
type Validator struct {
	schemas map[paykit.ActionKind]*gojsonschema.Schema
}

// New compiles the bundled schemas
func New() (*Validator, error) {
	v := &Validator{schemas: make(map[paykit.ActionKind]*gojsonschema.Schema)}
	for _, kind := range []paykit.ActionKind{paykit.ActionKindRedirectToURL, paykit.ActionKindUseStripeSDK} {
		data, err := schemaFiles.ReadFile("schemas/" + string(kind) + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s schema: %w", kind, err)
		}
		if err := v.Register(kind, data); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// MustNew is like New but panics if a bundled schema does not compile
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Register compiles schemaJSON and uses it for kind, replacing any previous schema.
// Register must not be called concurrently with validation.
func (v *Validator) Register(kind paykit.ActionKind, schemaJSON []byte) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return fmt.Errorf("failed to compile %s schema: %w", kind, err)
	}
	v.schemas[kind] = schema
	return nil
}

// Kinds lists the kinds that have a schema
func (v *Validator) Kinds() []paykit.ActionKind {
	kinds := make([]paykit.ActionKind, 0, len(v.schemas))
	for kind := range v.schemas {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ValidatePayload implements paykit.PayloadValidator.
// Kinds without a schema always pass.
func (v *Validator) ValidatePayload(kind paykit.ActionKind, payload types.Fields) []string {
	schema, ok := v.schemas[kind]
	if !ok {
		return nil
	}
	return validate(schema, payload).Errors
}

// ValidateAction validates a whole action object: the type tag and, for
// known kinds, the nested payload.
func (v *Validator) ValidateAction(fields types.Fields) ValidationResult {
	declared, ok := fields.String("type")
	if !ok {
		return ValidationResult{Valid: false, Errors: []string{"(root): type is required"}}
	}

	kind := paykit.ActionKindFromString(declared)
	schema, known := v.schemas[kind]
	if !known {
		return ValidationResult{Valid: true}
	}

	payload, ok := fields.Mapping(string(kind))
	if !ok {
		return ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("(root): %s is required", kind)}}
	}
	return validate(schema, payload)
}

func validate(schema *gojsonschema.Schema, payload types.Fields) ValidationResult {
	result, err := schema.Validate(gojsonschema.NewGoLoader(map[string]interface{}(payload)))
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("Schema validation failed: %v", err)},
		}
	}

	if result.Valid() {
		return ValidationResult{Valid: true}
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, fmt.Sprintf("%s: %s", desc.Context().String(), desc.Description()))
	}
	return ValidationResult{Valid: false, Errors: errors}
}

var _ paykit.PayloadValidator = (*Validator)(nil)
