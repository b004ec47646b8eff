// Package schema generates the JSON schema of the save format and validates
// save documents against it.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	validation "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

const resourceName = "game_state.schema.json"

// Generate reflects GameState into a JSON schema document. Members are never
// required and unknown members are allowed, so older and newer saves still
// load; only the types of known members are checked.
func Generate() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
	}

	s := reflector.Reflect(&game.GameState{})
	if s == nil {
		return nil, fmt.Errorf("failed to reflect game state schema")
	}
	s.Title = "Idle Colony Save"
	s.Description = "Versioned save state of an idle colony simulation."

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

// Export writes the generated schema to path, creating parent directories
func Export(path string) error {
	data, err := Generate()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}

// Validator checks raw save documents against the generated schema
type Validator struct {
	schema *validation.Schema
}

// NewValidator compiles the generated schema
func NewValidator() (*Validator, error) {
	data, err := Generate()
	if err != nil {
		return nil, err
	}

	compiler := validation.NewCompiler()
	if err := compiler.AddResource(resourceName, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks a JSON save document. Null members are treated as absent
// since an empty Go slice or map encodes as null.
func (v *Validator) Validate(data []byte) error {
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("save is not valid JSON: %w", err)
	}

	if err := v.schema.Validate(dropNulls(doc)); err != nil {
		return fmt.Errorf("save does not match schema: %w", err)
	}
	return nil
}

func dropNulls(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(child)
		}
	case []interface{}:
		for i, child := range t {
			t[i] = dropNulls(child)
		}
	}
	return v
}
