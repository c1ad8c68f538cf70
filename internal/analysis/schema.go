package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

var (
	compileOnce sync.Once
	compiled    *santhosh.Schema
	compileErr  error
)

// Schema returns the JSON schema of Analysis as a generic map. All fields are
// optional and unknown properties are tolerated.
func Schema() map[string]any {
	return reflectSchema(true)
}

// StrictSchema returns the schema in the form structured-output providers
// require: every property listed as required and no additional properties.
func StrictSchema() map[string]any {
	m := reflectSchema(false)
	ensureStrict(m)
	return m
}

// SchemaJSON returns the property definitions of StrictSchema, indented for prompts.
func SchemaJSON() string {
	b, err := json.MarshalIndent(StrictSchema()[propertiesKey], "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func reflectSchema(allowAdditional bool) map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  allowAdditional,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&Analysis{})
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(fmt.Sprintf("analysis schema: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(fmt.Sprintf("analysis schema: %v", err))
	}
	// The compiler resolves $schema over the network otherwise.
	delete(m, "$schema")
	delete(m, "$id")
	return m
}

func ensureStrict(schema map[string]any) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false
		if properties, ok := schema[propertiesKey].(map[string]any); ok {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema[requiredKey] = required
			}
		}
	}
	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureStrict(propMap)
			}
		}
	}
	if items, ok := schema[itemsKey].(map[string]any); ok {
		ensureStrict(items)
	}
}

// Validate checks a decoded JSON document against Schema.
func Validate(doc any) error {
	compileOnce.Do(func() {
		b, err := json.Marshal(Schema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := santhosh.NewCompiler()
		if err := compiler.AddResource("analysis.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("analysis.json")
	})
	if compileErr != nil {
		return compileErr
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
