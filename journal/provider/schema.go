package provider

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects T into a strict structured-output schema: every object
// closes additionalProperties and lists all of its properties as required.
func GenerateSchema[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schemaObj, err := schemaToMap(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("reflect schema for %T: %w", v, err)
	}
	ensureStrict(schemaObj)
	return schemaObj, nil
}

// MustGenerateSchema is GenerateSchema for package-level vars.
func MustGenerateSchema[T any]() map[string]any {
	s, err := GenerateSchema[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	// Strict mode rejects the draft marker on the root.
	delete(m, "$schema")
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

func ensureStrict(schema map[string]any) {
	if t, ok := schema[typeKey].(string); ok && t == "object" {
		schema[additionalPropertiesKey] = false
		if properties, ok := schema[propertiesKey].(map[string]any); ok && len(properties) > 0 {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			sort.Strings(required)
			schema[requiredKey] = required
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
