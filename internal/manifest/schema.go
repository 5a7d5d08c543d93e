package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "version", "files"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["path", "hash", "size"],
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
          "size": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var manifestSchema = jsonschema.MustCompileString("manifest.schema.json", schemaJSON)

// validatePayload checks the decoded JSON document against the manifest
// schema before the typed value is trusted.
func validatePayload(payload []byte) error {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("decoding manifest payload: %w", err)
	}
	if err := manifestSchema.Validate(doc); err != nil {
		return fmt.Errorf("manifest schema: %w", err)
	}
	return nil
}
