package normalizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// extractionSchema describes the layout the extraction backend is expected to
// produce. Every property is optional and unknown keys are allowed.
const extractionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "section": {
      "type": "object",
      "properties": {
        "section_name": {"type": "string"},
        "fields": {
          "type": "array",
          "items": {"type": "object"}
        }
      }
    }
  },
  "properties": {
    "document_type": {"type": "string"},
    "summary": {"type": "string"},
    "signatures_detected": {"type": "boolean"},
    "sections": {"type": "array", "items": {"$ref": "#/definitions/section"}},
    "cleaned_sections": {"type": "array", "items": {"$ref": "#/definitions/section"}},
    "tables": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "table_name": {"type": "string"},
          "headers": {"type": "array", "items": {"type": "string"}},
          "rows": {"type": "array"}
        }
      }
    },
    "key_entities": {
      "type": "object",
      "additionalProperties": {"type": "array"}
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extraction.json", strings.NewReader(extractionSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("extraction.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

func checkShape(obj gjson.Result) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(obj.Value()); err != nil {
		return fmt.Errorf("unexpected extraction layout: %w", err)
	}
	return nil
}
