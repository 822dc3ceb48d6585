// internal/extraction/schema.go
package extraction

import "proposal-engine/internal/common/validation"

// responseSchema is the contract the extraction service must honor. Params
// arrive as an ordered array of name/value pairs so the engine never depends
// on JSON object key order. Violations are fatal, never coerced.
const responseSchema = `{
  "type": "object",
  "required": ["requirements"],
  "properties": {
    "requirements": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["itemId", "description", "quantity"],
        "properties": {
          "itemId": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "quantity": {"type": "integer", "minimum": 1},
          "unit": {"type": "string"},
          "params": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "value"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "value": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "tests": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "perUnit"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "method": {"type": "string"},
          "perUnit": {"type": "boolean"},
          "appliesTo": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "inferred": {"type": "boolean"}
  }
}`

var responseValidator = validation.MustValidator("extraction response", responseSchema)
