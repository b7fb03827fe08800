package ingest

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema describes the stored directory snapshot.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "category", "lat", "lon", "media"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string"},
      "category": {"type": "string"},
      "tagline": {"type": "string"},
      "description": {"type": "string"},
      "lat": {"type": "string"},
      "lon": {"type": "string"},
      "media": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["type", "url"],
          "properties": {
            "type": {"enum": ["image", "video"]},
            "url": {"type": "string"}
          }
        }
      },
      "_debug_headers": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var snapshotSchemaLoader = gojsonschema.NewStringLoader(snapshotSchema)

// SnapshotError lists the schema violations of a stored snapshot.
type SnapshotError struct {
	Problems []string
}

func (e *SnapshotError) Error() string {
	return "invalid snapshot: " + strings.Join(e.Problems, "; ")
}

// ValidateSnapshot checks that data is a well-formed company array.
func ValidateSnapshot(data []byte) error {
	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SnapshotError{Problems: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return &SnapshotError{Problems: problems}
}
