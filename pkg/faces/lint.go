package faces

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL is the identifier the embedded schema is compiled under.
const schemaURL = "https://foamlayout.dev/schemas/faces.schema.json"

// Schema is the JSON schema of a well-formed faces document.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["loops"],
  "properties": {
    "units": {"enum": ["in", "mm"]},
    "outerLoopIndex": {"type": "integer", "minimum": 0},
    "loops": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["points"],
        "properties": {
          "points": {
            "type": "array",
            "minItems": 3,
            "items": {
              "type": "object",
              "required": ["x", "y"],
              "properties": {
                "x": {"type": "number"},
                "y": {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = jsonschema.CompileString(schemaURL, Schema)
	})
	return compiled, compileErr
}

// Issue is one finding reported by [Lint].
type Issue struct {
	Path    string `json:"path"`    // JSON pointer into the document
	Message string `json:"message"` // human-readable description
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Lint reports everything in data that [Extract] would silently repair:
// schema violations, loops that lose too many points and an outer loop index
// that does not resolve. An empty result means the document is clean. The
// returned error is non-nil only for malformed JSON.
func Lint(data []byte) ([]Issue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode faces: %w", err)
	}

	var issues []Issue
	s, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile faces schema: %w", err)
	}
	if err := s.Validate(raw); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			for _, be := range ve.BasicOutput().Errors {
				// The root entry only says the document failed; its causes follow.
				if be.Error == "" || be.KeywordLocation == "" {
					continue
				}
				issues = append(issues, Issue{Path: be.InstanceLocation, Message: be.Error})
			}
		} else {
			issues = append(issues, Issue{Message: err.Error()})
		}
	}

	doc, err := Parse(data)
	if err != nil {
		return issues, nil
	}
	for i, loop := range doc.Loops {
		if _, ok := clean(i, loop); !ok {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("/loops/%d", i),
				Message: fmt.Sprintf("fewer than %d usable points; loop will be skipped", MinRingPoints),
			})
		}
	}
	if doc.OuterLoopIndex != nil {
		if idx := *doc.OuterLoopIndex; idx < 0 || idx >= len(doc.Loops) {
			issues = append(issues, Issue{
				Path:    "/outerLoopIndex",
				Message: fmt.Sprintf("index %d out of range; loop 0 will be used", idx),
			})
		}
	}
	if ext := Extract(doc); len(doc.Loops) > 0 && !ext.OK {
		issues = append(issues, Issue{
			Message: "outer loop has no area; the default block will be used",
		})
	}
	return issues, nil
}
