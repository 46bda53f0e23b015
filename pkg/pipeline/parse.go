package pipeline

import (
	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/faces"
)

// Parse decodes a faces document and applies the units override. Malformed
// JSON is the only failure; bad coordinates are left for the builder to drop.
func Parse(data []byte, opts Options) (faces.Document, error) {
	if len(data) == 0 {
		return faces.Document{}, errors.New(errors.ErrCodeInvalidInput, "faces document is empty")
	}
	doc, err := faces.Parse(data)
	if err != nil {
		return faces.Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode faces document")
	}
	if opts.Units != "" {
		doc.Units = opts.Units
	}
	return doc, nil
}
