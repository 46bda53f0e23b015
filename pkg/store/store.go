// Package store persists layout packages: a layout model together with the
// SVG preview and DXF cut file rendered from it.
//
// Backends implement [Store]:
//   - [Memory]: in-process storage for tests and one-off servers
//   - [SQLite]: a single database file, the CLI and small-deployment default
//   - [Mongo]: shared storage for multi-instance servers
//
// A [Package] is always created with [NewPackage], which renders both
// artifacts through the same exporters the CLI uses, so the stored preview
// and cut file can never disagree with the model next to them.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/export/dxf"
	"github.com/matzehuels/foamlayout/pkg/export/svg"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Package is a stored layout with its rendered artifacts. SVGText or DXFText
// is empty when the exporter produced no output for the model.
type Package struct {
	ID        string       `json:"id"`
	Layout    layout.Model `json:"layout"`
	SVGText   string       `json:"svgText"`
	DXFText   string       `json:"dxfText"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Store is the interface for package storage backends.
type Store interface {
	// Save inserts or replaces a package.
	Save(ctx context.Context, p *Package) error

	// Get returns the package with id, or an ErrCodePackageNotFound error.
	Get(ctx context.Context, id string) (*Package, error)

	// List returns up to limit packages, newest first.
	List(ctx context.Context, limit int) ([]*Package, error)

	// Delete removes a package. Deleting a missing package is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh package identifier.
func NewID() string {
	return uuid.NewString()
}

// NewPackage renders m and wraps it in a new package record.
func NewPackage(m layout.Model) *Package {
	return &Package{
		ID:        NewID(),
		Layout:    m,
		SVGText:   string(svg.Render(m)),
		DXFText:   string(dxf.Render(m)),
		CreatedAt: time.Now().UTC(),
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodePackageNotFound, "package %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
