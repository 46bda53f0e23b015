package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/export/dxf"
	"github.com/matzehuels/foamlayout/pkg/export/svg"
	"github.com/matzehuels/foamlayout/pkg/faces"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

func rectLoop(x0, y0, x1, y1 float64) faces.Loop {
	return faces.Loop{Points: []faces.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}}
}

func sampleModel() layout.Model {
	return layout.FromFaces(faces.Document{
		Units: "in",
		Loops: []faces.Loop{rectLoop(0, 0, 12, 8), rectLoop(1, 1, 4, 3), rectLoop(6, 2, 10, 7)},
	})
}

func samplePackage(id string, created time.Time) *Package {
	p := NewPackage(sampleModel())
	p.ID = id
	p.CreatedAt = created
	return p
}

func TestNewPackage(t *testing.T) {
	m := sampleModel()
	p := NewPackage(m)

	if err := errors.ValidatePackageID(p.ID); err != nil {
		t.Errorf("NewPackage ID %q invalid: %v", p.ID, err)
	}
	if p.SVGText != string(svg.Render(m)) {
		t.Error("SVGText differs from exporter output")
	}
	if p.DXFText != string(dxf.Render(m)) {
		t.Error("DXFText differs from exporter output")
	}
	if p.CreatedAt.IsZero() || p.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v, want UTC now", p.CreatedAt)
	}
	if NewID() == NewID() {
		t.Error("NewID should not repeat")
	}
}

func TestNewPackageNoOutput(t *testing.T) {
	m := sampleModel()
	m.Block.LengthIn = 0
	p := NewPackage(m)
	if p.SVGText != "" || p.DXFText != "" {
		t.Error("zero-size block should store empty artifacts")
	}
}

// testStore exercises the Store contract against any backend.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := samplePackage("pkg-older", base)
	newer := samplePackage("pkg-newer", base.Add(time.Hour))
	for _, p := range []*Package{older, newer} {
		if err := s.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s) error = %v", p.ID, err)
		}
	}

	got, err := s.Get(ctx, "pkg-older")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(older, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "pkg-newer" || list[1].ID != "pkg-older" {
		t.Errorf("List() order = %v, want newest first", ids(list))
	}
	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("List(1) returned %d packages", len(list))
	}

	// Save replaces.
	newer.SVGText = "<svg/>"
	if err := s.Save(ctx, newer); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(ctx, "pkg-newer"); got == nil || got.SVGText != "<svg/>" {
		t.Error("Save should replace an existing package")
	}

	if err := s.Delete(ctx, "pkg-older"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "pkg-older"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
	if _, err := s.Get(ctx, "pkg-older"); !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("Get(deleted) = %v, want PACKAGE_NOT_FOUND", err)
	}

	if err := s.Save(ctx, samplePackage("../escape", base)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save(bad id) = %v, want INVALID_INPUT", err)
	}
}

func ids(ps []*Package) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	testStore(t, s)
}

func TestMemoryIsolation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	p := samplePackage("pkg-1", time.Now())
	if err := s.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.DXFText = "changed"
	got, _ := s.Get(ctx, "pkg-1")
	if got.DXFText == "changed" {
		t.Error("Memory should copy packages on Save")
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "packages.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
	testStore(t, s)
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packages.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	p := samplePackage("pkg-1", time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC))
	if err := s.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "pkg-1")
	if err != nil {
		t.Fatalf("Get after reopen error = %v", err)
	}
	if !strings.Contains(got.DXFText, "ENTITIES") {
		t.Error("DXFText lost after reopen")
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("FOAMLAYOUT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FOAMLAYOUT_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongo(ctx, uri, "foamlayout_test_"+strings.ReplaceAll(NewID(), "-", "")[:8])
	if err != nil {
		t.Fatalf("NewMongo() error = %v", err)
	}
	defer func() {
		_ = s.coll.Database().Drop(ctx)
		s.Close()
	}()
	testStore(t, s)
}

func TestNewMongoRejectsBadURI(t *testing.T) {
	if _, err := NewMongo(context.Background(), "redis://localhost", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewMongo(redis URI) = %v, want INVALID_INPUT", err)
	}
}
