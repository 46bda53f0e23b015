package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS packages (
	id          TEXT PRIMARY KEY,
	layout_json TEXT NOT NULL,
	svg_text    TEXT NOT NULL,
	dxf_text    TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS packages_created_at ON packages (created_at DESC);
`

// SQLite stores packages in a single database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "create store dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s", path)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create schema")
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Save(ctx context.Context, p *Package) error {
	if err := errors.ValidatePackageID(p.ID); err != nil {
		return err
	}
	data, err := layout.Marshal(p.Layout)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO packages (id, layout_json, svg_text, dxf_text, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, string(data), p.SVGText, p.DXFText, p.CreatedAt.UnixNano())
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save package %s", p.ID)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*Package, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, layout_json, svg_text, dxf_text, created_at FROM packages WHERE id = ?`, id)
	p, err := scanPackage(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "get package %s", id)
	}
	return p, nil
}

func (s *SQLite) List(ctx context.Context, limit int) ([]*Package, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, layout_json, svg_text, dxf_text, created_at FROM packages ORDER BY created_at DESC, id LIMIT ?`,
		listLimit(limit))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list packages")
	}
	defer rows.Close()

	var out []*Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan package")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list packages")
	}
	return out, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete package %s", id)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanPackage(row scanner) (*Package, error) {
	var (
		p          Package
		layoutJSON string
		created    int64
	)
	if err := row.Scan(&p.ID, &layoutJSON, &p.SVGText, &p.DXFText, &created); err != nil {
		return nil, err
	}
	m, err := layout.Unmarshal([]byte(layoutJSON))
	if err != nil {
		return nil, err
	}
	p.Layout = m
	p.CreatedAt = time.Unix(0, created).UTC()
	return &p, nil
}

var _ Store = (*SQLite)(nil)
