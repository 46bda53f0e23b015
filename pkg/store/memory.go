package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/foamlayout/pkg/errors"
)

// Memory keeps packages in a map. Stored packages are copied on the way in
// and out so callers cannot mutate them.
type Memory struct {
	mu       sync.RWMutex
	packages map[string]Package
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{packages: make(map[string]Package)}
}

func (s *Memory) Save(ctx context.Context, p *Package) error {
	if err := errors.ValidatePackageID(p.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[p.ID] = *p
	return nil
}

func (s *Memory) Get(ctx context.Context, id string) (*Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packages[id]
	if !ok {
		return nil, notFound(id)
	}
	return &p, nil
}

func (s *Memory) List(ctx context.Context, limit int) ([]*Package, error) {
	s.mu.RLock()
	out := make([]*Package, 0, len(s.packages))
	for _, p := range s.packages {
		p := p
		out = append(out, &p)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Package) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out[:min(len(out), listLimit(limit))], nil
}

func (s *Memory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.packages, id)
	return nil
}

func (s *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
