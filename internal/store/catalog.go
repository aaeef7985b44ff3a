package store

import (
	"context"

	"github.com/angelmondragon/stallpos/internal/catalog"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

// Catalog returns a copy of the current catalog.
func (s *Store) Catalog() catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Catalog.Clone()
}

// Product returns one product joined with its option template.
func (s *Store) Product(id string) (catalog.ProductView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.Catalog.Find(id)
	if !ok {
		return catalog.ProductView{}, productNotFound(id)
	}
	return s.registry.ResolveOptions(p), nil
}

// SummarizeSelections renders the short labels for selections on product id.
func (s *Store) SummarizeSelections(id string, selections catalog.Selections) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.Catalog.Find(id)
	if !ok {
		return nil, productNotFound(id)
	}
	return s.registry.SummarizeSelections(p, selections), nil
}

// ReplaceCatalog swaps in a sanitized catalog. Duplicate product ids are
// rejected before anything changes; stored orders are re-sanitized but their
// items keep their captured content.
func (s *Store) ReplaceCatalog(ctx context.Context, in catalog.Input) (catalog.Catalog, error) {
	if err := catalog.ValidateUniqueIDs(in); err != nil {
		return catalog.Catalog{}, err
	}
	next := catalog.SanitizeCatalog(in)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Catalog = next
	for i, o := range s.state.Orders {
		s.state.Orders[i] = s.engine.Sanitize(o.Input())
	}
	return next.Clone(), s.persistLocked(ctx)
}

// ResetCatalog restores the seed catalog.
func (s *Store) ResetCatalog(ctx context.Context) (catalog.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Catalog = catalog.DefaultCatalog()
	return s.state.Catalog.Clone(), s.persistLocked(ctx)
}

func productNotFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
		WithDetails(map[string]any{"productId": id})
}
