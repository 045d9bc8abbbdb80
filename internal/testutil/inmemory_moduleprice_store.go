package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/domain/moduleprice"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// InMemoryModulePriceStore implements moduleprice.Repository
type InMemoryModulePriceStore struct {
	*InMemoryStore[*moduleprice.ModulePrice]
}

// NewInMemoryModulePriceStore creates a new in-memory module catalog store
func NewInMemoryModulePriceStore() *InMemoryModulePriceStore {
	return &InMemoryModulePriceStore{
		InMemoryStore: NewInMemoryStore[*moduleprice.ModulePrice](),
	}
}

func copyModulePrice(m *moduleprice.ModulePrice) *moduleprice.ModulePrice {
	if m == nil {
		return nil
	}
	copied := *m
	return &copied
}

func (s *InMemoryModulePriceStore) Create(ctx context.Context, m *moduleprice.ModulePrice) error {
	if m == nil {
		return ierr.NewError("module price cannot be nil").
			WithHint("Module price cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, m.ID, copyModulePrice(m))
}

func (s *InMemoryModulePriceStore) Get(ctx context.Context, id string) (*moduleprice.ModulePrice, error) {
	m, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || m.Status == types.StatusDeleted {
		return nil, ierr.NewError("module price not found").
			WithHint("Module not found").
			WithReportableDetails(map[string]any{
				"module_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyModulePrice(m), nil
}

func (s *InMemoryModulePriceStore) GetBatch(ctx context.Context, ids []string) ([]*moduleprice.ModulePrice, error) {
	modules := make([]*moduleprice.ModulePrice, 0, len(ids))
	for _, id := range ids {
		m, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (s *InMemoryModulePriceStore) Update(ctx context.Context, m *moduleprice.ModulePrice) error {
	if m == nil {
		return ierr.NewError("module price cannot be nil").
			WithHint("Module price cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if _, err := s.Get(ctx, m.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, m.ID, copyModulePrice(m))
}

func (s *InMemoryModulePriceStore) Delete(ctx context.Context, id string) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	m.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, m)
}

func (s *InMemoryModulePriceStore) List(ctx context.Context, filter *types.ModulePriceFilter) ([]*moduleprice.ModulePrice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, modulePriceFilterFn, modulePriceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(m *moduleprice.ModulePrice, _ int) *moduleprice.ModulePrice {
		return copyModulePrice(m)
	}), nil
}

func (s *InMemoryModulePriceStore) Count(ctx context.Context, filter *types.ModulePriceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, modulePriceFilterFn)
}

func modulePriceFilterFn(ctx context.Context, m *moduleprice.ModulePrice, filter interface{}) bool {
	if m.Status == types.StatusDeleted {
		return false
	}
	if m.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*types.ModulePriceFilter)
	if !ok || f == nil {
		return true
	}
	if f.Name != nil && m.Name != *f.Name {
		return false
	}
	return true
}

func modulePriceSortFn(i, j *moduleprice.ModulePrice) bool {
	return i.Name < j.Name
}
