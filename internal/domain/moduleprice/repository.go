package moduleprice

import (
	"context"

	"github.com/billforge/billforge/internal/types"
)

// Repository defines the interface for module catalog data access
type Repository interface {
	Create(ctx context.Context, m *ModulePrice) error
	Get(ctx context.Context, id string) (*ModulePrice, error)
	GetBatch(ctx context.Context, ids []string) ([]*ModulePrice, error)
	Update(ctx context.Context, m *ModulePrice) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.ModulePriceFilter) ([]*ModulePrice, error)
	Count(ctx context.Context, filter *types.ModulePriceFilter) (int, error)
}
