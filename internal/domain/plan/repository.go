package plan

import (
	"context"
)

// Repository defines the interface for plan data access
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Plan, error)
}
