package doctor

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	Approved *bool
	// Search matches name or department, case-insensitively.
	Search string
}

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Doctor, int, error)
	Dashboard(ctx context.Context, id uuid.UUID) (*Dashboard, error)
}
