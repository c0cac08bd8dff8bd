package segment

import (
	"context"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists segments
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Segment, error)
	FindByCode(ctx context.Context, code string) (*Segment, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Segment], error)
	FindByType(ctx context.Context, segType Type) ([]*Segment, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]*Segment, error)
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
	ExistsAllActive(ctx context.Context, ids []uuid.UUID) (bool, error)
	Save(ctx context.Context, segment *Segment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
