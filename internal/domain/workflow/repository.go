package workflow

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists approval workflow definitions.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ApprovalWorkflow, error)
	FindByName(ctx context.Context, name string) (*ApprovalWorkflow, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*ApprovalWorkflow], error)
	FindActive(ctx context.Context) ([]*ApprovalWorkflow, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, workflow *ApprovalWorkflow) error
	SaveWithLock(ctx context.Context, workflow *ApprovalWorkflow) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActionRepository persists approval actions. Actions are append-only.
type ActionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ApprovalAction, error)
	FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]*ApprovalAction, error)
	FindLatestByExpense(ctx context.Context, expenseID uuid.UUID) (*ApprovalAction, error)
	FindByApprover(ctx context.Context, approverID uuid.UUID, filter shared.Filter) (shared.Paginated[*ApprovalAction], error)
	FindPendingDelegations(ctx context.Context, delegateID uuid.UUID) ([]*ApprovalAction, error)
	ExistsApprovedAtStep(ctx context.Context, expenseID, stepID uuid.UUID) (bool, error)
	Save(ctx context.Context, action *ApprovalAction) error
}

// HistoryRepository persists the status transition audit trail.
// Records are append-only; there is no update or delete.
type HistoryRepository interface {
	FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]*History, error)
	FindLatestByExpense(ctx context.Context, expenseID uuid.UUID) (*History, error)
	FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) (shared.Paginated[*History], error)
	FindSince(ctx context.Context, since time.Time, filter shared.Filter) (shared.Paginated[*History], error)
	Record(ctx context.Context, entry *History) error
}

// CommentRepository persists expense comments.
type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]*Comment, error)
	Save(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
