package budget

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows budget queries
type Filter struct {
	shared.Filter
	SegmentID    *uuid.UUID
	DepartmentID *uuid.UUID
	Period       *Period
	ActiveOnly   bool
}

// Repository persists budgets
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Budget, error)
	FindAll(ctx context.Context, filter Filter) (shared.Paginated[*Budget], error)
	// FindActiveCovering returns active budgets for the segment or
	// department whose date range contains the given date.
	FindActiveCovering(ctx context.Context, segmentID, departmentID *uuid.UUID, date time.Time) ([]*Budget, error)
	ExistsOverlapping(ctx context.Context, name string, period Period, startDate, endDate time.Time, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, budget *Budget) error
	SaveWithLock(ctx context.Context, budget *Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ThresholdRepository persists budget thresholds
type ThresholdRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BudgetThreshold, error)
	FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]*BudgetThreshold, error)
	FindAlertEnabled(ctx context.Context) ([]*BudgetThreshold, error)
	ExistsByBudgetAndPercentage(ctx context.Context, budgetID uuid.UUID, percentage string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, threshold *BudgetThreshold) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AlertRepository persists budget alerts
type AlertRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BudgetAlert, error)
	FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]*BudgetAlert, error)
	FindUnacknowledged(ctx context.Context) ([]*BudgetAlert, error)
	FindRecent(ctx context.Context, since time.Time, filter shared.Filter) (shared.Paginated[*BudgetAlert], error)
	ExistsUnacknowledged(ctx context.Context, budgetID, thresholdID uuid.UUID) (bool, error)
	// CreateIfAbsent inserts the alert unless an unacknowledged alert
	// already exists for its (budget, threshold) pair, atomically.
	// Returns whether the alert was created.
	CreateIfAbsent(ctx context.Context, alert *BudgetAlert) (bool, error)
	Save(ctx context.Context, alert *BudgetAlert) error
	DeleteAcknowledged(ctx context.Context, budgetID uuid.UUID) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
