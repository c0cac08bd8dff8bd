package budget

import (
	"context"

	expenseapp "github.com/expenseflow/backend/internal/application/expense"
	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConsumptionTracker moves budget consumption in step with expense
// approvals. For each allocation it finds the active budgets covering
// the allocation's segment (and the submitter's department) on the
// expense date and adjusts their consumed amounts with an optimistic
// lock. An allocation with no matching budget is skipped silently;
// untracked spend is not an error.
type ConsumptionTracker struct {
	userRepo identity.UserRepository
	cache    Cache
	logger   *zap.Logger
}

// NewConsumptionTracker creates a new ConsumptionTracker
func NewConsumptionTracker(userRepo identity.UserRepository, cache Cache, logger *zap.Logger) *ConsumptionTracker {
	return &ConsumptionTracker{
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Apply adds each allocation's amount to the budgets covering it.
// Runs inside the approval transaction.
func (t *ConsumptionTracker) Apply(ctx context.Context, repos expenseapp.TransactionalRepositories, exp *expense.Expense) error {
	return t.adjust(ctx, repos, exp, false)
}

// Reverse subtracts each allocation's amount from the budgets covering
// it, flooring at zero. Used when an approval is undone.
func (t *ConsumptionTracker) Reverse(ctx context.Context, repos expenseapp.TransactionalRepositories, exp *expense.Expense) error {
	return t.adjust(ctx, repos, exp, true)
}

func (t *ConsumptionTracker) adjust(ctx context.Context, repos expenseapp.TransactionalRepositories, exp *expense.Expense, reverse bool) error {
	departmentID, err := t.submitterDepartment(ctx, exp)
	if err != nil {
		return err
	}

	for _, alloc := range exp.Allocations {
		segmentID := alloc.SegmentID
		budgets, err := repos.BudgetRepo().FindActiveCovering(ctx, &segmentID, departmentID, exp.ExpenseDate)
		if err != nil {
			return err
		}
		if len(budgets) == 0 {
			t.logger.Debug("no budget covers allocation",
				zap.String("expense_id", exp.ID.String()),
				zap.String("segment_id", segmentID.String()))
			continue
		}

		for _, b := range budgets {
			if reverse {
				err = b.ReduceConsumption(alloc.Amount)
			} else {
				err = b.AddConsumption(alloc.Amount)
			}
			if err != nil {
				return err
			}
			if err := repos.BudgetRepo().SaveWithLock(ctx, b); err != nil {
				return err
			}
			if err := t.cache.Invalidate(ctx, b.ID); err != nil {
				t.logger.Warn("budget cache invalidation failed",
					zap.String("budget_id", b.ID.String()),
					zap.Error(err))
			}
		}
	}
	return nil
}

// submitterDepartment resolves the submitter's department so
// department-scoped budgets participate. A missing user record only
// excludes department budgets.
func (t *ConsumptionTracker) submitterDepartment(ctx context.Context, exp *expense.Expense) (*uuid.UUID, error) {
	user, err := t.userRepo.FindByID(ctx, exp.SubmitterID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return user.DepartmentID, nil
}
