package expense

import (
	"context"

	"github.com/expenseflow/backend/internal/domain/budget"
	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/workflow"
)

// TransactionScope provides transactional access to the repositories an
// expense lifecycle transition touches. Everything executed within one
// scope commits or rolls back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories participating in a
// transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - ExpenseRepo: segment allocations and documents are child entities
//     of the Expense aggregate and persist through it.
//   - HistoryRepo: append-only status transition records; each lifecycle
//     transition writes exactly one record in the same transaction.
//   - BudgetRepo: budget consumption moves in the same transaction as
//     the approval that causes it.
type TransactionalRepositories interface {
	ExpenseRepo() expense.Repository
	HistoryRepo() workflow.HistoryRepository
	BudgetRepo() budget.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	expenseRepo expense.Repository
	historyRepo workflow.HistoryRepository
	budgetRepo  budget.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories.
func NewNoOpTransactionScope(
	expenseRepo expense.Repository,
	historyRepo workflow.HistoryRepository,
	budgetRepo budget.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		expenseRepo: expenseRepo,
		historyRepo: historyRepo,
		budgetRepo:  budgetRepo,
	}
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ExpenseRepo returns the expense repository
func (s *NoOpTransactionScope) ExpenseRepo() expense.Repository {
	return s.expenseRepo
}

// HistoryRepo returns the workflow history repository
func (s *NoOpTransactionScope) HistoryRepo() workflow.HistoryRepository {
	return s.historyRepo
}

// BudgetRepo returns the budget repository
func (s *NoOpTransactionScope) BudgetRepo() budget.Repository {
	return s.budgetRepo
}
