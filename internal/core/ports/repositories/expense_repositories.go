package repositories

import (
	"context"
	"time"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
)

// ExpenseRepositoryFacade defines persistence for shop operating expenses.
type ExpenseRepositoryFacade interface {
	// SaveExpense inserts an expense row.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// ListExpensesByShop retrieves expenses of a shop within [from, to).
	ListExpensesByShop(ctx context.Context, shopID string, from, to time.Time) ([]domain.Expense, error)

	// SumExpensesByShop aggregates expenses per shop over [from, to).
	SumExpensesByShop(ctx context.Context, from, to time.Time) (map[string]int64, error)
}
