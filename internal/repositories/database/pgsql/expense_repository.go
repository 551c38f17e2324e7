package pgsql

import (
	"context"
	"time"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for shop operating expenses.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

// SaveExpense inserts an expense row.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO expenses (
			expense_id, shop_id, amount, label, incurred_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		expense.ExpenseID, expense.ShopID, expense.Amount, expense.Label, expense.IncurredAt,
		expense.CreatedAt, expense.CreatedBy, expense.LastUpdatedAt, expense.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert expense "+expense.ExpenseID, err)
	}
	return nil
}

// ListExpensesByShop retrieves expenses of a shop within [from, to).
func (r *PgxExpenseRepository) ListExpensesByShop(ctx context.Context, shopID string, from, to time.Time) ([]domain.Expense, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT expense_id, shop_id, amount, label, incurred_at,
			created_at, created_by, last_updated_at, last_updated_by
		FROM expenses
		WHERE shop_id = $1 AND incurred_at >= $2 AND incurred_at < $3
		ORDER BY incurred_at DESC, expense_id DESC`,
		shopID, from, to,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		err := rows.Scan(
			&e.ExpenseID, &e.ShopID, &e.Amount, &e.Label, &e.IncurredAt,
			&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read expense rows", err)
	}
	return expenses, nil
}

// SumExpensesByShop aggregates expenses per shop over [from, to).
func (r *PgxExpenseRepository) SumExpensesByShop(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT shop_id, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE incurred_at >= $1 AND incurred_at < $2
		GROUP BY shop_id`,
		from, to,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate expenses", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var shopID string
		var total int64
		if err := rows.Scan(&shopID, &total); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense total", err)
		}
		totals[shopID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read expense totals", err)
	}
	return totals, nil
}
