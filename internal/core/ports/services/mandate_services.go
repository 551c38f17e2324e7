package services

import (
	"context"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
	"github.com/foyerhq/foyer-backend/internal/dto"
)

// MandateSvcFacade manages the accounting period lifecycle: open with initial
// stock snapshots, preview and close with profit computation.
type MandateSvcFacade interface {
	// StartMandate opens a new ACTIVE mandate with one snapshot per shop.
	// Fails with ErrMandateAlreadyActive while another mandate is open.
	StartMandate(ctx context.Context, snapshots []dto.ShopSnapshot, issuerID string) (*domain.Mandate, error)

	// PreviewClose computes the close figures for the active mandate from
	// live stock valuation, without persisting anything.
	PreviewClose(ctx context.Context) (*dto.MandateClosePreview, error)

	// CloseMandate persists the admin-confirmed final stock values, the
	// recomputed sales/expenses and the resulting benefit, then completes
	// the mandate.
	CloseMandate(ctx context.Context, finals []dto.ShopSnapshot, issuerID string) (*domain.Mandate, error)

	// GetActiveMandate retrieves the currently open mandate.
	GetActiveMandate(ctx context.Context) (*domain.Mandate, []domain.MandateShop, error)

	// ListMandates retrieves past and present mandates, newest first.
	ListMandates(ctx context.Context, params dto.ListMandatesParams) (*dto.ListMandatesResponse, error)
}

// ExpenseSvcFacade records shop operating expenses for period aggregation.
type ExpenseSvcFacade interface {
	RecordExpense(ctx context.Context, req dto.RecordExpenseRequest, issuerID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, shopID string, params dto.ListExpensesParams) ([]domain.Expense, error)
}
