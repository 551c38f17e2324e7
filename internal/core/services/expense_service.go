package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/foyerhq/foyer-backend/internal/middleware"
)

// expenseService records shop operating expenses, which enter the mandate
// close computation alongside sales.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
	catalogRepo portsrepo.CatalogRepositoryFacade
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, catalogRepo portsrepo.CatalogRepositoryFacade) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
		catalogRepo: catalogRepo,
	}
}

// Ensure expenseService implements the portssvc.ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// RecordExpense inserts one expense against a shop.
func (s *expenseService) RecordExpense(ctx context.Context, req dto.RecordExpenseRequest, issuerID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive, got %d", apperrors.ErrInvalidAmount, req.Amount)
	}
	if _, err := s.catalogRepo.FindShopByID(ctx, req.ShopID); err != nil {
		return nil, fmt.Errorf("failed to find shop %s: %w", req.ShopID, err)
	}

	now := time.Now()
	incurredAt := now
	if req.IncurredAt != nil {
		incurredAt = *req.IncurredAt
	}

	expense := domain.Expense{
		ExpenseID:   uuid.NewString(),
		ShopID:      req.ShopID,
		Amount:      req.Amount,
		Label:       req.Label,
		IncurredAt:  incurredAt,
		AuditFields: newAudit(issuerID, now),
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		logger.Error("Expense save failed", "shopID", req.ShopID, "error", err)
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	logger.Info("Expense recorded", "expenseID", expense.ExpenseID, "shopID", expense.ShopID, "amount", expense.Amount)
	return &expense, nil
}

// ListExpenses retrieves a shop's expenses within the requested window.
func (s *expenseService) ListExpenses(ctx context.Context, shopID string, params dto.ListExpensesParams) ([]domain.Expense, error) {
	if _, err := s.catalogRepo.FindShopByID(ctx, shopID); err != nil {
		return nil, fmt.Errorf("failed to find shop %s: %w", shopID, err)
	}
	if !params.To.After(params.From) {
		return nil, fmt.Errorf("%w: window end must be after start", apperrors.ErrValidation)
	}
	return s.expenseRepo.ListExpensesByShop(ctx, shopID, params.From, params.To)
}
