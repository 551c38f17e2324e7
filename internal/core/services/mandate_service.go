package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/foyerhq/foyer-backend/internal/middleware"
)

const defaultMandatePageLimit = 25

// mandateService manages accounting periods: open with initial stock
// snapshots, preview the close from live figures, close with admin-confirmed
// finals and the computed per-shop benefit.
type mandateService struct {
	mandateRepo portsrepo.MandateRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	expenseRepo portsrepo.ExpenseRepositoryFacade
	catalogRepo portsrepo.CatalogRepositoryFacade
}

// NewMandateService creates a new MandateService.
func NewMandateService(mandateRepo portsrepo.MandateRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, expenseRepo portsrepo.ExpenseRepositoryFacade, catalogRepo portsrepo.CatalogRepositoryFacade) portssvc.MandateSvcFacade {
	return &mandateService{
		mandateRepo: mandateRepo,
		ledgerRepo:  ledgerRepo,
		expenseRepo: expenseRepo,
		catalogRepo: catalogRepo,
	}
}

// Ensure mandateService implements the portssvc.MandateSvcFacade interface
var _ portssvc.MandateSvcFacade = (*mandateService)(nil)

// StartMandate opens a new ACTIVE mandate. The store's uniqueness constraint
// on ACTIVE mandates is the real guard; the pre-check here only produces a
// friendlier error in the common case.
func (s *mandateService) StartMandate(ctx context.Context, snapshots []dto.ShopSnapshot, issuerID string) (*domain.Mandate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: at least one shop snapshot is required", apperrors.ErrValidation)
	}
	seen := make(map[string]bool, len(snapshots))
	for _, snapshot := range snapshots {
		if snapshot.Value < 0 {
			return nil, fmt.Errorf("%w: stock value cannot be negative for shop %s", apperrors.ErrValidation, snapshot.ShopID)
		}
		if seen[snapshot.ShopID] {
			return nil, fmt.Errorf("%w: duplicate snapshot for shop %s", apperrors.ErrValidation, snapshot.ShopID)
		}
		seen[snapshot.ShopID] = true
		if _, err := s.catalogRepo.FindShopByID(ctx, snapshot.ShopID); err != nil {
			return nil, fmt.Errorf("failed to find shop %s: %w", snapshot.ShopID, err)
		}
	}

	if _, err := s.mandateRepo.FindActiveMandate(ctx); err == nil {
		return nil, apperrors.ErrMandateAlreadyActive
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active mandate: %w", err)
	}

	now := time.Now()
	mandate := domain.Mandate{
		MandateID:   uuid.NewString(),
		Status:      domain.MandateActive,
		StartTime:   now,
		AuditFields: newAudit(issuerID, now),
	}
	shops := make([]domain.MandateShop, 0, len(snapshots))
	for _, snapshot := range snapshots {
		mandate.InitialStockValue += snapshot.Value
		shops = append(shops, domain.MandateShop{
			MandateID:         mandate.MandateID,
			ShopID:            snapshot.ShopID,
			InitialStockValue: snapshot.Value,
		})
	}

	if err := s.mandateRepo.SaveMandate(ctx, mandate, shops); err != nil {
		logger.Error("Mandate open failed", "error", err)
		return nil, fmt.Errorf("failed to open mandate: %w", err)
	}

	logger.Info("Mandate opened", "mandateID", mandate.MandateID, "shops", len(shops), "initialStockValue", mandate.InitialStockValue)
	return &mandate, nil
}

// closeFigures computes the per-shop close figures for the active mandate.
// finalValues maps shopID to the final stock value to use; shops that traded
// during the period without an opening snapshot join with initial value zero.
func (s *mandateService) closeFigures(ctx context.Context, mandate *domain.Mandate, shops []domain.MandateShop, finalValues map[string]int64, asOf time.Time) ([]dto.ShopClosePreview, error) {
	sales, err := s.ledgerRepo.SumSalesByShop(ctx, mandate.StartTime, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	expenses, err := s.expenseRepo.SumExpensesByShop(ctx, mandate.StartTime, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	initials := make(map[string]int64, len(shops))
	for _, shop := range shops {
		initials[shop.ShopID] = shop.InitialStockValue
	}

	shopIDs := make(map[string]bool)
	for id := range initials {
		shopIDs[id] = true
	}
	for id := range finalValues {
		shopIDs[id] = true
	}
	for id := range sales {
		shopIDs[id] = true
	}
	for id := range expenses {
		shopIDs[id] = true
	}

	previews := make([]dto.ShopClosePreview, 0, len(shopIDs))
	for shopID := range shopIDs {
		preview := dto.ShopClosePreview{
			ShopID:            shopID,
			InitialStockValue: initials[shopID],
			FinalStockValue:   finalValues[shopID],
			Sales:             sales[shopID],
			Expenses:          expenses[shopID],
		}
		preview.Benefit = (preview.Sales + preview.FinalStockValue) - (preview.InitialStockValue + preview.Expenses)
		previews = append(previews, preview)
	}
	sort.Slice(previews, func(i, j int) bool { return previews[i].ShopID < previews[j].ShopID })
	return previews, nil
}

func buildClosePreview(mandate *domain.Mandate, shops []dto.ShopClosePreview) *dto.MandateClosePreview {
	preview := &dto.MandateClosePreview{
		MandateID: mandate.MandateID,
		StartTime: mandate.StartTime,
		Shops:     shops,
	}
	for _, shop := range shops {
		preview.InitialStockValue += shop.InitialStockValue
		preview.FinalStockValue += shop.FinalStockValue
		preview.Sales += shop.Sales
		preview.Expenses += shop.Expenses
		preview.Benefit += shop.Benefit
	}
	return preview
}

// PreviewClose computes the close figures for the active mandate using live
// stock valuation, without persisting anything.
func (s *mandateService) PreviewClose(ctx context.Context) (*dto.MandateClosePreview, error) {
	active, err := s.mandateRepo.FindActiveMandate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find active mandate: %w", err)
	}
	_, shops, err := s.mandateRepo.FindMandateByID(ctx, active.MandateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mandate shops: %w", err)
	}

	stockValues, err := s.catalogRepo.ValueAllActiveStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to value stock: %w", err)
	}
	finals := make(map[string]int64, len(stockValues))
	for _, sv := range stockValues {
		finals[sv.ShopID] = sv.Value
	}

	figures, err := s.closeFigures(ctx, active, shops, finals, time.Now())
	if err != nil {
		return nil, err
	}
	return buildClosePreview(active, figures), nil
}

// CloseMandate closes the active mandate with admin-confirmed final stock
// values. Sales and expenses are recomputed at close time so entries recorded
// after a preview still count.
func (s *mandateService) CloseMandate(ctx context.Context, finals []dto.ShopSnapshot, issuerID string) (*domain.Mandate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	active, err := s.mandateRepo.FindActiveMandate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find active mandate: %w", err)
	}
	_, shops, err := s.mandateRepo.FindMandateByID(ctx, active.MandateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mandate shops: %w", err)
	}

	finalValues := make(map[string]int64, len(finals))
	for _, snapshot := range finals {
		if snapshot.Value < 0 {
			return nil, fmt.Errorf("%w: stock value cannot be negative for shop %s", apperrors.ErrValidation, snapshot.ShopID)
		}
		if _, dup := finalValues[snapshot.ShopID]; dup {
			return nil, fmt.Errorf("%w: duplicate final for shop %s", apperrors.ErrValidation, snapshot.ShopID)
		}
		finalValues[snapshot.ShopID] = snapshot.Value
	}

	endTime := time.Now()
	figures, err := s.closeFigures(ctx, active, shops, finalValues, endTime)
	if err != nil {
		return nil, err
	}

	closed := *active
	closed.Status = domain.MandateCompleted
	closed.EndTime = &endTime
	closed.LastUpdatedAt = endTime
	closed.LastUpdatedBy = issuerID

	var totalFinal, totalBenefit int64
	closedShops := make([]domain.MandateShop, 0, len(figures))
	for _, figure := range figures {
		figure := figure
		totalFinal += figure.FinalStockValue
		totalBenefit += figure.Benefit
		closedShops = append(closedShops, domain.MandateShop{
			MandateID:         active.MandateID,
			ShopID:            figure.ShopID,
			InitialStockValue: figure.InitialStockValue,
			FinalStockValue:   &figure.FinalStockValue,
			Sales:             &figure.Sales,
			Expenses:          &figure.Expenses,
			Benefit:           &figure.Benefit,
		})
	}
	closed.FinalStockValue = &totalFinal
	closed.FinalBenefit = &totalBenefit

	if err := s.mandateRepo.CloseMandate(ctx, closed, closedShops); err != nil {
		logger.Error("Mandate close failed", "mandateID", active.MandateID, "error", err)
		return nil, fmt.Errorf("failed to close mandate: %w", err)
	}

	logger.Info("Mandate closed", "mandateID", closed.MandateID, "benefit", totalBenefit, "finalStockValue", totalFinal)
	return &closed, nil
}

// GetActiveMandate retrieves the currently open mandate and its shop snapshots.
func (s *mandateService) GetActiveMandate(ctx context.Context) (*domain.Mandate, []domain.MandateShop, error) {
	active, err := s.mandateRepo.FindActiveMandate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find active mandate: %w", err)
	}
	return s.mandateRepo.FindMandateByID(ctx, active.MandateID)
}

// ListMandates retrieves a page of mandates, newest first.
func (s *mandateService) ListMandates(ctx context.Context, params dto.ListMandatesParams) (*dto.ListMandatesResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultMandatePageLimit
	}

	mandates, nextToken, err := s.mandateRepo.ListMandates(ctx, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list mandates: %w", err)
	}

	out := make([]dto.MandateResponse, len(mandates))
	for i := range mandates {
		out[i] = dto.ToMandateResponse(&mandates[i])
	}
	return &dto.ListMandatesResponse{Mandates: out, NextToken: nextToken}, nil
}
