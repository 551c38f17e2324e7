package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/core/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MandateServiceTestSuite struct {
	suite.Suite
	store    *fakeStore
	mandates *fakeMandateStore
	expenses *fakeExpenseStore
	svc      portssvc.MandateSvcFacade
	ctx      context.Context
}

func (s *MandateServiceTestSuite) SetupTest() {
	s.store = newFakeStore()
	s.store.addShop("bar")
	s.store.addShop("grocery")
	s.mandates = newFakeMandateStore()
	s.expenses = newFakeExpenseStore()
	s.svc = services.NewMandateService(s.mandates, s.store, s.expenses, s.store)
	s.ctx = context.Background()
}

// seedSale inserts a completed purchase entry against a shop.
func (s *MandateServiceTestSuite) seedSale(shopID string, amount int64) {
	shop := shopID
	s.store.seedEntry(domain.Entry{
		EntryID:      uuid.NewString(),
		Kind:         domain.KindPurchase,
		Status:       domain.StatusCompleted,
		Amount:       -amount,
		WalletSource: domain.SourcePersonal,
		TargetWallet: "alice",
		IssuerID:     "alice",
		ShopID:       &shop,
		AuditFields:  domain.AuditFields{CreatedAt: time.Now()},
	})
}

func (s *MandateServiceTestSuite) seedExpense(shopID string, amount int64) {
	err := s.expenses.SaveExpense(s.ctx, domain.Expense{
		ExpenseID:  uuid.NewString(),
		ShopID:     shopID,
		Amount:     amount,
		Label:      "restock run",
		IncurredAt: time.Now(),
	})
	s.Require().NoError(err)
}

func (s *MandateServiceTestSuite) TestOnlyOneActiveMandate() {
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 1000}}, "admin")
	s.Require().NoError(err)

	_, err = s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 1000}}, "admin")
	s.Require().ErrorIs(err, apperrors.ErrMandateAlreadyActive)
}

func (s *MandateServiceTestSuite) TestConcurrentStartsAdmitExactlyOne() {
	const attempts = 8

	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 1000}}, "admin")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var opened, rejected int
	for err := range errs {
		if err == nil {
			opened++
			continue
		}
		s.Require().ErrorIs(err, apperrors.ErrMandateAlreadyActive)
		rejected++
	}
	s.Equal(1, opened)
	s.Equal(attempts-1, rejected)
}

func (s *MandateServiceTestSuite) TestStartRejectsUnknownShop() {
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "ghost", Value: 0}}, "admin")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MandateServiceTestSuite) TestStartRejectsDuplicateShops() {
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{
		{ShopID: "bar", Value: 100},
		{ShopID: "bar", Value: 200},
	}, "admin")
	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *MandateServiceTestSuite) TestCloseComputesBenefit() {
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 1000}}, "admin")
	s.Require().NoError(err)

	s.seedSale("bar", 5000)
	s.seedExpense("bar", 800)

	closed, err := s.svc.CloseMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 1200}}, "admin")
	s.Require().NoError(err)

	s.Equal(domain.MandateCompleted, closed.Status)
	s.Require().NotNil(closed.EndTime)
	s.Require().NotNil(closed.FinalStockValue)
	s.Equal(int64(1200), *closed.FinalStockValue)
	// (5000 sales + 1200 final stock) - (1000 initial stock + 800 expenses)
	s.Require().NotNil(closed.FinalBenefit)
	s.Equal(int64(4400), *closed.FinalBenefit)

	_, shops, err := s.mandates.FindMandateByID(s.ctx, closed.MandateID)
	s.Require().NoError(err)
	s.Require().Len(shops, 1)
	s.Equal(int64(5000), *shops[0].Sales)
	s.Equal(int64(800), *shops[0].Expenses)
	s.Equal(int64(4400), *shops[0].Benefit)
}

func (s *MandateServiceTestSuite) TestMidPeriodShopDefaultsToZeroInitialStock() {
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 1000}}, "admin")
	s.Require().NoError(err)

	// The grocery opened after the period started; it has no opening snapshot.
	s.seedSale("grocery", 300)

	closed, err := s.svc.CloseMandate(s.ctx, []dto.ShopSnapshot{
		{ShopID: "bar", Value: 1000},
		{ShopID: "grocery", Value: 50},
	}, "admin")
	s.Require().NoError(err)

	_, shops, err := s.mandates.FindMandateByID(s.ctx, closed.MandateID)
	s.Require().NoError(err)
	s.Require().Len(shops, 2)
	for _, shop := range shops {
		if shop.ShopID == "grocery" {
			s.Equal(int64(0), shop.InitialStockValue)
			s.Equal(int64(350), *shop.Benefit) // (300 + 50) - (0 + 0)
		}
	}
}

func (s *MandateServiceTestSuite) TestCancelledSalesNetToZero() {
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 0}}, "admin")
	s.Require().NoError(err)

	// A purchase and its refund: the pair must not move the period's sales.
	s.seedSale("bar", 450)
	s.seedSale("bar", -450)

	preview, err := s.svc.PreviewClose(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), preview.Sales)
}

func (s *MandateServiceTestSuite) TestPreviewUsesLiveStockValuation() {
	s.store.addProduct(domain.Product{
		ProductID:        "beer",
		ShopID:           "bar",
		Name:             "Beer",
		Price:            150,
		Stock:            decimal.NewFromInt(8),
		CorrectionFactor: decimal.NewFromInt(1),
	})
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 1000}}, "admin")
	s.Require().NoError(err)

	preview, err := s.svc.PreviewClose(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1200), preview.FinalStockValue) // 8 x 150

	// Preview persists nothing: the mandate is still open.
	active, err := s.mandates.FindActiveMandate(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.MandateActive, active.Status)
	s.Nil(active.FinalBenefit)
}

func (s *MandateServiceTestSuite) TestCloseWithoutActiveMandateFails() {
	_, err := s.svc.CloseMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 0}}, "admin")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MandateServiceTestSuite) TestClosedMandateCannotBeClosedAgain() {
	_, err := s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 0}}, "admin")
	s.Require().NoError(err)
	_, err = s.svc.CloseMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 0}}, "admin")
	s.Require().NoError(err)

	_, err = s.svc.CloseMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 0}}, "admin")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)

	// A new period can open immediately after.
	_, err = s.svc.StartMandate(s.ctx, []dto.ShopSnapshot{{ShopID: "bar", Value: 0}}, "admin")
	s.Require().NoError(err)
}

func TestMandateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MandateServiceTestSuite))
}

type ExpenseServiceTestSuite struct {
	suite.Suite
	store    *fakeStore
	expenses *fakeExpenseStore
	svc      portssvc.ExpenseSvcFacade
	ctx      context.Context
}

func (s *ExpenseServiceTestSuite) SetupTest() {
	s.store = newFakeStore()
	s.store.addShop("bar")
	s.expenses = newFakeExpenseStore()
	s.svc = services.NewExpenseService(s.expenses, s.store)
	s.ctx = context.Background()
}

func (s *ExpenseServiceTestSuite) TestRecordAndList() {
	expense, err := s.svc.RecordExpense(s.ctx, dto.RecordExpenseRequest{
		ShopID: "bar",
		Amount: 800,
		Label:  "restock run",
	}, "admin")
	s.Require().NoError(err)
	s.NotEmpty(expense.ExpenseID)

	listed, err := s.svc.ListExpenses(s.ctx, "bar", dto.ListExpensesParams{
		From: time.Now().Add(-time.Hour),
		To:   time.Now().Add(time.Hour),
	})
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(int64(800), listed[0].Amount)
}

func (s *ExpenseServiceTestSuite) TestRejectsNonPositiveAmount() {
	_, err := s.svc.RecordExpense(s.ctx, dto.RecordExpenseRequest{ShopID: "bar", Amount: 0, Label: "x"}, "admin")
	s.Require().ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (s *ExpenseServiceTestSuite) TestRejectsUnknownShop() {
	_, err := s.svc.RecordExpense(s.ctx, dto.RecordExpenseRequest{ShopID: "ghost", Amount: 10, Label: "x"}, "admin")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
