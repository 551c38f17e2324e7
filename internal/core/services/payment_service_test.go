package services_test

import (
	"context"
	"testing"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	store   *fakeStore
	payment portssvc.PaymentSvcFacade
	ctx     context.Context
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.store = newFakeStore()
	s.store.addUser("alice", 1000)
	s.payment = services.NewPaymentService(s.store, s.store)
	s.ctx = context.Background()
}

func (s *PaymentServiceTestSuite) TestInitiateRecordsPendingWithoutCrediting() {
	externalRef, err := s.payment.InitiateTopUp(s.ctx, "alice", 2500, "lydia")
	s.Require().NoError(err)
	s.Require().NotEmpty(externalRef)

	s.Equal(int64(1000), s.store.balanceOf(domain.PersonalWallet("alice")))

	entry, err := s.store.FindEntryByExternalRef(s.ctx, externalRef)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, entry.Status)
	s.Equal(domain.KindTopUp, entry.Kind)
	s.Equal(int64(2500), entry.Amount)
}

func (s *PaymentServiceTestSuite) TestConfirmCreditsExactlyOnce() {
	externalRef, err := s.payment.InitiateTopUp(s.ctx, "alice", 2500, "lydia")
	s.Require().NoError(err)

	s.Require().NoError(s.payment.ConfirmTopUp(s.ctx, externalRef))
	s.Equal(int64(3500), s.store.balanceOf(domain.PersonalWallet("alice")))

	entry, err := s.store.FindEntryByExternalRef(s.ctx, externalRef)
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, entry.Status)

	// A duplicated webhook delivery must not credit twice.
	err = s.payment.ConfirmTopUp(s.ctx, externalRef)
	s.Require().ErrorIs(err, apperrors.ErrConflict)
	s.Equal(int64(3500), s.store.balanceOf(domain.PersonalWallet("alice")))
}

func (s *PaymentServiceTestSuite) TestFailNeverTouchesBalance() {
	externalRef, err := s.payment.InitiateTopUp(s.ctx, "alice", 2500, "lydia")
	s.Require().NoError(err)

	s.Require().NoError(s.payment.FailTopUp(s.ctx, externalRef, "card declined"))
	s.Equal(int64(1000), s.store.balanceOf(domain.PersonalWallet("alice")))

	entry, err := s.store.FindEntryByExternalRef(s.ctx, externalRef)
	s.Require().NoError(err)
	s.Equal(domain.StatusFailed, entry.Status)

	// A failed top-up cannot be confirmed afterwards.
	s.Require().ErrorIs(s.payment.ConfirmTopUp(s.ctx, externalRef), apperrors.ErrConflict)
}

func (s *PaymentServiceTestSuite) TestUnknownReferenceIsNotFound() {
	s.Require().ErrorIs(s.payment.ConfirmTopUp(s.ctx, "nope"), apperrors.ErrNotFound)
	s.Require().ErrorIs(s.payment.FailTopUp(s.ctx, "nope", ""), apperrors.ErrNotFound)
}

func (s *PaymentServiceTestSuite) TestInitiateRejectsNonPositiveAmount() {
	_, err := s.payment.InitiateTopUp(s.ctx, "alice", 0, "lydia")
	s.Require().ErrorIs(err, apperrors.ErrInvalidAmount)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
