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
	"github.com/foyerhq/foyer-backend/internal/middleware"
)

// paymentService tracks external provider top-ups. A PENDING entry is written
// at checkout initiation and flipped by the provider webhook; the wallet is
// credited only on confirmation.
type paymentService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	walletRepo portsrepo.WalletRepositoryFacade
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(ledgerRepo portsrepo.LedgerRepositoryFacade, walletRepo portsrepo.WalletRepositoryFacade) portssvc.PaymentSvcFacade {
	return &paymentService{
		ledgerRepo: ledgerRepo,
		walletRepo: walletRepo,
	}
}

// Ensure paymentService implements the portssvc.PaymentSvcFacade interface
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// InitiateTopUp records a PENDING top-up and returns the external reference
// handed to the provider at checkout. The balance is not touched.
func (s *paymentService) InitiateTopUp(ctx context.Context, userID string, amount int64, providerLabel string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount <= 0 {
		return "", fmt.Errorf("%w: top-up amount must be positive, got %d", apperrors.ErrInvalidAmount, amount)
	}
	user, err := s.walletRepo.FindUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	if user.Deleted {
		return "", fmt.Errorf("%w: user %s", apperrors.ErrWalletDeleted, userID)
	}

	now := time.Now()
	externalRef := uuid.NewString()

	mutation := newMutation()
	mutation.Entries = []domain.Entry{{
		EntryID:      uuid.NewString(),
		Kind:         domain.KindTopUp,
		Status:       domain.StatusPending,
		Amount:       amount,
		WalletSource: domain.SourcePersonal,
		TargetWallet: userID,
		IssuerID:     userID,
		ExternalRef:  &externalRef,
		Description:  fmt.Sprintf("Top-up via %s", providerLabel),
		AuditFields:  newAudit(userID, now),
	}}

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Pending top-up failed to record", "userID", userID, "error", err)
		return "", fmt.Errorf("failed to record pending top-up: %w", err)
	}

	logger.Info("Top-up initiated", "userID", userID, "amount", amount, "externalRef", externalRef)
	return externalRef, nil
}

// ConfirmTopUp flips the referenced PENDING entry to COMPLETED and credits the
// wallet. The status guard makes a duplicated webhook delivery fail instead of
// crediting twice.
func (s *paymentService) ConfirmTopUp(ctx context.Context, externalRef string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.ledgerRepo.FindEntryByExternalRef(ctx, externalRef)
	if err != nil {
		return fmt.Errorf("failed to find top-up %s: %w", externalRef, err)
	}
	if entry.Status != domain.StatusPending {
		return fmt.Errorf("%w: top-up %s is %s", apperrors.ErrConflict, externalRef, entry.Status)
	}

	mutation := newMutation()
	mutation.BalanceChanges[entry.Target()] = entry.Amount
	mutation.StatusChanges = []portsrepo.StatusChange{{
		EntryID:       entry.EntryID,
		NewStatus:     domain.StatusCompleted,
		RequireStatus: domain.StatusPending,
	}}

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Top-up confirmation failed to apply", "externalRef", externalRef, "error", err)
		return fmt.Errorf("failed to confirm top-up: %w", err)
	}

	logger.Info("Top-up confirmed", "externalRef", externalRef, "target", entry.TargetWallet, "amount", entry.Amount)
	return nil
}

// FailTopUp flips the referenced PENDING entry to FAILED. The balance is never
// touched.
func (s *paymentService) FailTopUp(ctx context.Context, externalRef, reason string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.ledgerRepo.FindEntryByExternalRef(ctx, externalRef)
	if err != nil {
		return fmt.Errorf("failed to find top-up %s: %w", externalRef, err)
	}
	if entry.Status != domain.StatusPending {
		return fmt.Errorf("%w: top-up %s is %s", apperrors.ErrConflict, externalRef, entry.Status)
	}

	note := " (failed)"
	if reason != "" {
		note = fmt.Sprintf(" (failed: %s)", reason)
	}

	mutation := newMutation()
	mutation.StatusChanges = []portsrepo.StatusChange{{
		EntryID:         entry.EntryID,
		NewStatus:       domain.StatusFailed,
		RequireStatus:   domain.StatusPending,
		DescriptionNote: note,
	}}

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Top-up failure failed to record", "externalRef", externalRef, "error", err)
		return fmt.Errorf("failed to mark top-up failed: %w", err)
	}

	logger.Info("Top-up marked failed", "externalRef", externalRef, "reason", reason)
	return nil
}
