package services

import (
	"context"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
	"github.com/foyerhq/foyer-backend/internal/dto"
)

// LedgerSvcFacade is the single authority for creating ledger entries and
// mutating wallet balances. Every method runs its writes inside exactly one
// atomic database operation.
type LedgerSvcFacade interface {
	// Transfer moves amount from the sender's personal wallet to the
	// receiver's, recording two linked entries of opposite sign.
	Transfer(ctx context.Context, senderID, receiverID string, amount int64, note string, issuerID string) error

	// TopUp credits the target wallet. Issuer records who authorized it.
	TopUp(ctx context.Context, issuerID string, target domain.WalletRef, amount int64, methodLabel string) error

	// Purchase debits the payer (personal or family wallet) for the cart and
	// decrements product stock, one PURCHASE entry per line item.
	Purchase(ctx context.Context, req dto.PurchaseRequest, issuerID string) error

	// AdminAdjustment applies a signed manual correction. Zero is rejected;
	// negative adjustments may drive a balance negative.
	AdminAdjustment(ctx context.Context, issuerID string, target domain.WalletRef, amount int64, description string, groupID *string) error

	// CancelTransaction reverses a completed entry: compensating entry,
	// balance and stock restoration, status flip. Transfer legs are reversed
	// in pairs.
	CancelTransaction(ctx context.Context, entryID, performedByID string) error

	// CancelTransactionGroup reverses every non-cancelled entry sharing the
	// group ID in one atomic operation and returns how many were reversed.
	CancelTransactionGroup(ctx context.Context, groupID, performedByID string) (int, error)

	// UpdateTransactionQuantity partially cancels a purchase line down to
	// newQuantity. Zero behaves exactly like CancelTransaction.
	UpdateTransactionQuantity(ctx context.Context, entryID string, newQuantity int64, performedByID string) error

	// GetEntry retrieves one ledger entry.
	GetEntry(ctx context.Context, entryID string) (*domain.Entry, error)

	// ListWalletEntries retrieves a wallet's entries, newest first.
	ListWalletEntries(ctx context.Context, wallet domain.WalletRef, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// GetBalance retrieves a wallet's current denormalized balance.
	GetBalance(ctx context.Context, wallet domain.WalletRef) (int64, error)
}

// PaymentSvcFacade tracks external top-ups: a PENDING entry at checkout
// initiation, confirmed or failed by the provider webhook.
type PaymentSvcFacade interface {
	// InitiateTopUp records a PENDING top-up and returns the external
	// reference handed to the provider at checkout.
	InitiateTopUp(ctx context.Context, userID string, amount int64, providerLabel string) (string, error)

	// ConfirmTopUp flips the referenced entry to COMPLETED and credits the
	// wallet. A second confirmation of the same reference fails.
	ConfirmTopUp(ctx context.Context, externalRef string) error

	// FailTopUp flips the referenced entry to FAILED. The balance is never
	// touched.
	FailTopUp(ctx context.Context, externalRef, reason string) error
}
