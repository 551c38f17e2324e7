package repositories

import (
	"context"
	"time"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatusChange flips the status of an existing entry as part of a mutation.
// The update is guarded by RequireStatus: if the row is no longer in that
// status the whole mutation fails, which makes cancellation idempotent under
// concurrency.
type StatusChange struct {
	EntryID           string
	NewStatus         domain.EntryStatus
	RequireStatus     domain.EntryStatus
	DescriptionNote   string // appended to the entry description, never replaces it
	ReplacedByEntryID *string
}

// LedgerMutation is one atomic unit of ledger work: every balance update,
// stock update, entry insert and status flip it carries commits together or
// not at all.
type LedgerMutation struct {
	// Entries to insert.
	Entries []domain.Entry

	// BalanceChanges are signed deltas per wallet, applied as
	// balance = balance + delta under a row lock.
	BalanceChanges map[domain.WalletRef]int64

	// EnforceFunds lists wallets whose balance must not go negative after the
	// deltas are applied. Validated inside the transaction, against the
	// locked row, so two concurrent spenders cannot both pass a stale check.
	EnforceFunds []domain.WalletRef

	// StockChanges are signed stock deltas per product (already multiplied by
	// the product's correction factor).
	StockChanges map[string]decimal.Decimal

	// StatusChanges flip existing entries (cancellation, supersession,
	// pending top-up confirmation).
	StatusChanges []StatusChange
}

// EntryReader defines read operations for ledger entries.
type EntryReader interface {
	// FindEntryByID retrieves a single entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error)

	// FindEntriesByGroupID retrieves all entries created by one bulk operation.
	FindEntriesByGroupID(ctx context.Context, groupID string) ([]domain.Entry, error)

	// FindEntriesByTransferGroupID retrieves both legs of a transfer.
	FindEntriesByTransferGroupID(ctx context.Context, transferGroupID string) ([]domain.Entry, error)

	// FindEntryByExternalRef retrieves the entry tracking an external payment.
	FindEntryByExternalRef(ctx context.Context, externalRef string) (*domain.Entry, error)

	// ListEntriesByWallet retrieves a paginated list of entries targeting a
	// wallet using token-based pagination. It returns the entries, a token
	// for the next page, and an error.
	ListEntriesByWallet(ctx context.Context, wallet domain.WalletRef, limit int, nextToken *string) ([]domain.Entry, *string, error)

	// SumSalesByShop aggregates shop revenue over [from, to): the negated sum
	// of PURCHASE and REFUND amounts, excluding PENDING and FAILED entries.
	SumSalesByShop(ctx context.Context, from, to time.Time) (map[string]int64, error)
}

// LedgerWriter defines the single atomic write path of the ledger.
type LedgerWriter interface {
	// ApplyMutation applies the mutation inside one database transaction.
	ApplyMutation(ctx context.Context, m LedgerMutation) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	EntryReader
	LedgerWriter
}
