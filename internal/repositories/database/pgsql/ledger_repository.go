package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/foyerhq/foyer-backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entries and the
// atomic mutation write path.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const selectEntryFields = `
	entry_id, kind, status, amount, wallet_source, target_wallet, issuer_id,
	receiver_wallet, shop_id, product_id, quantity, event_id, family_id,
	group_id, transfer_group_id, replaced_by_entry_id, external_ref,
	description, created_at, created_by, last_updated_at, last_updated_by
`

const insertEntryQuery = `
	INSERT INTO entries (
		entry_id, kind, status, amount, wallet_source, target_wallet, issuer_id,
		receiver_wallet, shop_id, product_id, quantity, event_id, family_id,
		group_id, transfer_group_id, replaced_by_entry_id, external_ref,
		description, created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
`

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	err := row.Scan(
		&e.EntryID, &e.Kind, &e.Status, &e.Amount, &e.WalletSource, &e.TargetWallet, &e.IssuerID,
		&e.ReceiverWallet, &e.ShopID, &e.ProductID, &e.Quantity, &e.EventID, &e.FamilyID,
		&e.GroupID, &e.TransferGroupID, &e.ReplacedByEntryID, &e.ExternalRef,
		&e.Description, &e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ApplyMutation applies every part of the mutation inside one database
// transaction: wallet rows are locked in deterministic order, deltas applied,
// funds re-validated on the locked rows, stock adjusted, entries inserted and
// status flips executed under their status guard.
func (r *PgxLedgerRepository) ApplyMutation(ctx context.Context, m portsrepo.LedgerMutation) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.applyBalanceChanges(ctx, tx, m); err != nil {
		return err
	}

	for productID, delta := range m.StockChanges {
		tag, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2, last_updated_at = now() WHERE product_id = $1`, productID, delta)
		if err != nil {
			return apperrors.NewAppError(500, "failed to adjust stock for product "+productID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("product " + productID + " not found")
		}
	}

	if len(m.Entries) > 0 {
		batch := &pgx.Batch{}
		for _, e := range m.Entries {
			batch.Queue(insertEntryQuery,
				e.EntryID, e.Kind, e.Status, e.Amount, e.WalletSource, e.TargetWallet, e.IssuerID,
				e.ReceiverWallet, e.ShopID, e.ProductID, e.Quantity, e.EventID, e.FamilyID,
				e.GroupID, e.TransferGroupID, e.ReplacedByEntryID, e.ExternalRef,
				e.Description, e.CreatedAt, e.CreatedBy, e.LastUpdatedAt, e.LastUpdatedBy,
			)
		}
		results := tx.SendBatch(ctx, batch)
		for range m.Entries {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return apperrors.NewAppError(500, "failed to insert ledger entry", err)
			}
		}
		if err := results.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to close entry insert batch", err)
		}
	}

	for _, change := range m.StatusChanges {
		tag, err := tx.Exec(ctx, `
			UPDATE entries
			SET status = $2,
				description = description || $3,
				replaced_by_entry_id = COALESCE($4, replaced_by_entry_id),
				last_updated_at = now()
			WHERE entry_id = $1 AND status = $5`,
			change.EntryID, change.NewStatus, change.DescriptionNote, change.ReplacedByEntryID, change.RequireStatus,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to update status of entry "+change.EntryID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s is no longer %s", apperrors.ErrConflict, change.EntryID, change.RequireStatus)
		}
	}

	return r.Commit(ctx, tx)
}

// applyBalanceChanges locks the affected wallet rows in a deterministic order
// so two concurrent mutations touching the same wallets cannot deadlock, then
// applies the deltas and enforces the non-negative constraint on the wallets
// that require it.
func (r *PgxLedgerRepository) applyBalanceChanges(ctx context.Context, tx pgx.Tx, m portsrepo.LedgerMutation) error {
	if len(m.BalanceChanges) == 0 {
		return nil
	}

	wallets := make([]domain.WalletRef, 0, len(m.BalanceChanges))
	for wallet := range m.BalanceChanges {
		wallets = append(wallets, wallet)
	}
	sort.Slice(wallets, func(i, j int) bool {
		if wallets[i].Source != wallets[j].Source {
			return wallets[i].Source < wallets[j].Source
		}
		return wallets[i].ID < wallets[j].ID
	})

	enforced := make(map[domain.WalletRef]bool, len(m.EnforceFunds))
	for _, wallet := range m.EnforceFunds {
		enforced[wallet] = true
	}

	for _, wallet := range wallets {
		table, idColumn := "users", "user_id"
		if wallet.Source == domain.SourceFamily {
			table, idColumn = "families", "family_id"
		}

		var balance int64
		lockQuery := fmt.Sprintf(`SELECT balance FROM %s WHERE %s = $1 FOR UPDATE`, table, idColumn)
		if err := tx.QueryRow(ctx, lockQuery, wallet.ID).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFoundError("wallet " + wallet.ID + " not found")
			}
			return apperrors.NewAppError(500, "failed to lock wallet "+wallet.ID, err)
		}

		newBalance := balance + m.BalanceChanges[wallet]
		if enforced[wallet] && newBalance < 0 {
			return fmt.Errorf("%w: wallet %s would drop to %d", apperrors.ErrInsufficientFunds, wallet.ID, newBalance)
		}

		updateQuery := fmt.Sprintf(`UPDATE %s SET balance = $2, last_updated_at = now() WHERE %s = $1`, table, idColumn)
		if _, err := tx.Exec(ctx, updateQuery, wallet.ID, newBalance); err != nil {
			return apperrors.NewAppError(500, "failed to update balance of wallet "+wallet.ID, err)
		}
	}
	return nil
}

// FindEntryByID retrieves a single entry.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	query := `SELECT ` + selectEntryFields + ` FROM entries WHERE entry_id = $1`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("entry " + entryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query entry "+entryID, err)
	}
	return entry, nil
}

func (r *PgxLedgerRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read entry rows", err)
	}
	return entries, nil
}

// FindEntriesByGroupID retrieves all entries created by one bulk operation.
func (r *PgxLedgerRepository) FindEntriesByGroupID(ctx context.Context, groupID string) ([]domain.Entry, error) {
	query := `SELECT ` + selectEntryFields + ` FROM entries WHERE group_id = $1 ORDER BY created_at, entry_id`
	return r.queryEntries(ctx, query, groupID)
}

// FindEntriesByTransferGroupID retrieves both legs of a transfer.
func (r *PgxLedgerRepository) FindEntriesByTransferGroupID(ctx context.Context, transferGroupID string) ([]domain.Entry, error) {
	query := `SELECT ` + selectEntryFields + ` FROM entries WHERE transfer_group_id = $1 ORDER BY created_at, entry_id`
	return r.queryEntries(ctx, query, transferGroupID)
}

// FindEntryByExternalRef retrieves the entry tracking an external payment.
func (r *PgxLedgerRepository) FindEntryByExternalRef(ctx context.Context, externalRef string) (*domain.Entry, error) {
	query := `SELECT ` + selectEntryFields + ` FROM entries WHERE external_ref = $1`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, externalRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no entry with external ref " + externalRef)
		}
		return nil, apperrors.NewAppError(500, "failed to query entry by external ref", err)
	}
	return entry, nil
}

// ListEntriesByWallet retrieves a page of entries targeting a wallet, newest
// first, with keyset pagination on (created_at, entry_id).
func (r *PgxLedgerRepository) ListEntriesByWallet(ctx context.Context, wallet domain.WalletRef, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	query := `SELECT ` + selectEntryFields + ` FROM entries WHERE wallet_source = $1 AND target_wallet = $2`
	args := []any{wallet.Source, wallet.ID}

	if nextToken != nil && *nextToken != "" {
		createdAt, entryID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, entry_id) < ($3, $4)`
		args = append(args, createdAt, entryID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, entry_id DESC LIMIT %d`, limit+1)

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		token = &t
	}
	return entries, token, nil
}

// SumSalesByShop aggregates shop revenue over [from, to). Cancelled purchases
// stay in the sum and are netted out by their refunds; only PENDING and
// FAILED entries never count.
func (r *PgxLedgerRepository) SumSalesByShop(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	query := `
		SELECT shop_id, -COALESCE(SUM(amount), 0)
		FROM entries
		WHERE shop_id IS NOT NULL
		  AND kind IN ($1, $2)
		  AND status NOT IN ($3, $4)
		  AND created_at >= $5 AND created_at < $6
		GROUP BY shop_id
	`
	rows, err := r.Pool.Query(ctx, query,
		domain.KindPurchase, domain.KindRefund,
		domain.StatusPending, domain.StatusFailed,
		from, to,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate sales", err)
	}
	defer rows.Close()

	sales := make(map[string]int64)
	for rows.Next() {
		var shopID string
		var total int64
		if err := rows.Scan(&shopID, &total); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan sales row", err)
		}
		sales[shopID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read sales rows", err)
	}
	return sales, nil
}
