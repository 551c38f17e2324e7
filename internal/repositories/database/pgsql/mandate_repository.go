package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/foyerhq/foyer-backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolationCode is the PostgreSQL error code raised by the partial
// unique index guarding the single ACTIVE mandate.
const uniqueViolationCode = "23505"

type PgxMandateRepository struct {
	BaseRepository
}

// newPgxMandateRepository creates a new repository for accounting periods.
func newPgxMandateRepository(pool *pgxpool.Pool) portsrepo.MandateRepositoryFacade {
	return &PgxMandateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxMandateRepository implements portsrepo.MandateRepositoryFacade
var _ portsrepo.MandateRepositoryFacade = (*PgxMandateRepository)(nil)

const selectMandateFields = `
	mandate_id, status, start_time, end_time, initial_stock_value,
	final_stock_value, final_benefit,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanMandate(row pgx.Row) (*domain.Mandate, error) {
	var m domain.Mandate
	err := row.Scan(
		&m.MandateID, &m.Status, &m.StartTime, &m.EndTime, &m.InitialStockValue,
		&m.FinalStockValue, &m.FinalBenefit,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMandate inserts an ACTIVE mandate with its shop snapshots in one
// transaction. The partial unique index on ACTIVE mandates turns a concurrent
// open into ErrMandateAlreadyActive.
func (r *PgxMandateRepository) SaveMandate(ctx context.Context, mandate domain.Mandate, shops []domain.MandateShop) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO mandates (`+selectMandateFields+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		mandate.MandateID, mandate.Status, mandate.StartTime, mandate.EndTime, mandate.InitialStockValue,
		mandate.FinalStockValue, mandate.FinalBenefit,
		mandate.CreatedAt, mandate.CreatedBy, mandate.LastUpdatedAt, mandate.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.ErrMandateAlreadyActive
		}
		return apperrors.NewAppError(500, "failed to insert mandate "+mandate.MandateID, err)
	}

	batch := &pgx.Batch{}
	for _, shop := range shops {
		batch.Queue(`
			INSERT INTO mandate_shops (mandate_id, shop_id, initial_stock_value)
			VALUES ($1, $2, $3)`,
			shop.MandateID, shop.ShopID, shop.InitialStockValue,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range shops {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to insert mandate shop snapshot", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close mandate shop batch", err)
	}

	return r.Commit(ctx, tx)
}

// CloseMandate persists the final snapshot atomically. The status guard on the
// mandate row makes a concurrent double close fail with ErrConflict.
func (r *PgxMandateRepository) CloseMandate(ctx context.Context, mandate domain.Mandate, shops []domain.MandateShop) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `
		UPDATE mandates
		SET status = $2, end_time = $3, final_stock_value = $4, final_benefit = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE mandate_id = $1 AND status = $8`,
		mandate.MandateID, mandate.Status, mandate.EndTime, mandate.FinalStockValue, mandate.FinalBenefit,
		mandate.LastUpdatedAt, mandate.LastUpdatedBy, domain.MandateActive,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to close mandate "+mandate.MandateID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: mandate %s is not active", apperrors.ErrConflict, mandate.MandateID)
	}

	batch := &pgx.Batch{}
	for _, shop := range shops {
		// Shops that joined mid-period have no opening row yet.
		batch.Queue(`
			INSERT INTO mandate_shops (mandate_id, shop_id, initial_stock_value, final_stock_value, sales, expenses, benefit)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (mandate_id, shop_id) DO UPDATE
			SET final_stock_value = EXCLUDED.final_stock_value,
				sales = EXCLUDED.sales,
				expenses = EXCLUDED.expenses,
				benefit = EXCLUDED.benefit`,
			shop.MandateID, shop.ShopID, shop.InitialStockValue, shop.FinalStockValue, shop.Sales, shop.Expenses, shop.Benefit,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range shops {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return apperrors.NewAppError(500, "failed to upsert mandate shop final", err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close mandate shop batch", err)
	}

	return r.Commit(ctx, tx)
}

// FindActiveMandate retrieves the single ACTIVE mandate, or ErrNotFound.
func (r *PgxMandateRepository) FindActiveMandate(ctx context.Context) (*domain.Mandate, error) {
	query := `SELECT ` + selectMandateFields + ` FROM mandates WHERE status = $1`
	mandate, err := scanMandate(r.Pool.QueryRow(ctx, query, domain.MandateActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no active mandate")
		}
		return nil, apperrors.NewAppError(500, "failed to query active mandate", err)
	}
	return mandate, nil
}

// FindMandateByID retrieves a mandate and its per-shop snapshots.
func (r *PgxMandateRepository) FindMandateByID(ctx context.Context, mandateID string) (*domain.Mandate, []domain.MandateShop, error) {
	query := `SELECT ` + selectMandateFields + ` FROM mandates WHERE mandate_id = $1`
	mandate, err := scanMandate(r.Pool.QueryRow(ctx, query, mandateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFoundError("mandate " + mandateID + " not found")
		}
		return nil, nil, apperrors.NewAppError(500, "failed to query mandate "+mandateID, err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT mandate_id, shop_id, initial_stock_value, final_stock_value, sales, expenses, benefit
		FROM mandate_shops WHERE mandate_id = $1 ORDER BY shop_id`, mandateID)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query mandate shops", err)
	}
	defer rows.Close()

	var shops []domain.MandateShop
	for rows.Next() {
		var s domain.MandateShop
		if err := rows.Scan(&s.MandateID, &s.ShopID, &s.InitialStockValue, &s.FinalStockValue, &s.Sales, &s.Expenses, &s.Benefit); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan mandate shop", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to read mandate shop rows", err)
	}
	return mandate, shops, nil
}

// ListMandates retrieves a page of mandates, newest first, with keyset
// pagination on (created_at, mandate_id).
func (r *PgxMandateRepository) ListMandates(ctx context.Context, limit int, nextToken *string) ([]domain.Mandate, *string, error) {
	query := `SELECT ` + selectMandateFields + ` FROM mandates`
	var args []any

	if nextToken != nil && *nextToken != "" {
		createdAt, mandateID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` WHERE (created_at, mandate_id) < ($1, $2)`
		args = append(args, createdAt, mandateID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, mandate_id DESC LIMIT %d`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query mandates", err)
	}
	defer rows.Close()

	var mandates []domain.Mandate
	for rows.Next() {
		mandate, err := scanMandate(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan mandate", err)
		}
		mandates = append(mandates, *mandate)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to read mandate rows", err)
	}

	var token *string
	if len(mandates) > limit {
		mandates = mandates[:limit]
		last := mandates[len(mandates)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.MandateID)
		token = &t
	}
	return mandates, token, nil
}
