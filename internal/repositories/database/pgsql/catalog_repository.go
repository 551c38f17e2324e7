package pgsql

import (
	"context"
	"errors"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCatalogRepository struct {
	BaseRepository
}

// newPgxCatalogRepository creates a new read-only repository over the catalog:
// shops, events, products and stock valuation.
func newPgxCatalogRepository(pool *pgxpool.Pool) portsrepo.CatalogRepositoryFacade {
	return &PgxCatalogRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCatalogRepository implements portsrepo.CatalogRepositoryFacade
var _ portsrepo.CatalogRepositoryFacade = (*PgxCatalogRepository)(nil)

// FindShopByID retrieves a shop.
func (r *PgxCatalogRepository) FindShopByID(ctx context.Context, shopID string) (*domain.Shop, error) {
	query := `
		SELECT shop_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM shops WHERE shop_id = $1
	`
	var s domain.Shop
	err := r.Pool.QueryRow(ctx, query, shopID).Scan(
		&s.ShopID, &s.Name, &s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("shop " + shopID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query shop "+shopID, err)
	}
	return &s, nil
}

// FindProductsByIDs retrieves products keyed by ID. Missing IDs are simply
// absent from the map.
func (r *PgxCatalogRepository) FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	products := make(map[string]domain.Product, len(productIDs))
	if len(productIDs) == 0 {
		return products, nil
	}

	query := `
		SELECT product_id, shop_id, name, price, stock, correction_factor, archived, event_id,
			created_at, created_by, last_updated_at, last_updated_by
		FROM products WHERE product_id = ANY($1)
	`
	rows, err := r.Pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query products", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ProductID, &p.ShopID, &p.Name, &p.Price, &p.Stock, &p.CorrectionFactor, &p.Archived, &p.EventID,
			&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan product", err)
		}
		products[p.ProductID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read product rows", err)
	}
	return products, nil
}

// FindEventByID retrieves an event.
func (r *PgxCatalogRepository) FindEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `
		SELECT event_id, name, status, created_at, created_by, last_updated_at, last_updated_by
		FROM events WHERE event_id = $1
	`
	var e domain.Event
	err := r.Pool.QueryRow(ctx, query, eventID).Scan(
		&e.EventID, &e.Name, &e.Status, &e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("event " + eventID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query event "+eventID, err)
	}
	return &e, nil
}

// ValueAllActiveStock values current stock per shop: sum of quantity times
// unit price over non-archived products, rounded to whole minor units.
func (r *PgxCatalogRepository) ValueAllActiveStock(ctx context.Context) ([]domain.ShopStockValue, error) {
	query := `
		SELECT shop_id, COALESCE(ROUND(SUM(stock * price)), 0)::bigint
		FROM products
		WHERE archived = false
		GROUP BY shop_id
		ORDER BY shop_id
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to value stock", err)
	}
	defer rows.Close()

	var values []domain.ShopStockValue
	for rows.Next() {
		var v domain.ShopStockValue
		if err := rows.Scan(&v.ShopID, &v.Value); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan stock value row", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read stock value rows", err)
	}
	return values, nil
}
