package repositories

import (
	"context"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
)

// CatalogReader exposes the catalog projections the engine consumes
// read-only: product price/stock/correction factor and stock valuation.
// Product lifecycle (CRUD, restocks) is owned elsewhere; the ledger only
// adjusts stock as a side effect of purchases and their reversals.
type CatalogReader interface {
	// FindShopByID retrieves a shop.
	FindShopByID(ctx context.Context, shopID string) (*domain.Shop, error)

	// FindProductsByIDs retrieves products keyed by ID. Missing IDs are
	// simply absent from the map.
	FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error)

	// FindEventByID retrieves an event.
	FindEventByID(ctx context.Context, eventID string) (*domain.Event, error)

	// ValueAllActiveStock values current stock per shop: sum of
	// quantity x unit price over non-archived products.
	ValueAllActiveStock(ctx context.Context) ([]domain.ShopStockValue, error)
}

// CatalogRepositoryFacade combines catalog repository interfaces.
type CatalogRepositoryFacade interface {
	CatalogReader
}
