package repositories

import (
	"context"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
)

// MandateReader defines read operations for accounting periods.
type MandateReader interface {
	// FindActiveMandate retrieves the single ACTIVE mandate, or ErrNotFound.
	FindActiveMandate(ctx context.Context) (*domain.Mandate, error)

	// FindMandateByID retrieves a mandate and its per-shop snapshots.
	FindMandateByID(ctx context.Context, mandateID string) (*domain.Mandate, []domain.MandateShop, error)

	// ListMandates retrieves a paginated list of mandates, newest first.
	ListMandates(ctx context.Context, limit int, nextToken *string) ([]domain.Mandate, *string, error)
}

// MandateWriter defines write operations for accounting periods.
type MandateWriter interface {
	// SaveMandate inserts an ACTIVE mandate with its shop snapshots in one
	// transaction. The store's uniqueness constraint on ACTIVE mandates makes
	// a concurrent open fail with ErrMandateAlreadyActive.
	SaveMandate(ctx context.Context, mandate domain.Mandate, shops []domain.MandateShop) error

	// CloseMandate persists the final snapshot: mandate totals, per-shop
	// finals, status COMPLETED and end time, atomically. Fails with
	// ErrConflict if the mandate is no longer ACTIVE.
	CloseMandate(ctx context.Context, mandate domain.Mandate, shops []domain.MandateShop) error
}

// MandateRepositoryFacade combines mandate repository interfaces.
type MandateRepositoryFacade interface {
	MandateReader
	MandateWriter
}
