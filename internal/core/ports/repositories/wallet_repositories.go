package repositories

import (
	"context"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
)

// WalletReader exposes the identity-store projections the ledger validates
// against: balances, lifecycle flags and family membership. Balance writes go
// exclusively through LedgerWriter.ApplyMutation.
type WalletReader interface {
	// FindUserByID retrieves a user and their personal wallet balance.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindFamilyByID retrieves a family and its shared wallet balance.
	FindFamilyByID(ctx context.Context, familyID string) (*domain.Family, error)

	// IsFamilyMember reports whether the user may spend from the family wallet.
	IsFamilyMember(ctx context.Context, familyID, userID string) (bool, error)
}

// WalletRepositoryFacade combines wallet repository interfaces.
type WalletRepositoryFacade interface {
	WalletReader
}
