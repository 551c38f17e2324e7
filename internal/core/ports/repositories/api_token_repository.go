package repositories

import (
	"context"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
)

// APITokenRepositoryFacade defines persistence for payment-provider API
// tokens. Tokens are stored bcrypt-hashed; the webhook middleware compares
// the presented secret against active hashes.
type APITokenRepositoryFacade interface {
	// ListActiveTokens retrieves all non-revoked tokens.
	ListActiveTokens(ctx context.Context) ([]domain.APIToken, error)
}
