package pgsql

import (
	"context"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAPITokenRepository struct {
	BaseRepository
}

// newPgxAPITokenRepository creates a new repository for provider API tokens.
func newPgxAPITokenRepository(pool *pgxpool.Pool) portsrepo.APITokenRepositoryFacade {
	return &PgxAPITokenRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAPITokenRepository implements portsrepo.APITokenRepositoryFacade
var _ portsrepo.APITokenRepositoryFacade = (*PgxAPITokenRepository)(nil)

// ListActiveTokens retrieves all non-revoked tokens.
func (r *PgxAPITokenRepository) ListActiveTokens(ctx context.Context) ([]domain.APIToken, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT token_id, name, token_hash, revoked_at, last_used_at,
			created_at, created_by, last_updated_at, last_updated_by
		FROM api_tokens
		WHERE revoked_at IS NULL`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query api tokens", err)
	}
	defer rows.Close()

	var tokens []domain.APIToken
	for rows.Next() {
		var t domain.APIToken
		err := rows.Scan(
			&t.TokenID, &t.Name, &t.TokenHash, &t.RevokedAt, &t.LastUsedAt,
			&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan api token", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read api token rows", err)
	}
	return tokens, nil
}
