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

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for the identity-store
// projections: users, families and family membership.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryFacade {
	return &PgxWalletRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryFacade
var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

// FindUserByID retrieves a user and their personal wallet balance.
func (r *PgxWalletRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, name, balance, deactivated, deleted,
			created_at, created_by, last_updated_at, last_updated_by
		FROM users WHERE user_id = $1
	`
	var u domain.User
	err := r.Pool.QueryRow(ctx, query, userID).Scan(
		&u.UserID, &u.Name, &u.Balance, &u.Deactivated, &u.Deleted,
		&u.CreatedAt, &u.CreatedBy, &u.LastUpdatedAt, &u.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user " + userID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query user "+userID, err)
	}
	return &u, nil
}

// FindFamilyByID retrieves a family and its shared wallet balance.
func (r *PgxWalletRepository) FindFamilyByID(ctx context.Context, familyID string) (*domain.Family, error) {
	query := `
		SELECT family_id, name, balance,
			created_at, created_by, last_updated_at, last_updated_by
		FROM families WHERE family_id = $1
	`
	var f domain.Family
	err := r.Pool.QueryRow(ctx, query, familyID).Scan(
		&f.FamilyID, &f.Name, &f.Balance,
		&f.CreatedAt, &f.CreatedBy, &f.LastUpdatedAt, &f.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("family " + familyID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query family "+familyID, err)
	}
	return &f, nil
}

// IsFamilyMember reports whether the user may spend from the family wallet.
func (r *PgxWalletRepository) IsFamilyMember(ctx context.Context, familyID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM family_members WHERE family_id = $1 AND user_id = $2)`
	var member bool
	if err := r.Pool.QueryRow(ctx, query, familyID, userID).Scan(&member); err != nil {
		return false, apperrors.NewAppError(500, "failed to check family membership", err)
	}
	return member, nil
}
