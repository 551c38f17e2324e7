package pgsql

import (
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:   newPgxLedgerRepository(dbPool),
		WalletRepo:   newPgxWalletRepository(dbPool),
		CatalogRepo:  newPgxCatalogRepository(dbPool),
		MandateRepo:  newPgxMandateRepository(dbPool),
		ExpenseRepo:  newPgxExpenseRepository(dbPool),
		APITokenRepo: newPgxAPITokenRepository(dbPool),
	}
}
