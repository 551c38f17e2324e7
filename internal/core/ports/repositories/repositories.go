package repositories

// RepositoryProvider bundles every repository the services need.
type RepositoryProvider struct {
	LedgerRepo   LedgerRepositoryFacade
	WalletRepo   WalletRepositoryFacade
	CatalogRepo  CatalogRepositoryFacade
	MandateRepo  MandateRepositoryFacade
	ExpenseRepo  ExpenseRepositoryFacade
	APITokenRepo APITokenRepositoryFacade
}
