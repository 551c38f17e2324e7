package services

// ServiceContainer bundles every service facade for injection into the
// transport layer.
type ServiceContainer struct {
	Ledger  LedgerSvcFacade
	Payment PaymentSvcFacade
	Mandate MandateSvcFacade
	Expense ExpenseSvcFacade
}
