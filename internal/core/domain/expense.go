package domain

import "time"

// Expense is a shop-scoped operating expense. Expenses feed the accounting
// period aggregation alongside ledger sales; they never touch wallets.
type Expense struct {
	ExpenseID  string    `json:"expenseID"`
	ShopID     string    `json:"shopID"`
	Amount     int64     `json:"amount"` // minor currency units, positive
	Label      string    `json:"label"`
	IncurredAt time.Time `json:"incurredAt"`
	AuditFields
}
