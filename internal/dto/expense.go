package dto

import "time"

// RecordExpenseRequest records a shop operating expense.
type RecordExpenseRequest struct {
	ShopID     string     `json:"shopID" binding:"required"`
	Amount     int64      `json:"amount" binding:"required,gt=0"`
	Label      string     `json:"label" binding:"required"`
	IncurredAt *time.Time `json:"incurredAt,omitempty"`
}

// ListExpensesParams bounds an expense listing to a time window.
type ListExpensesParams struct {
	From time.Time `form:"from" binding:"required"`
	To   time.Time `form:"to" binding:"required"`
}
