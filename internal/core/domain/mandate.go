package domain

import "time"

// MandateStatus is the lifecycle state of an accounting period.
// Creation goes straight to ACTIVE; COMPLETED is terminal.
type MandateStatus string

const (
	MandatePending   MandateStatus = "PENDING"
	MandateActive    MandateStatus = "ACTIVE"
	MandateCompleted MandateStatus = "COMPLETED"
)

// Mandate is an administrative accounting period over which profit is
// measured. At most one ACTIVE mandate exists system-wide.
type Mandate struct {
	MandateID         string        `json:"mandateID"`
	Status            MandateStatus `json:"status"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           *time.Time    `json:"endTime,omitempty"`
	InitialStockValue int64         `json:"initialStockValue"` // minor currency units
	FinalStockValue   *int64        `json:"finalStockValue,omitempty"`
	FinalBenefit      *int64        `json:"finalBenefit,omitempty"`
	AuditFields
}

// MandateShop is the per-shop financial snapshot within a mandate.
// benefit = (sales + finalStock) - (initialStock + expenses).
type MandateShop struct {
	MandateID         string `json:"mandateID"`
	ShopID            string `json:"shopID"`
	InitialStockValue int64  `json:"initialStockValue"`
	FinalStockValue   *int64 `json:"finalStockValue,omitempty"`
	Sales             *int64 `json:"sales,omitempty"`
	Expenses          *int64 `json:"expenses,omitempty"`
	Benefit           *int64 `json:"benefit,omitempty"`
}
