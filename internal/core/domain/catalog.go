package domain

import "github.com/shopspring/decimal"

// Shop sells products against member wallets.
type Shop struct {
	ShopID string `json:"shopID"`
	Name   string `json:"name"`
	AuditFields
}

// EventStatus is the lifecycle state of an organizational event.
type EventStatus string

const (
	EventOpen   EventStatus = "OPEN"
	EventClosed EventStatus = "CLOSED"
)

// Event is an organizational event products may be attached to. Purchases of
// such products are linked to the event while it is OPEN.
type Event struct {
	EventID string      `json:"eventID"`
	Name    string      `json:"name"`
	Status  EventStatus `json:"status"`
	AuditFields
}

// Product is the catalog projection the ledger consumes read-only: current
// unit price, stock level and the per-product correction factor (fcv) that
// converts sold quantity into stock depletion.
type Product struct {
	ProductID        string          `json:"productID"`
	ShopID           string          `json:"shopID"`
	Name             string          `json:"name"`
	Price            int64           `json:"price"` // minor currency units per unit
	Stock            decimal.Decimal `json:"stock"`
	CorrectionFactor decimal.Decimal `json:"correctionFactor"`
	Archived         bool            `json:"archived"`
	EventID          *string         `json:"eventID,omitempty"`
	AuditFields
}

// ShopStockValue is one shop's current stock valuation (quantity x unit
// price over non-archived products), in minor currency units.
type ShopStockValue struct {
	ShopID string `json:"shopID"`
	Value  int64  `json:"value"`
}
