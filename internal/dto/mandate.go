package dto

import (
	"time"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
)

// ShopSnapshot carries one shop's stock valuation, as supplied by the caller
// at mandate open/close (live computation, possibly human-adjusted).
type ShopSnapshot struct {
	ShopID string `json:"shopID" binding:"required"`
	Value  int64  `json:"value" binding:"gte=0"`
}

// StartMandateRequest opens a new accounting period.
type StartMandateRequest struct {
	Snapshots []ShopSnapshot `json:"snapshots" binding:"required,min=1,dive"`
}

// CloseMandateRequest closes the active period with admin-confirmed finals.
type CloseMandateRequest struct {
	Finals []ShopSnapshot `json:"finals" binding:"required,min=1,dive"`
}

// ShopClosePreview is the computed close figure for one shop.
type ShopClosePreview struct {
	ShopID            string `json:"shopID"`
	InitialStockValue int64  `json:"initialStockValue"`
	FinalStockValue   int64  `json:"finalStockValue"`
	Sales             int64  `json:"sales"`
	Expenses          int64  `json:"expenses"`
	Benefit           int64  `json:"benefit"`
}

// MandateClosePreview is the full preview of closing the active mandate.
type MandateClosePreview struct {
	MandateID         string             `json:"mandateID"`
	StartTime         time.Time          `json:"startTime"`
	Shops             []ShopClosePreview `json:"shops"`
	InitialStockValue int64              `json:"initialStockValue"`
	FinalStockValue   int64              `json:"finalStockValue"`
	Sales             int64              `json:"sales"`
	Expenses          int64              `json:"expenses"`
	Benefit           int64              `json:"benefit"`
}

// ListMandatesParams paginates the mandate history.
type ListMandatesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// MandateResponse is the outward shape of one mandate.
type MandateResponse struct {
	MandateID         string               `json:"mandateID"`
	Status            domain.MandateStatus `json:"status"`
	StartTime         time.Time            `json:"startTime"`
	EndTime           *time.Time           `json:"endTime,omitempty"`
	InitialStockValue int64                `json:"initialStockValue"`
	FinalStockValue   *int64               `json:"finalStockValue,omitempty"`
	FinalBenefit      *int64               `json:"finalBenefit,omitempty"`
}

// ListMandatesResponse is one page of mandate history.
type ListMandatesResponse struct {
	Mandates  []MandateResponse `json:"mandates"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToMandateResponse converts a domain mandate to its response shape.
func ToMandateResponse(m *domain.Mandate) MandateResponse {
	return MandateResponse{
		MandateID:         m.MandateID,
		Status:            m.Status,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		InitialStockValue: m.InitialStockValue,
		FinalStockValue:   m.FinalStockValue,
		FinalBenefit:      m.FinalBenefit,
	}
}
