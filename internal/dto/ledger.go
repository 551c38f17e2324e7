package dto

import (
	"time"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
)

// TransferRequest moves money between two personal wallets.
type TransferRequest struct {
	SenderID   string `json:"senderID" binding:"required"`
	ReceiverID string `json:"receiverID" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Note       string `json:"note"`
}

// TopUpRequest credits a wallet on behalf of an issuer.
type TopUpRequest struct {
	TargetID     string              `json:"targetID" binding:"required"`
	WalletSource domain.WalletSource `json:"walletSource" binding:"required,oneof=PERSONAL FAMILY"`
	Amount       int64               `json:"amount" binding:"required,gt=0"`
	MethodLabel  string              `json:"methodLabel" binding:"required"`
}

// PurchaseItem is one cart line.
type PurchaseItem struct {
	ProductID string `json:"productID" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// PurchaseRequest debits a payer for a cart of products from one shop.
type PurchaseRequest struct {
	ShopID            string              `json:"shopID" binding:"required"`
	PayerID           string              `json:"payerID" binding:"required"`
	Items             []PurchaseItem      `json:"items" binding:"required"`
	Source            domain.WalletSource `json:"source" binding:"required,oneof=PERSONAL FAMILY"`
	FamilyID          *string             `json:"familyID,omitempty"`
	DescriptionPrefix string              `json:"descriptionPrefix"`
}

// AdjustmentRequest applies a signed manual correction to a wallet.
type AdjustmentRequest struct {
	TargetID     string              `json:"targetID" binding:"required"`
	WalletSource domain.WalletSource `json:"walletSource" binding:"required,oneof=PERSONAL FAMILY"`
	Amount       int64               `json:"amount" binding:"required"`
	Description  string              `json:"description" binding:"required"`
	GroupID      *string             `json:"groupID,omitempty"`
}

// UpdateQuantityRequest corrects the quantity of a purchase line.
type UpdateQuantityRequest struct {
	NewQuantity int64 `json:"newQuantity" binding:"gte=0"`
}

// InitiateTopUpRequest starts an external (provider) top-up.
type InitiateTopUpRequest struct {
	UserID   string `json:"userID" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Provider string `json:"provider" binding:"required"`
}

// WebhookTopUpEvent is the provider confirmation payload. The provider has
// already verified the payment; the engine only records the outcome.
type WebhookTopUpEvent struct {
	ExternalRef string `json:"externalRef" binding:"required"`
	Outcome     string `json:"outcome" binding:"required,oneof=confirmed failed"`
	Reason      string `json:"reason"`
}

// ListEntriesParams paginates a wallet's entry history.
type ListEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// EntryResponse is the outward shape of one ledger entry.
type EntryResponse struct {
	EntryID        string              `json:"entryID"`
	Kind           domain.EntryKind    `json:"kind"`
	Status         domain.EntryStatus  `json:"status"`
	Amount         int64               `json:"amount"`
	WalletSource   domain.WalletSource `json:"walletSource"`
	TargetWallet   string              `json:"targetWallet"`
	IssuerID       string              `json:"issuerID"`
	ReceiverWallet *string             `json:"receiverWallet,omitempty"`
	ShopID         *string             `json:"shopID,omitempty"`
	ProductID      *string             `json:"productID,omitempty"`
	Quantity       *int64              `json:"quantity,omitempty"`
	GroupID        *string             `json:"groupID,omitempty"`
	Description    string              `json:"description"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// ListEntriesResponse is one page of a wallet's entry history.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain entry to its response shape.
func ToEntryResponse(e *domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:        e.EntryID,
		Kind:           e.Kind,
		Status:         e.Status,
		Amount:         e.Amount,
		WalletSource:   e.WalletSource,
		TargetWallet:   e.TargetWallet,
		IssuerID:       e.IssuerID,
		ReceiverWallet: e.ReceiverWallet,
		ShopID:         e.ShopID,
		ProductID:      e.ProductID,
		Quantity:       e.Quantity,
		GroupID:        e.GroupID,
		Description:    e.Description,
		CreatedAt:      e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries.
func ToEntryResponses(entries []domain.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}
