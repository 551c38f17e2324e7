package domain

import "github.com/shopspring/decimal"

// EntryKind classifies a money movement.
type EntryKind string

const (
	KindPurchase   EntryKind = "PURCHASE"
	KindTopUp      EntryKind = "TOPUP"
	KindTransfer   EntryKind = "TRANSFER"
	KindRefund     EntryKind = "REFUND"
	KindDeposit    EntryKind = "DEPOSIT"
	KindAdjustment EntryKind = "ADJUSTMENT"
)

// EntryStatus is the lifecycle state of a ledger entry. Only COMPLETED entries
// count toward a wallet balance. PENDING and FAILED exist for external-payment
// tracking. CANCELLED and SUPERSEDED are terminal; the compensating entry that
// undid them carries the balance effect.
type EntryStatus string

const (
	StatusCompleted  EntryStatus = "COMPLETED"
	StatusPending    EntryStatus = "PENDING"
	StatusFailed     EntryStatus = "FAILED"
	StatusCancelled  EntryStatus = "CANCELLED"
	StatusSuperseded EntryStatus = "SUPERSEDED"
)

// Entry is one immutable signed money movement. Negative amounts leave the
// target wallet, positive amounts enter it. After creation the only permitted
// mutation is the status flip (plus description marker) performed by a
// cancellation or quantity correction; amounts and kinds never change.
type Entry struct {
	EntryID      string       `json:"entryID"`
	Kind         EntryKind    `json:"kind"`
	Status       EntryStatus  `json:"status"`
	Amount       int64        `json:"amount"` // minor currency units, signed
	WalletSource WalletSource `json:"walletSource"`
	TargetWallet string       `json:"targetWallet"` // user or family ID, per WalletSource
	IssuerID     string       `json:"issuerID"`     // identity that initiated the action

	// ReceiverWallet is the counterpart wallet of a transfer leg.
	ReceiverWallet *string `json:"receiverWallet,omitempty"`

	// Commercial context, used for stock reversal and period aggregation.
	ShopID    *string          `json:"shopID,omitempty"`
	ProductID *string          `json:"productID,omitempty"`
	Quantity  *int64           `json:"quantity,omitempty"`
	EventID   *string          `json:"eventID,omitempty"`
	FamilyID  *string          `json:"familyID,omitempty"`

	// GroupID links entries created by one bulk operation (mass charge).
	GroupID *string `json:"groupID,omitempty"`

	// TransferGroupID is shared by the two legs of a transfer, replacing the
	// old issuer/amount/timestamp matching heuristic.
	TransferGroupID *string `json:"transferGroupID,omitempty"`

	// ReplacedByEntryID points a SUPERSEDED purchase line at its replacement.
	ReplacedByEntryID *string `json:"replacedByEntryID,omitempty"`

	// ExternalRef is the provider-facing reference of a pending top-up.
	ExternalRef *string `json:"externalRef,omitempty"`

	Description string `json:"description"`
	AuditFields
}

// Target returns the wallet ref this entry's amount applies to.
func (e Entry) Target() WalletRef {
	return WalletRef{Source: e.WalletSource, ID: e.TargetWallet}
}

// StockDepletion returns how much stock a purchase line consumed, i.e.
// quantity times the product's correction factor. Zero when the entry carries
// no quantity.
func (e Entry) StockDepletion(correctionFactor decimal.Decimal) decimal.Decimal {
	if e.Quantity == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(*e.Quantity).Mul(correctionFactor)
}
