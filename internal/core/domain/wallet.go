package domain

// WalletSource identifies which kind of wallet a ledger entry targets.
type WalletSource string

const (
	SourcePersonal WalletSource = "PERSONAL"
	SourceFamily   WalletSource = "FAMILY"
)

// WalletRef identifies one wallet: a user's personal balance or a family's
// shared balance. It is comparable and used as a map key for balance deltas.
type WalletRef struct {
	Source WalletSource `json:"source"`
	ID     string       `json:"id"`
}

// PersonalWallet returns a ref to a user's personal wallet.
func PersonalWallet(userID string) WalletRef {
	return WalletRef{Source: SourcePersonal, ID: userID}
}

// FamilyWallet returns a ref to a family's shared wallet.
func FamilyWallet(familyID string) WalletRef {
	return WalletRef{Source: SourceFamily, ID: familyID}
}

// User holds the identity-store projection the ledger needs: the denormalized
// personal balance (minor currency units) and the account lifecycle flags.
// Balance is always the sum of all applied entries targeting this wallet.
type User struct {
	UserID      string `json:"userID"`
	Name        string `json:"name"`
	Balance     int64  `json:"balance"` // minor currency units
	Deactivated bool   `json:"deactivated"`
	Deleted     bool   `json:"deleted"`
	AuditFields
}

// Family is a shared wallet pooled by a group of users.
type Family struct {
	FamilyID string `json:"familyID"`
	Name     string `json:"name"`
	Balance  int64  `json:"balance"` // minor currency units
	AuditFields
}
