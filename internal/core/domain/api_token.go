package domain

import "time"

// APIToken authenticates a payment-provider integration on the webhook
// surface. Only the bcrypt hash of the secret is stored.
type APIToken struct {
	TokenID    string     `json:"tokenID"`
	Name       string     `json:"name"` // provider label, e.g. "lydia"
	TokenHash  string     `json:"-"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	AuditFields
}
