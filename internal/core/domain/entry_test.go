package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTarget(t *testing.T) {
	entry := Entry{WalletSource: SourceFamily, TargetWallet: "fam-1"}
	assert.Equal(t, FamilyWallet("fam-1"), entry.Target())

	entry = Entry{WalletSource: SourcePersonal, TargetWallet: "user-1"}
	assert.Equal(t, PersonalWallet("user-1"), entry.Target())
}

func TestStockDepletion(t *testing.T) {
	qty := int64(5)
	entry := Entry{Quantity: &qty}

	// A glass of wine depletes a fifth of a bottle.
	got := entry.StockDepletion(decimal.RequireFromString("0.2"))
	assert.True(t, got.Equal(decimal.NewFromInt(1)), "got %s", got)

	got = entry.StockDepletion(decimal.NewFromInt(1))
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}

func TestStockDepletionWithoutQuantity(t *testing.T) {
	entry := Entry{}
	assert.True(t, entry.StockDepletion(decimal.NewFromInt(1)).IsZero())
}
