package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPITokenRoundTrip(t *testing.T) {
	hash, err := HashAPIToken("whsec_lydia")
	require.NoError(t, err)
	assert.NotEqual(t, "whsec_lydia", hash)

	assert.True(t, CheckAPIToken("whsec_lydia", hash))
	assert.False(t, CheckAPIToken("whsec_other", hash))
}
