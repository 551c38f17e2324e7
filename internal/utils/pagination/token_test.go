package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 15, 9, 26, 535897000, time.UTC)
	id := "6b3c1a9e-0000-4000-8000-000000000042"

	token := EncodeToken(createdAt, id)
	gotTime, gotID, err := DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, id, gotID)
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!!")
	assert.Error(t, err)

	// Valid base64 but missing separator.
	_, _, err = DecodeToken("bm8tc2VwYXJhdG9y")
	assert.Error(t, err)
}
