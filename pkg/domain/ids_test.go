package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clubhub/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseCampaignID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseApplicationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseClubID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ClubID(valid), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := NewUserID()
	clubID := NewClubID()

	// These would fail to compile if types were interchangeable:
	// var _ UserID = clubID       // compile error
	// var _ ClubID = userID       // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(clubID))
}

func TestRoundTripText(t *testing.T) {
	orig := NewCampaignID()
	text, err := orig.MarshalText()
	require.NoError(t, err)

	var parsed CampaignID
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, orig, parsed)
}
