package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode_WalksWrappedChains(t *testing.T) {
	base := New(CodeConflict, "campaign is full")
	wrapped := fmt.Errorf("submit: %w", base)

	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "membership store unreachable")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
}

func TestWithReason(t *testing.T) {
	err := WithReason(CodeConflict, "campaign_full", "campaign has reached its application limit")

	assert.Equal(t, "campaign_full", ReasonOf(err))
	assert.Equal(t, CodeConflict, CodeOf(err))
	assert.Empty(t, ReasonOf(errors.New("plain")))
}

func TestWithFields(t *testing.T) {
	fields := map[string]string{"q1": "required", "q2": "too_long"}
	err := WithFields(CodeValidation, "application answers are invalid", fields)

	assert.Equal(t, fields, FieldsOf(err))
	assert.Nil(t, FieldsOf(New(CodeValidation, "no fields")))
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("uncoded")))
}
