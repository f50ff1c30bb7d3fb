package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCategoryString(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryAssertion, "assertion"},
		{ErrCategoryTimeout, "timeout"},
		{ErrCategoryUsage, "usage"},
		{ErrCategoryConnection, "connection"},
		{ErrCategoryConfig, "config"},
		{ErrorCategory(99), "unknown"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.category.String())
	}
}

func TestFrameworkError_IsMatchesByCode(t *testing.T) {
	err := ErrEventNotFound.
		WithMessage("event {\"sku\":\"42\"} not found after 20s").
		WithDetails(map[string]interface{}{"timeout": "20s"})

	assert.True(t, errors.Is(err, ErrEventNotFound))
	assert.False(t, errors.Is(err, ErrItemLookupFailed))

	var fwErr *FrameworkError
	require.True(t, errors.As(err, &fwErr))
	assert.Equal(t, ErrCategoryTimeout, fwErr.Category)
	assert.Equal(t, "20s", fwErr.Details["timeout"])
}

func TestFrameworkError_CopiesDoNotMutateSentinel(t *testing.T) {
	_ = ErrItemLookupFailed.
		WithMessage("custom").
		WithDetails(map[string]interface{}{"attempts": 3}).
		WithCause(fmt.Errorf("inner"))

	assert.Equal(t, "no event item matched the requested data", ErrItemLookupFailed.Message)
	assert.Nil(t, ErrItemLookupFailed.Details)
	assert.Nil(t, ErrItemLookupFailed.Cause)
}

func TestFrameworkError_UnwrapAndMessage(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := ErrServerUnreachable.WithCause(inner)

	assert.Equal(t, "could not connect to automation server: connection refused", err.Error())
	assert.Equal(t, inner, errors.Unwrap(err))

	bare := ErrMalformedPattern
	assert.Equal(t, "pattern must be a JSON object with key/value pairs", bare.Error())
}

func TestFrameworkError_WithDetailsMerges(t *testing.T) {
	base := NewFrameworkError(ErrCategoryUsage, "sample", "sample error").
		WithDetails(map[string]interface{}{"a": 1, "b": 2})
	merged := base.WithDetails(map[string]interface{}{"b": 3, "c": 4})

	assert.Equal(t, 1, merged.Details["a"])
	assert.Equal(t, 3, merged.Details["b"])
	assert.Equal(t, 4, merged.Details["c"])
	// The first copy keeps its own view.
	assert.Equal(t, 2, base.Details["b"])
}
