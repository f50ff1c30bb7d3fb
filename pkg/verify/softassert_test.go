package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/mobitest-runner/pkg/core"
)

func TestSoftAssert_NoFailures(t *testing.T) {
	sa := NewSoftAssert()
	sa.Check(true, "fine")
	sa.AssertEquals(42, 42, true)

	assert.Empty(t, sa.Failures())
	assert.NoError(t, sa.Err())
}

func TestSoftAssert_AccumulatesAllFailures(t *testing.T) {
	sa := NewSoftAssert()
	sa.Check(false, "first failure")
	sa.Check(true, "not recorded")
	sa.Check(false, "second failure")

	require.Len(t, sa.Failures(), 2)

	err := sa.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrAssertionFailed))
	assert.Contains(t, err.Error(), "first failure")
	assert.Contains(t, err.Error(), "second failure")
	assert.Contains(t, err.Error(), "total 2")

	// Err does not reset the accumulator.
	assert.Len(t, sa.Failures(), 2)
}

func TestSoftAssert_HasKey(t *testing.T) {
	obj := map[string]interface{}{
		"event": map[string]interface{}{
			"data": map[string]interface{}{"sku": "42"},
		},
	}

	sa := NewSoftAssert()
	sa.AssertHasKey(obj, "event")
	sa.AssertHasKey(obj, "event.data.sku")
	assert.Empty(t, sa.Failures())

	sa.AssertHasKey(obj, "event.data.price")
	sa.AssertHasKey(obj, "event.data.sku.deeper") // sku is a leaf
	require.Len(t, sa.Failures(), 2)
	assert.Contains(t, sa.Failures()[0], "event.data.price")
}

func TestSoftAssert_Contains(t *testing.T) {
	eventJSON := `{"uri":"/event","body":"{\"event\":{\"data\":{\"sku\":\"42\",\"qty\":2}}}"}`

	sa := NewSoftAssert()
	sa.AssertContains(eventJSON, `{"sku":"42"}`)
	assert.Empty(t, sa.Failures())

	sa.AssertContains(eventJSON, `{"sku":"absent"}`)
	assert.Len(t, sa.Failures(), 1)
}

func TestSoftAssert_Equals(t *testing.T) {
	sa := NewSoftAssert()

	sa.AssertEquals("a", "a", true)
	sa.AssertEquals([]int{1, 2}, []int{1, 2}, false)
	assert.Empty(t, sa.Failures())

	sa.AssertEquals(1, "1", true) // type mismatch wins
	require.Len(t, sa.Failures(), 1)
	assert.Contains(t, sa.Failures()[0], "type mismatch")

	sa.AssertEquals("a", "b", false)
	require.Len(t, sa.Failures(), 2)
	assert.Contains(t, sa.Failures()[1], "values differ")
}
