package verify

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/mobitest-runner/pkg/core"
	"github.com/devicelab-dev/mobitest-runner/pkg/events"
)

// quick options for tests: short bounds, consume on.
func testOptions(timeout time.Duration) CheckOptions {
	return CheckOptions{
		Timeout:      timeout,
		PollInterval: 20 * time.Millisecond,
		Consume:      true,
	}
}

func newTestVerifier(t *testing.T) (*Verifier, *events.Ingestor) {
	t.Helper()
	store := events.NewStore()
	return NewVerifier(store, nil), events.NewIngestor(store)
}

func purchaseEnvelope(num int, sku string) string {
	return fmt.Sprintf(
		`{"events":[{"name":"Purchase","event_time":"%d","event_num":%d,"data":{"sku":"%s","price":9.99}}]}`,
		1700000000+num, num, sku)
}

func TestCheck_HistoryFastPath(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))

	ok, err := v.Check(map[string]interface{}{"sku": "42"}, testOptions(2*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheck_StringPattern(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))

	ok, err := v.Check(`{"sku": "42"}`, testOptions(time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheck_SoftTimeoutReturnsFalse(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))

	opts := testOptions(200 * time.Millisecond)
	opts.Soft = true
	ok, err := v.Check(map[string]interface{}{"sku": "99"}, opts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_HardTimeoutRaises(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))

	ok, err := v.Check(map[string]interface{}{"sku": "99"}, testOptions(150*time.Millisecond))
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrEventNotFound))

	var fwErr *core.FrameworkError
	require.True(t, errors.As(err, &fwErr))
	assert.Contains(t, fwErr.Details["pattern"], "sku")
}

func TestCheck_PollingPhasePicksUpNewEvents(t *testing.T) {
	v, in := newTestVerifier(t)

	go func() {
		time.Sleep(150 * time.Millisecond)
		in.Ingest(purchaseEnvelope(1, "42"))
	}()

	ok, err := v.Check(map[string]interface{}{"sku": "42"}, testOptions(3*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheck_MatchAnyEvent(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))

	ok, err := v.Check(nil, testOptions(time.Second))
	require.NoError(t, err)
	assert.True(t, ok)

	// The matched event was consumed; no other event exists.
	opts := testOptions(150 * time.Millisecond)
	opts.Soft = true
	ok, err = v.Check(nil, opts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_ConsumeOnce(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))
	pattern := map[string]interface{}{"sku": "42"}

	ok, err := v.Check(pattern, testOptions(time.Second))
	require.NoError(t, err)
	require.True(t, ok)

	// Same single event cannot satisfy a second consuming check.
	opts := testOptions(200 * time.Millisecond)
	opts.Soft = true
	ok, err = v.Check(pattern, opts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_NonConsumingChecksReuseEvent(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))
	pattern := map[string]interface{}{"sku": "42"}

	for i := 0; i < 3; i++ {
		opts := testOptions(time.Second)
		opts.Consume = false
		ok, err := v.Check(pattern, opts)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.False(t, v.Store().IsMatched(1))
}

func TestCheck_EarliestArrivalWins(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))
	in.Ingest(purchaseEnvelope(2, "42"))

	ok, err := v.Check(map[string]interface{}{"sku": "42"}, testOptions(time.Second))
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, v.Store().IsMatched(1))
	assert.False(t, v.Store().IsMatched(2))
}

func TestCheck_ExampleScenario(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(`{"events":[{"name":"Purchase","event_num":1,"data":{"sku":"42","price":9.99}}]}`)

	ok, err := v.Check(map[string]interface{}{"sku": "42"}, testOptions(2*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)

	opts := testOptions(time.Second)
	opts.Soft = true
	ok, err = v.Check(map[string]interface{}{"sku": "99"}, opts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_SkipsConsumedEventsInHistory(t *testing.T) {
	v, in := newTestVerifier(t)
	in.Ingest(purchaseEnvelope(1, "42"))
	v.Store().MarkMatched(1)

	opts := testOptions(150 * time.Millisecond)
	opts.Soft = true
	ok, err := v.Check(map[string]interface{}{"sku": "42"}, opts)
	require.NoError(t, err)
	assert.False(t, ok)
}
