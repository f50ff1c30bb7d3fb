package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	json "github.com/goccy/go-json"
)

func TestIngestor_Envelope(t *testing.T) {
	store := NewStore()
	in := NewIngestor(store)

	got := in.Ingest(`{
		"meta": {"session": "s1"},
		"events": [
			{"name": "Purchase", "event_time": "1700000001", "event_num": 1, "data": {"sku": "42", "price": 9.99}},
			{"name": "View", "time": "1700000002", "num": 2}
		]
	}`)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Purchase", first.Name)
	assert.Equal(t, 1, first.EventNum)
	assert.Equal(t, "1700000001", first.EventTime)
	require.NotNil(t, first.Data)

	// The item's data is wrapped as {"event":{"data":...}} inside the body.
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(first.Data.Body), &body))
	ev, ok := body["event"].(map[string]interface{})
	require.True(t, ok)
	data, ok := ev["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42", data["sku"])

	second := got[1]
	assert.Equal(t, "View", second.Name)
	assert.Equal(t, 2, second.EventNum)
	assert.Equal(t, "1700000002", second.EventTime)

	assert.Len(t, store.Events(), 2)
}

func TestIngestor_SingleRecord(t *testing.T) {
	store := NewStore()
	in := NewIngestor(store)

	got := in.Ingest(map[string]interface{}{
		"name":       "POST",
		"timestamp":  "1700000005",
		"id":         float64(7),
		"data": map[string]interface{}{
			"uri":            "/track",
			"remote_address": "10.0.0.2:4100",
			"headers":        map[string]interface{}{"Content-Type": "application/json"},
			"query":          "v=1",
			"body":           `{"data":{"sku":"42"}}`,
		},
	})
	require.Len(t, got, 1)

	ev := got[0]
	assert.Equal(t, "POST", ev.Name)
	assert.Equal(t, 7, ev.EventNum)
	assert.Equal(t, "1700000005", ev.EventTime)
	require.NotNil(t, ev.Data)
	assert.Equal(t, "/track", ev.Data.URI)
	assert.Equal(t, "10.0.0.2:4100", ev.Data.RemoteAddress)
	assert.Equal(t, []string{"application/json"}, ev.Data.Headers["Content-Type"])
	require.NotNil(t, ev.Data.Query)
	assert.Equal(t, "v=1", *ev.Data.Query)
}

func TestIngestor_FieldAliases(t *testing.T) {
	store := NewStore()
	in := NewIngestor(store)

	got := in.Ingest(`{"method": "GET", "time": "5", "num": 3, "data": {"remoteAddress": "1.2.3.4:80", "path": "/p"}}`)
	require.Len(t, got, 1)

	ev := got[0]
	assert.Equal(t, "GET", ev.Name)
	assert.Equal(t, 3, ev.EventNum)
	require.NotNil(t, ev.Data)
	assert.Equal(t, "1.2.3.4:80", ev.Data.RemoteAddress)
	assert.Equal(t, "/p", ev.Data.URI)
	assert.Equal(t, "{}", ev.Data.Body) // missing body defaults
	assert.Nil(t, ev.Data.Query)
}

func TestIngestor_MalformedPayloadSkipped(t *testing.T) {
	store := NewStore()
	in := NewIngestor(store)

	got := in.Ingest(
		`not json at all`,
		`{"name": "ok", "event_num": 1}`,
		42,
	)

	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Name)
	assert.Len(t, store.Events(), 1)
}

func TestIngestor_DeduplicatesWithinOneCall(t *testing.T) {
	store := NewStore()
	in := NewIngestor(store)

	got := in.Ingest(`{
		"events": [
			{"name": "a", "event_num": 1},
			{"name": "b", "event_num": 1},
			{"name": "c", "event_num": 2}
		]
	}`)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)
}

func TestIngestor_MissingNumDefaultsToZero(t *testing.T) {
	store := NewStore()
	in := NewIngestor(store)

	got := in.Ingest(`{"events": [{"name": "unnumbered"}]}`)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].EventNum)
}

func TestIngestor_RawBytesPayload(t *testing.T) {
	store := NewStore()
	in := NewIngestor(store)

	got := in.Ingest([]byte(`{"name": "bytes", "event_num": 9}`))
	require.Len(t, got, 1)
	assert.Equal(t, "bytes", got[0].Name)
}
