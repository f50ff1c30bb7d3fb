package events

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
)

// Ingestor normalizes raw payloads into canonical Events and stores them.
//
// Two raw shapes are supported:
//
//  1. Analytics envelope:
//     { "meta": {...}, "events": [ {name, event_time|time, event_num|num, data}, ... ] }
//     Each element's data is wrapped into {"event":{"data":...}} and serialized
//     as the new event's body, so subset matchers always work on the data level.
//
//  2. Single HTTP-like record:
//     { "data": {uri, remoteAddress|remote_address, headers, query, body}, ... }
//
// A payload that cannot be parsed or normalized is logged and skipped; the
// rest of the batch still proceeds.
type Ingestor struct {
	store *Store
}

// NewIngestor creates an ingestor feeding the given store.
func NewIngestor(store *Store) *Ingestor {
	return &Ingestor{store: store}
}

// Ingest converts each payload (JSON text, raw bytes, or an already-parsed
// object) into events and appends them to the store. Events duplicated by
// EventNum within one call are dropped before they reach the store; the
// accepted events are returned.
func (in *Ingestor) Ingest(payloads ...interface{}) []Event {
	var collected []Event
	for _, raw := range payloads {
		data, err := decodePayload(raw)
		if err != nil {
			logger.Warn("failed to ingest event payload: %v", err)
			continue
		}

		// Envelope { meta, events: [...] }
		if envelope, ok := data["events"].([]interface{}); ok {
			collected = append(collected, in.parseEnvelope(envelope)...)
			continue
		}

		ev, err := parseRecord(data)
		if err != nil {
			logger.Warn("failed to ingest event payload: %v", err)
			continue
		}
		collected = append(collected, ev)
	}

	if len(collected) == 0 {
		return collected
	}

	// De-duplicate by EventNum within a single ingest call.
	seen := make(map[int]struct{}, len(collected))
	unique := collected[:0]
	for _, ev := range collected {
		if _, dup := seen[ev.EventNum]; dup {
			continue
		}
		seen[ev.EventNum] = struct{}{}
		unique = append(unique, ev)
	}

	in.store.AddEvents(unique)
	return unique
}

// parseEnvelope converts the elements of an envelope's events array.
func (in *Ingestor) parseEnvelope(items []interface{}) []Event {
	var out []Event
	for _, el := range items {
		item, ok := el.(map[string]interface{})
		if !ok {
			continue
		}

		itemData := item["data"]
		if itemData == nil {
			itemData = map[string]interface{}{}
		}
		body, err := json.Marshal(map[string]interface{}{
			"event": map[string]interface{}{"data": itemData},
		})
		if err != nil {
			logger.Warn("failed to serialize envelope event data: %v", err)
			continue
		}

		num, err := intField(item, "event_num", "num")
		if err != nil {
			logger.Warn("skipping envelope event: %v", err)
			continue
		}

		out = append(out, Event{
			EventTime: stringField(item, "event_time", "time"),
			EventNum:  num,
			Name:      stringField(item, "name"),
			Data: &EventData{
				URI:           "",
				RemoteAddress: "",
				Headers:       map[string][]string{},
				Query:         nil,
				Body:          string(body),
			},
		})
	}
	return out
}

// parseRecord converts a single HTTP-like event object.
func parseRecord(d map[string]interface{}) (Event, error) {
	var eventData *EventData
	if ed, ok := d["data"].(map[string]interface{}); ok {
		body := stringField(ed, "body")
		if body == "" {
			body = "{}"
		}
		eventData = &EventData{
			URI:           stringField(ed, "uri", "path"),
			RemoteAddress: stringField(ed, "remoteAddress", "remote_address"),
			Headers:       headerField(ed["headers"]),
			Query:         optionalString(ed["query"]),
			Body:          body,
		}
	}

	num, err := intField(d, "event_num", "num", "id")
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventTime: stringField(d, "event_time", "time", "timestamp"),
		EventNum:  num,
		Name:      stringField(d, "name", "method"),
		Data:      eventData,
	}, nil
}

// decodePayload parses the raw payload into an object.
func decodePayload(raw interface{}) (map[string]interface{}, error) {
	switch t := raw.(type) {
	case map[string]interface{}:
		return t, nil
	case string:
		return decodeJSONObject([]byte(t))
	case []byte:
		return decodeJSONObject(t)
	default:
		return nil, fmt.Errorf("unsupported payload type %T", raw)
	}
}

func decodeJSONObject(b []byte) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// stringField returns the first present key rendered as a string.
func stringField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		v, present := m[k]
		if !present || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// intField returns the first present key as an int, or 0 when absent.
// A present but unparseable value is an error so the caller can skip.
func intField(m map[string]interface{}, keys ...string) (int, error) {
	for _, k := range keys {
		v, present := m[k]
		if !present || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t), nil
		case int:
			return t, nil
		case string:
			n, err := strconv.Atoi(t)
			if err != nil {
				return 0, fmt.Errorf("field %q is not numeric: %q", k, t)
			}
			return n, nil
		default:
			return 0, fmt.Errorf("field %q has unsupported type %T", k, v)
		}
	}
	return 0, nil
}

// headerField normalizes a headers object to multi-valued form.
func headerField(v interface{}) map[string][]string {
	out := map[string][]string{}
	m, ok := v.(map[string]interface{})
	if !ok {
		return out
	}
	for name, hv := range m {
		switch t := hv.(type) {
		case string:
			out[name] = []string{t}
		case []interface{}:
			vals := make([]string, 0, len(t))
			for _, item := range t {
				if s, ok := item.(string); ok {
					vals = append(vals, s)
				}
			}
			out[name] = vals
		}
	}
	return out
}

func optionalString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
