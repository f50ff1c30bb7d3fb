// Package events holds the event data model, the thread-safe in-memory
// event store, and normalization of raw payloads into canonical events.
package events

import (
	json "github.com/goccy/go-json"
)

// EventData describes one HTTP-like delivery captured from the app under test.
// The body is raw text; by convention it is itself a JSON document, but it is
// kept opaque so unparseable bodies survive intact.
type EventData struct {
	URI           string              `json:"uri"`
	RemoteAddress string              `json:"remoteAddress"`
	Headers       map[string][]string `json:"headers"`
	Query         *string             `json:"query"`
	Body          string              `json:"body"`
}

// Event is one immutable, uniquely-numbered record of something that
// happened in the system under test.
type Event struct {
	// EventTime is an implementation-defined timestamp string. Time-bounded
	// filtering assumes it parses as a number; nothing else requires that.
	EventTime string `json:"event_time"`

	// EventNum is the sequence number, unique within a store. It acts as
	// primary key and consumption token.
	EventNum int `json:"event_num"`

	// Name is the logical event label, e.g. "BATCH" for one ingestion call.
	Name string `json:"name"`

	Data *EventData `json:"data,omitempty"`
}

// DataJSON returns the serialized EventData, or "" when the event carries
// no data or serialization fails.
func (e Event) DataJSON() string {
	if e.Data == nil {
		return ""
	}
	b, err := json.Marshal(e.Data)
	if err != nil {
		return ""
	}
	return string(b)
}
