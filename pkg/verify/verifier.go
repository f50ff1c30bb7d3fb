// Package verify implements the event waiting and matching protocol exposed
// to test code: filtering stored events, blocking and background checks
// against JSON subset patterns, and locator derivation from matched events.
package verify

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/devicelab-dev/mobitest-runner/pkg/events"
	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
	"github.com/devicelab-dev/mobitest-runner/pkg/match"
	"github.com/devicelab-dev/mobitest-runner/pkg/report"
)

// MatchMode controls how event names are compared when filtering.
type MatchMode string

// Name match modes.
const (
	MatchExact      MatchMode = "exact"
	MatchContains   MatchMode = "contains"
	MatchStartsWith MatchMode = "starts_with"
	MatchRegex      MatchMode = "regex"
)

// Verifier waits for events (sync or async), filters them, and offers
// expected/actual diagnostics to the reporting sink on every check.
// One verifier shares one store with the ingestion side for the duration
// of a test.
type Verifier struct {
	store *events.Store
	sink  report.Sink

	mu      sync.Mutex
	pending []<-chan bool
}

// NewVerifier creates a verifier over the given store. A nil store gets an
// isolated private store; a nil sink disables diagnostics.
func NewVerifier(store *events.Store, sink report.Sink) *Verifier {
	if store == nil {
		logger.Warn("verifier created without shared event store, using isolated store")
		store = events.NewStore()
	}
	if sink == nil {
		sink = report.NopSink{}
	}
	return &Verifier{store: store, sink: sink}
}

// Store returns the underlying event store.
func (v *Verifier) Store() *events.Store {
	return v.store
}

// Filter describes event filtering criteria. Zero-valued fields are not
// applied.
type Filter struct {
	Name         string    // event name to compare, per NameMode
	NameMode     MatchMode // defaults to exact
	Since        *float64  // inclusive lower bound on numeric event_time
	Until        *float64  // inclusive upper bound on numeric event_time
	Where        func(events.Event) bool
	JSONContains string // subset required within the event's data JSON
}

// FilterEvents returns a snapshot of stored events matching the filter.
// Events whose time does not parse as a number are excluded from
// time-bounded queries.
func (v *Verifier) FilterEvents(f Filter) []events.Event {
	var out []events.Event
	for _, e := range v.store.Events() {
		if f.Name != "" && !nameMatches(e.Name, f.Name, f.NameMode) {
			continue
		}
		if f.Since != nil {
			t, err := strconv.ParseFloat(e.EventTime, 64)
			if err != nil || t < *f.Since {
				continue
			}
		}
		if f.Until != nil {
			t, err := strconv.ParseFloat(e.EventTime, 64)
			if err != nil || t > *f.Until {
				continue
			}
		}
		if f.Where != nil && !f.Where(e) {
			continue
		}
		if f.JSONContains != "" {
			j := e.DataJSON()
			if j == "" || !match.ContainsSubset(j, f.JSONContains) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// nameMatches compares an event name against the expected value.
func nameMatches(actual, expected string, mode MatchMode) bool {
	switch mode {
	case MatchExact, "":
		return actual == expected
	case MatchContains:
		return strings.Contains(actual, expected)
	case MatchStartsWith:
		return strings.HasPrefix(actual, expected)
	case MatchRegex:
		re, err := regexp.Compile(expected)
		if err != nil {
			return false
		}
		return re.MatchString(actual)
	}
	return false
}
