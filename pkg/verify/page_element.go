package verify

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/devicelab-dev/mobitest-runner/pkg/core"
	"github.com/devicelab-dev/mobitest-runner/pkg/events"
	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
	"github.com/devicelab-dev/mobitest-runner/pkg/match"
)

// EventPosition selects which of several matching events to use.
type EventPosition string

// Event positions.
const (
	PositionFirst EventPosition = "first"
	PositionLast  EventPosition = "last"
)

// ScrollFunc performs one scroll gesture between lookup attempts. The
// direction and capacity from the options are passed through so a
// driver-backed callback can parameterize the gesture.
type ScrollFunc func(direction core.ScrollDirection, capacity float64) error

// PageElementOptions control a page-element lookup.
type PageElementOptions struct {
	Timeout         time.Duration        // wait bound per attempt
	ScrollCount     int                  // scroll retries; total attempts = ScrollCount + 1
	ScrollCapacity  float64              // gesture size, 0..1 of the screen
	ScrollDirection core.ScrollDirection //
	EventPosition   EventPosition        // first or last matching event
	Scroll          ScrollFunc           // optional scroll callback between attempts
	Consume         bool                 // mark the chosen event as consumed
}

// DefaultPageElementOptions returns the lookup defaults: per-attempt event
// timeout, no scroll retries, downward scroll, first event, consume.
func DefaultPageElementOptions() PageElementOptions {
	return PageElementOptions{
		Timeout:         core.DefaultEventTimeout,
		ScrollCount:     core.DefaultScrollCount,
		ScrollCapacity:  core.DefaultScrollCapacity,
		ScrollDirection: core.DefaultScrollDirection,
		EventPosition:   PositionFirst,
		Consume:         true,
	}
}

func (o PageElementOptions) withDefaults() PageElementOptions {
	if o.Timeout <= 0 {
		o.Timeout = core.DefaultEventTimeout
	}
	if o.ScrollCount < 0 {
		o.ScrollCount = 0
	}
	if o.ScrollCapacity <= 0 {
		o.ScrollCapacity = core.DefaultScrollCapacity
	}
	if o.ScrollDirection == "" {
		o.ScrollDirection = core.DefaultScrollDirection
	}
	if o.EventPosition == "" {
		o.EventPosition = PositionFirst
	}
	return o
}

// PageElementMatchedEvent builds a cross-platform locator from an item
// inside a stored event whose nested fields satisfy every key/value pair of
// the pattern.
//
// Each attempt waits (softly) for any event containing the pattern, picks
// the first or last matching event, and searches its data.items (also
// supporting the batched events[*].data.items shape) for the first item
// whose tree deep-contains all pattern pairs. The item's name feeds the
// android text and ios label locators. When an attempt fails and scroll
// retries remain, the scroll callback runs and the lookup repeats.
func (v *Verifier) PageElementMatchedEvent(pattern interface{}, opts PageElementOptions) (core.PageElement, error) {
	opts = opts.withDefaults()

	expected, hasPattern, err := patternJSON(pattern)
	if err != nil {
		return core.PageElement{}, err
	}
	if !hasPattern {
		return core.PageElement{}, core.ErrMalformedPattern
	}
	var searchObj map[string]interface{}
	if err := json.Unmarshal([]byte(expected), &searchObj); err != nil || searchObj == nil {
		return core.PageElement{}, core.ErrMalformedPattern.WithCause(err)
	}

	maxAttempts := opts.ScrollCount + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		el, err := v.lookupElement(expected, searchObj, opts)
		if err == nil {
			return el, nil
		}
		lastErr = err

		if attempt < maxAttempts {
			logger.Info("event item lookup failed, scrolling and retrying (attempt %d/%d): %v",
				attempt, maxAttempts, err)
			v.doScroll(opts)
		}
	}

	return core.PageElement{}, core.ErrItemLookupFailed.
		WithMessage(fmt.Sprintf("event with filter %s not found after %d attempts (with scroll)", expected, maxAttempts)).
		WithCause(lastErr)
}

// lookupElement performs a single wait-match-extract attempt.
func (v *Verifier) lookupElement(expected string, searchObj map[string]interface{}, opts PageElementOptions) (core.PageElement, error) {
	ok, _ := v.Check(expected, CheckOptions{
		Timeout: opts.Timeout,
		Soft:    true,
		Consume: false,
	})
	if !ok {
		return core.PageElement{}, fmt.Errorf("event with specified data not found within %s", opts.Timeout)
	}

	// Collect all stored events matching the JSON filter.
	var matched []events.Event
	for _, ev := range v.store.Events() {
		if j := ev.DataJSON(); j != "" && match.ContainsSubset(j, expected) {
			matched = append(matched, ev)
		}
	}
	if len(matched) == 0 {
		return core.PageElement{}, fmt.Errorf("no stored event matches filter %s", expected)
	}

	chosen := matched[0]
	if opts.EventPosition == PositionLast {
		chosen = matched[len(matched)-1]
	}

	if opts.Consume && !v.store.IsMatched(chosen.EventNum) {
		v.store.MarkMatched(chosen.EventNum)
	}

	if chosen.Data == nil {
		return core.PageElement{}, fmt.Errorf("matched event #%d is missing data", chosen.EventNum)
	}
	var bodyObj interface{}
	if err := json.Unmarshal([]byte(chosen.Data.Body), &bodyObj); err != nil {
		return core.PageElement{}, fmt.Errorf("matched event #%d body is not JSON: %w", chosen.EventNum, err)
	}

	item, found := findItem(bodyObj, searchObj)
	if !found {
		return core.PageElement{}, fmt.Errorf("no item in matched event contains subset %s", expected)
	}

	nameVal, present := item["name"]
	if !present {
		return core.PageElement{}, fmt.Errorf("matched item does not contain a name field")
	}
	itemName := fmt.Sprintf("%v", nameVal)
	logger.Info("resolved page element from event item %q (position=%s)", itemName, opts.EventPosition)

	return core.PageElement{
		Android: core.ByText(itemName),
		IOS:     core.ByLabel(itemName),
	}, nil
}

// doScroll runs the configured scroll callback, if any.
func (v *Verifier) doScroll(opts PageElementOptions) {
	if opts.Scroll == nil {
		logger.Info("scroll skipped: no scroll callback provided")
		return
	}
	if err := opts.Scroll(opts.ScrollDirection, opts.ScrollCapacity); err != nil {
		logger.Info("scroll failed: %v", err)
	}
}

// findItem returns the first candidate item whose tree contains every
// key/value pair of the search object.
func findItem(body interface{}, searchObj map[string]interface{}) (map[string]interface{}, bool) {
	for _, item := range candidateItems(body) {
		all := true
		for k, sv := range searchObj {
			if !match.FindKeyValue(item, k, sv) {
				all = false
				break
			}
		}
		if all {
			return item, true
		}
	}
	return nil, false
}

// candidateItems yields item objects under the typical paths:
// event.data.items, data.items, and events[*].data.items.
func candidateItems(root interface{}) []map[string]interface{} {
	var out []map[string]interface{}

	appendItems := func(dataNode interface{}) {
		dm, ok := dataNode.(map[string]interface{})
		if !ok {
			return
		}
		items, ok := dm["items"].([]interface{})
		if !ok {
			return
		}
		for _, it := range items {
			if m, ok := it.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
	}

	switch t := root.(type) {
	case map[string]interface{}:
		if ev, ok := t["event"].(map[string]interface{}); ok {
			if d, present := ev["data"]; present {
				appendItems(d)
			}
		} else if d, present := t["data"]; present {
			appendItems(d)
		}
		if evs, ok := t["events"].([]interface{}); ok {
			for _, e := range evs {
				if em, ok := e.(map[string]interface{}); ok {
					appendItems(em["data"])
				}
			}
		}
	case []interface{}:
		for _, el := range t {
			out = append(out, candidateItems(el)...)
		}
	}
	return out
}
