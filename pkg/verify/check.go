package verify

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/devicelab-dev/mobitest-runner/pkg/core"
	"github.com/devicelab-dev/mobitest-runner/pkg/events"
	"github.com/devicelab-dev/mobitest-runner/pkg/logger"
	"github.com/devicelab-dev/mobitest-runner/pkg/match"
	"github.com/devicelab-dev/mobitest-runner/pkg/report"
)

// CheckOptions control one event check.
type CheckOptions struct {
	Timeout      time.Duration // total wait bound; defaults to core.DefaultEventTimeout
	PollInterval time.Duration // sleep between polls; defaults to core.DefaultPollInterval
	Soft         bool          // timeout returns false instead of an error
	Consume      bool          // mark the matched event so later consume-checks skip it
}

// DefaultCheckOptions returns the options used by test helpers: default
// timeout and polling, hard failure, consume on match.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{
		Timeout:      core.DefaultEventTimeout,
		PollInterval: core.DefaultPollInterval,
		Consume:      true,
	}
}

func (o CheckOptions) withDefaults() CheckOptions {
	if o.Timeout <= 0 {
		o.Timeout = core.DefaultEventTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = core.DefaultPollInterval
	}
	return o
}

// Check waits for an event whose body JSON contains the given pattern.
//
// The pattern is a JSON object (map), a JSON string, or nil to match any
// event. Key/value pairs are searched deeply across the whole body, so each
// pair may live in a different branch.
//
// Two phases: all currently-stored events are scanned first without
// waiting, in arrival order; if nothing matches, only newly-arrived events
// are polled until the timeout elapses. The first matching event in arrival
// order wins.
//
// On timeout the check returns false; unless Soft is set it also returns an
// ErrEventNotFound carrying the pattern and the last observed payload.
func (v *Verifier) Check(pattern interface{}, opts CheckOptions) (bool, error) {
	opts = opts.withDefaults()

	expected, hasPattern, err := patternJSON(pattern)
	if err != nil {
		return false, err
	}

	logger.Info("waiting for event (pattern=%s timeout=%s)", expected, opts.Timeout)

	// Fast path: scan existing history.
	history := v.store.Events()
	for _, ev := range history {
		if v.tryMatch(ev, expected, hasPattern, opts.Consume, "event_check(history)") {
			return true, nil
		}
	}

	// Poll only new events.
	startIndex := len(history)
	deadline := time.Now().Add(opts.Timeout)
	var lastSeen string

	for time.Now().Before(deadline) {
		newEvents := v.store.EventsFrom(startIndex)
		for _, ev := range newEvents {
			if v.tryMatch(ev, expected, hasPattern, opts.Consume, "event_check(poll)") {
				return true, nil
			}
			if j := ev.DataJSON(); j != "" {
				lastSeen = j
			}
		}
		startIndex += len(newEvents)
		time.Sleep(opts.PollInterval)
	}

	logger.Warn("event wait timed out (pattern=%s)", expected)
	report.AttachCheckArtifacts(v.sink, "event_check", expected, lastSeen)
	if opts.Soft {
		return false, nil
	}

	msg := fmt.Sprintf("expected event was not found within %s", opts.Timeout)
	details := map[string]interface{}{"timeout": opts.Timeout.String()}
	if hasPattern {
		msg = fmt.Sprintf("expected event %s was not found within %s", expected, opts.Timeout)
		details["pattern"] = expected
	}
	if lastSeen != "" {
		details["last_event"] = lastSeen
	}
	return false, core.ErrEventNotFound.WithMessage(msg).WithDetails(details)
}

// tryMatch applies one event against the pattern, consuming and attaching
// diagnostics on success.
func (v *Verifier) tryMatch(ev events.Event, expected string, hasPattern, consume bool, prefix string) bool {
	if consume && v.store.IsMatched(ev.EventNum) {
		return false
	}

	evJSON := ev.DataJSON()

	if !hasPattern {
		if consume {
			v.store.MarkMatched(ev.EventNum)
		}
		logger.Info("matched event #%d (%s)", ev.EventNum, ev.Name)
		report.AttachCheckArtifacts(v.sink, prefix, "", evJSON)
		return true
	}

	if evJSON != "" && match.ContainsSubset(evJSON, expected) {
		if consume {
			v.store.MarkMatched(ev.EventNum)
		}
		logger.Info("matched event #%d (%s) with pattern", ev.EventNum, ev.Name)
		report.AttachCheckArtifacts(v.sink, prefix, expected, evJSON)
		return true
	}
	return false
}

// patternJSON normalizes the pattern argument into a JSON string.
// Returns hasPattern=false for a nil pattern (match any event).
func patternJSON(pattern interface{}) (expected string, hasPattern bool, err error) {
	switch t := pattern.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case []byte:
		return string(t), true, nil
	default:
		b, merr := json.Marshal(t)
		if merr != nil {
			return "", false, core.ErrMalformedPattern.WithCause(merr)
		}
		return string(b), true, nil
	}
}
