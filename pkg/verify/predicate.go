package verify

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	json "github.com/goccy/go-json"

	"github.com/devicelab-dev/mobitest-runner/pkg/events"
)

// CompilePredicate compiles a JavaScript boolean expression into an event
// predicate usable as Filter.Where.
//
// The expression sees two bindings: `event`, the event object
// (event_time, event_num, name, data), and `body`, the event's body parsed
// as JSON (undefined when absent or unparseable). Example:
//
//	event.name == "BATCH" && body.event.data.sku == "42"
//
// A runtime error during evaluation makes the predicate return false for
// that event. The returned predicate is safe for concurrent use.
func CompilePredicate(expr string) (func(events.Event) bool, error) {
	rt := goja.New()
	compiled, err := rt.RunString("(function(event, body) { return Boolean(" + expr + "); })")
	if err != nil {
		return nil, fmt.Errorf("compile predicate: %w", err)
	}
	fn, ok := goja.AssertFunction(compiled)
	if !ok {
		return nil, fmt.Errorf("predicate did not compile to a function")
	}

	// goja runtimes are not goroutine-safe.
	var mu sync.Mutex
	return func(ev events.Event) bool {
		mu.Lock()
		defer mu.Unlock()

		res, err := fn(goja.Undefined(), rt.ToValue(eventAsMap(ev)), bodyValue(rt, ev))
		if err != nil {
			return false
		}
		return res.ToBoolean()
	}, nil
}

// eventAsMap converts an event to a plain map via a JSON round trip, so the
// JS side sees the wire field names.
func eventAsMap(ev events.Event) map[string]interface{} {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func bodyValue(rt *goja.Runtime, ev events.Event) goja.Value {
	if ev.Data == nil {
		return goja.Undefined()
	}
	var body interface{}
	if err := json.Unmarshal([]byte(ev.Data.Body), &body); err != nil {
		return goja.Undefined()
	}
	return rt.ToValue(body)
}
