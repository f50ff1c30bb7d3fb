package verify

import (
	"fmt"

	"github.com/devicelab-dev/mobitest-runner/pkg/core"
)

// CheckAsync starts Check on its own goroutine and returns immediately.
//
// The background check always runs soft: every failure, including timeouts,
// becomes a false result delivered over the check's own channel. Call
// AwaitAll after the test to aggregate the outcomes. There is no mid-flight
// cancellation; each check runs to its own timeout or to an early match.
func (v *Verifier) CheckAsync(pattern interface{}, opts CheckOptions) {
	opts.Soft = true

	ch := make(chan bool, 1)
	go func() {
		ok, err := v.Check(pattern, opts)
		ch <- ok && err == nil
	}()

	v.mu.Lock()
	v.pending = append(v.pending, ch)
	v.mu.Unlock()
}

// AwaitAll blocks until every background check started so far has finished.
//
// If any check came back false it returns a single
// ErrBackgroundChecksFailed listing the failing indices, in start order. The
// pending set is cleared either way, so the next test starts fresh.
func (v *Verifier) AwaitAll() error {
	v.mu.Lock()
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()

	var failed []int
	for i, ch := range pending {
		if ok := <-ch; !ok {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return core.ErrBackgroundChecksFailed.
			WithMessage(fmt.Sprintf("background event checks failed: indices=%v", failed)).
			WithDetails(map[string]interface{}{"failed_indices": failed, "total": len(pending)})
	}
	return nil
}
