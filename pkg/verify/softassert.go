package verify

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/devicelab-dev/mobitest-runner/pkg/core"
	"github.com/devicelab-dev/mobitest-runner/pkg/match"
)

// SoftAssert accumulates assertion failures instead of failing on the first
// one. Call Err at the end of the scope to surface them as one combined
// error.
type SoftAssert struct {
	failures []string
}

// NewSoftAssert creates an empty accumulator.
func NewSoftAssert() *SoftAssert {
	return &SoftAssert{}
}

// Check records a failure message when the condition is false.
func (sa *SoftAssert) Check(condition bool, message string) {
	if !condition {
		sa.failures = append(sa.failures, message)
	}
}

// AssertHasKey records a failure when the dotted key path is absent from the
// nested object.
func (sa *SoftAssert) AssertHasKey(obj map[string]interface{}, keyPath string) {
	var cur interface{} = obj
	for _, part := range splitKeyPath(keyPath) {
		m, ok := cur.(map[string]interface{})
		if !ok {
			sa.failures = append(sa.failures, fmt.Sprintf("missing key path: %s", keyPath))
			return
		}
		next, present := m[part]
		if !present {
			sa.failures = append(sa.failures, fmt.Sprintf("missing key path: %s", keyPath))
			return
		}
		cur = next
	}
}

// AssertContains records a failure when the serialized event data does not
// contain the expected JSON subset.
func (sa *SoftAssert) AssertContains(eventJSON, expectedJSON string) {
	if !match.ContainsSubset(eventJSON, expectedJSON) {
		sa.failures = append(sa.failures, "event JSON does not contain the expected subset")
	}
}

// AssertEquals records a failure when the values differ. With typeCheck set,
// differing dynamic types fail before the value comparison.
func (sa *SoftAssert) AssertEquals(actual, expected interface{}, typeCheck bool) {
	if typeCheck && reflect.TypeOf(actual) != reflect.TypeOf(expected) {
		sa.failures = append(sa.failures, fmt.Sprintf(
			"type mismatch: actual=%T, expected=%T", actual, expected))
		return
	}
	if !reflect.DeepEqual(actual, expected) {
		sa.failures = append(sa.failures, fmt.Sprintf(
			"values differ: actual=%#v, expected=%#v", actual, expected))
	}
}

// Failures returns the recorded failure messages.
func (sa *SoftAssert) Failures() []string {
	return append([]string(nil), sa.failures...)
}

// Err returns nil when nothing failed, otherwise one combined error listing
// every recorded failure. The accumulator is left untouched so it can be
// inspected afterwards.
func (sa *SoftAssert) Err() error {
	if len(sa.failures) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "soft assertion failures (total %d):", len(sa.failures))
	for _, f := range sa.failures {
		b.WriteString("\n- ")
		b.WriteString(f)
	}
	return core.ErrAssertionFailed.WithMessage(b.String())
}

func splitKeyPath(keyPath string) []string {
	if keyPath == "" {
		return nil
	}
	return strings.Split(keyPath, ".")
}
