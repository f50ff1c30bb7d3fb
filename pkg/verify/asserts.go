package verify

import (
	"github.com/devicelab-dev/mobitest-runner/pkg/match"
	"github.com/devicelab-dev/mobitest-runner/pkg/report"
)

// Hard assertion wrappers. Each delegates to SoftAssert and returns its
// combined error immediately.

// AssertHasKey fails when the dotted key path is absent from the object.
func (v *Verifier) AssertHasKey(obj map[string]interface{}, keyPath string) error {
	sa := NewSoftAssert()
	sa.AssertHasKey(obj, keyPath)
	return sa.Err()
}

// AssertContains fails when the serialized event data does not contain the
// expected JSON subset, attaching the expected/actual pair to the sink on
// failure.
func (v *Verifier) AssertContains(eventDataJSON, expectedSubsetJSON string) error {
	if !match.ContainsSubset(eventDataJSON, expectedSubsetJSON) {
		report.AttachCheckArtifacts(v.sink, "contains", expectedSubsetJSON, eventDataJSON)
		sa := NewSoftAssert()
		sa.AssertContains(eventDataJSON, expectedSubsetJSON)
		return sa.Err()
	}
	return nil
}

// AssertEquals fails when the values differ (optionally requiring the same
// dynamic type).
func (v *Verifier) AssertEquals(actual, expected interface{}, typeCheck bool) error {
	sa := NewSoftAssert()
	sa.AssertEquals(actual, expected, typeCheck)
	return sa.Err()
}
