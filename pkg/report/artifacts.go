package report

import (
	"github.com/pmezard/go-difflib/difflib"

	json "github.com/goccy/go-json"
)

// AttachCheckArtifacts offers a structured expected/actual pair (and their
// unified diff) to the sink, under names derived from prefix, e.g.
// "event_check(poll) expected.json". Either side may be empty. The actual
// side is EventData JSON whose "body" field is expanded from a JSON-encoded
// string into a nested object for readability.
func AttachCheckArtifacts(sink Sink, prefix, expected, actual string) {
	if sink == nil {
		return
	}

	var expStr, actStr string
	if expected != "" {
		expStr = prettyJSON(expected)
		sink.Attach(prefix+" expected.json", TypeJSON, []byte(expStr))
	}
	if actual != "" {
		actStr = prettyEventData(actual)
		sink.Attach(prefix+" actual.json", TypeJSON, []byte(actStr))
	}

	if expected == "" || actual == "" {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expStr),
		B:        difflib.SplitLines(actStr),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err == nil && diff != "" {
		sink.Attach(prefix+" diff.txt", TypeText, []byte(diff))
	}
}

// prettyJSON reindents a JSON document, or returns it untouched when it does
// not parse.
func prettyJSON(s string) string {
	var obj interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return s
	}
	return string(out)
}

// prettyEventData reindents serialized EventData, expanding the nested
// "body" JSON string into an object when possible.
func prettyEventData(s string) string {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}

	if body, ok := obj["body"].(string); ok {
		var parsed interface{}
		if err := json.Unmarshal([]byte(body), &parsed); err == nil && parsed != nil {
			obj["body"] = parsed
		}
	}

	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return s
	}
	return string(out)
}
