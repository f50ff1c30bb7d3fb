// Package match implements recursive structural matching over untyped JSON.
//
// Values are the trees produced by JSON unmarshalling into interface{}:
// map[string]interface{}, []interface{}, string, float64, bool and nil.
// Matching never fails with an error; unparseable input simply does not match.
package match

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Element reports whether actual contains the structure described by pattern.
//
// Supported pattern rules, in precedence order:
//
//   - "*"       any value matches
//   - ""        only the empty string matches
//   - "~value"  substring match against the actual string
//   - other string: stringified exact match
//   - non-string primitive: direct equality (numeric-aware)
//   - object: every key/value of the pattern must match in actual
//   - array: every pattern element must be found somewhere in actual
//   - actual strings holding serialized JSON are parsed and matched recursively
func Element(actual, pattern interface{}) bool {
	if isPrimitive(actual) {
		if isPrimitive(pattern) {
			return matchPrimitive(actual, pattern)
		}
		// Actual is a primitive string that may hold serialized JSON.
		if s, ok := actual.(string); ok {
			parsed, ok := parseJSON(s)
			if !ok {
				return false
			}
			return Element(parsed, pattern)
		}
		return false
	}

	switch a := actual.(type) {
	case map[string]interface{}:
		p, ok := pattern.(map[string]interface{})
		if !ok {
			return false
		}
		for k, pv := range p {
			av, present := a[k]
			if !present || !Element(av, pv) {
				return false
			}
		}
		return true

	case []interface{}:
		p, ok := pattern.([]interface{})
		if !ok {
			return false
		}
		for _, pv := range p {
			found := false
			for _, av := range a {
				if Element(av, pv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	return false
}

// matchPrimitive applies the leaf rules for two primitive values.
func matchPrimitive(actual, pattern interface{}) bool {
	if ps, ok := pattern.(string); ok {
		switch {
		case ps == "*":
			return true
		case ps == "":
			s, ok := actual.(string)
			return ok && s == ""
		case strings.HasPrefix(ps, "~"):
			s, ok := actual.(string)
			return ok && strings.Contains(s, ps[1:])
		}
		return stringify(actual) == ps
	}

	// Non-string expected: direct equality, comparing numbers by value so
	// hand-built patterns with int literals match unmarshalled float64s.
	if an, aok := toNumber(actual); aok {
		pn, pok := toNumber(pattern)
		return pok && an == pn
	}
	return actual == pattern
}

// FindKeyValue searches a JSON tree depth-first for a mapping node holding
// key with a value accepted by Element against value.
func FindKeyValue(tree interface{}, key string, value interface{}) bool {
	switch t := tree.(type) {
	case map[string]interface{}:
		for k, v := range t {
			if k == key && Element(v, value) {
				return true
			}
			if FindKeyValue(v, key, value) {
				return true
			}
		}
	case []interface{}:
		for _, item := range t {
			if FindKeyValue(item, key, value) {
				return true
			}
		}
	}
	return false
}

// ContainsSubset checks that serialized event data (eventJSON, whose "body"
// field is itself a JSON string) contains every key/value pair of searchJSON,
// wherever the pair lives inside the body tree.
//
// A dedicated data node (body.event.data, then body.data) is tried first;
// pairs not found there are searched across the whole body. Returns false
// when either payload fails to parse.
func ContainsSubset(eventJSON, searchJSON string) bool {
	var evObj map[string]interface{}
	if err := json.Unmarshal([]byte(eventJSON), &evObj); err != nil {
		return false
	}
	bodyStr, ok := evObj["body"].(string)
	if !ok {
		return false
	}
	var bodyObj interface{}
	if err := json.Unmarshal([]byte(bodyStr), &bodyObj); err != nil {
		return false
	}
	var searchObj interface{}
	if err := json.Unmarshal([]byte(searchJSON), &searchObj); err != nil {
		return false
	}

	var dataEl interface{}
	hasData := false
	if bodyMap, ok := bodyObj.(map[string]interface{}); ok {
		if ev, ok := bodyMap["event"].(map[string]interface{}); ok {
			if d, present := ev["data"]; present {
				dataEl, hasData = d, true
			}
		}
		if !hasData {
			if d, present := bodyMap["data"]; present {
				dataEl, hasData = d, true
			}
		}
	}

	searchMap, _ := searchObj.(map[string]interface{})
	for key, val := range searchMap {
		found := hasData && FindKeyValue(dataEl, key, val)
		if !found {
			found = FindKeyValue(bodyObj, key, val)
		}
		if !found {
			return false
		}
	}
	return true
}

// isPrimitive reports whether v is a JSON leaf (string, number, bool, null).
func isPrimitive(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return false
	}
	return true
}

// stringify renders a primitive the way it appears in a JSON document.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// toNumber converts any numeric representation to float64.
func toNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// parseJSON parses s, accepting only documents (objects, arrays, quoted
// scalars); bare words are not JSON.
func parseJSON(s string) (interface{}, bool) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}
