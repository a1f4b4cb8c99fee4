package envelope

import "errors"

// Helpers for JSON parsing

var errNotObject = errors.New("not a JSON object")

// isObject returns true if the message is a JSON object (starts with '{',
// spaces skipped).
func isObject(raw []byte) bool {
	for _, b := range raw {
		if isSpace(b) {
			continue
		}
		return b == '{'
	}
	return false
}

// isSpace returns true if the byte is considered a space in JSON syntax.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
