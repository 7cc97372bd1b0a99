package callparse

import (
	"encoding/json"
	"strconv"
	"strings"
)

// spanParens takes text starting at an open paren and returns the
// content between it and its matching close paren, plus whatever
// follows. String contents (single or double quoted, with backslash
// escapes) never affect the depth count.
func spanParens(s string) (body, rest string, err error) {
	if len(s) == 0 || s[0] != '(' {
		return "", "", parseErrorf("expected '('")
	}
	depth := 0
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	if quote != 0 {
		return "", "", parseErrorf("unterminated string: missing closing %c", quote)
	}
	return "", "", parseErrorf("unbalanced parentheses: missing ')'")
}

// checkBalance verifies that every bracket in s has a matching closer,
// tracking a stack of expected closers and suppressing counting inside
// strings. The error names the character that failed to match.
func checkBalance(s string) error {
	var stack []byte
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			stack = append(stack, matchingCloser(c))
		case ')', ']', '}':
			if len(stack) == 0 {
				return parseErrorf("unbalanced delimiters: unexpected %q", string(c))
			}
			want := stack[len(stack)-1]
			if c != want {
				return parseErrorf("unbalanced delimiters: expected %q but found %q", string(want), string(c))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if quote != 0 {
		return parseErrorf("unterminated string: missing closing %c", quote)
	}
	if len(stack) > 0 {
		return parseErrorf("unbalanced delimiters: missing %q", string(stack[len(stack)-1]))
	}
	return nil
}

func matchingCloser(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// splitPositional splits a positional argument list on top-level commas
// and converts each element to a Go value. Elements are quoted strings,
// numbers, booleans, or null; anything else is kept as a bare string so
// search(roadmap) still works.
func splitPositional(body string) ([]any, error) {
	var parts []string
	depth := 0
	var quote byte
	escaped := false
	start := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, body[start:])

	values := make([]any, 0, len(parts))
	for _, raw := range parts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, parseErrorf("empty positional argument (stray comma?)")
		}
		values = append(values, positionalValue(raw))
	}
	return values, nil
}

// positionalValue converts one positional token to its Go value.
func positionalValue(raw string) any {
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return expandEscapes(raw[1 : len(raw)-1])
		}
	}
	if raw[0] == '{' || raw[0] == '[' {
		// Positional object/array literal, loose syntax allowed. The
		// JSON decoder already processed the escape sequences.
		if normalized, err := normalizeLooseJSON(raw); err == nil {
			var v any
			if json.Unmarshal([]byte(normalized), &v) == nil {
				return v
			}
		}
		return raw
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// escPlaceholder stands in for a literal backslash while the other
// escape sequences are expanded, so "\\n" stays a backslash-n instead of
// being re-expanded into a newline by a later replacement.
const escPlaceholder = "\x00gauntlet-backslash\x00"

// expandEscapes processes backslash escape sequences in string content
// extracted from quoted positional tokens. Strings that arrive through
// the JSON decoder are already unescaped and must not pass through here
// a second time.
func expandEscapes(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	s = strings.ReplaceAll(s, `\\`, escPlaceholder)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, escPlaceholder, `\`)
}
