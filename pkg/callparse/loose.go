package callparse

import (
	"strings"
	"unicode"
)

// normalizeLooseJSON rewrites a JS-style object literal into strict JSON:
// unquoted keys are quoted, single-quoted strings become double-quoted,
// and trailing commas are dropped. The result is then parsed with
// encoding/json by the caller; this function only performs the rewrite.
//
// The scan is character-level with explicit string-mode state so that
// braces, colons, and commas inside string values are never touched.
func normalizeLooseJSON(s string) (string, error) {
	var out strings.Builder
	out.Grow(len(s) + 16)

	i := 0
	for i < len(s) {
		c := s[i]

		switch {
		case c == '"':
			lit, next, err := scanString(s, i, '"')
			if err != nil {
				return "", err
			}
			out.WriteString(lit)
			i = next

		case c == '\'':
			lit, next, err := scanString(s, i, '\'')
			if err != nil {
				return "", err
			}
			out.WriteString(requoteSingle(lit))
			i = next

		case c == ',':
			// Drop the comma if the next significant character closes a
			// container (trailing comma).
			j := i + 1
			for j < len(s) && unicode.IsSpace(rune(s[j])) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				i++
				continue
			}
			out.WriteByte(c)
			i++

		case c == '-' || (c >= '0' && c <= '9'):
			// Number token, consumed whole so an exponent's 'e' is not
			// mistaken for a bare word.
			j := i + 1
			for j < len(s) && (s[j] == '.' || s[j] == '+' || s[j] == '-' ||
				s[j] == 'e' || s[j] == 'E' || (s[j] >= '0' && s[j] <= '9')) {
				j++
			}
			out.WriteString(s[i:j])
			i = j

		case isIdentStart(c):
			// Bare word: either an unquoted key, or a JSON literal
			// (true/false/null), or a bare string value.
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			word := s[i:j]
			k := j
			for k < len(s) && unicode.IsSpace(rune(s[k])) {
				k++
			}
			if k < len(s) && s[k] == ':' {
				out.WriteByte('"')
				out.WriteString(word)
				out.WriteByte('"')
			} else if word == "true" || word == "false" || word == "null" {
				out.WriteString(word)
			} else {
				return "", parseErrorf("invalid object syntax: bare word %q is not a valid JSON value", word)
			}
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// scanString consumes a quoted string starting at s[start] (which must
// be the quote character) and returns the literal including quotes plus
// the index just past it.
func scanString(s string, start int, quote byte) (string, int, error) {
	i := start + 1
	escaped := false
	for i < len(s) {
		c := s[i]
		if escaped {
			escaped = false
		} else if c == '\\' {
			escaped = true
		} else if c == quote {
			return s[start : i+1], i + 1, nil
		}
		i++
	}
	return "", 0, parseErrorf("unterminated string: missing closing %c", quote)
}

// requoteSingle converts a single-quoted literal (including its quotes)
// into a double-quoted JSON string, unescaping \' and escaping any
// embedded double quotes.
func requoteSingle(lit string) string {
	inner := lit[1 : len(lit)-1]
	inner = strings.ReplaceAll(inner, `\'`, `'`)
	inner = strings.ReplaceAll(inner, `"`, `\"`)
	return `"` + inner + `"`
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
