package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts raw form text into the value that gets stored.
//
// The longest leading decimal literal is used ("12.5kg" -> 12.5, " 3e2" -> 300),
// the way a browser number field parses. Text with no numeric prefix, and
// anything that would overflow to an infinity, becomes 0. Negative zero is
// stored as 0.
//
// ok is true only when the whole input (ignoring surrounding blanks) was a
// finite number, so callers can tell a clean entry from a coerced one. The
// value is usable either way.
func ParseAmount(raw string) (v float64, ok bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := decimalPrefix(s)
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v == 0 {
		v = 0
	}
	return v, strings.TrimSpace(s[end:]) == ""
}

// FormatAmount renders a stored value as the text a form field should show
// after an edit, using the shortest representation that round-trips.
func FormatAmount(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// decimalPrefix returns the length of the longest prefix of s that is a
// decimal literal: [sign] digits [. digits] [e [sign] digits], with at least
// one mantissa digit. Zero means no numeric prefix.
func decimalPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	mantissa := i - start
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		mantissa += j - i - 1
		if mantissa > 0 {
			i = j
		}
	}
	if mantissa == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		ds := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > ds {
			i = j
		}
	}
	return i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
