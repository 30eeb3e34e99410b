// Package core holds the division tree, the filter state and the lenient
// numeric type used by every metric column.
//
// Source files mix JSON numbers, numeric strings, free text and nulls in the
// same column. Number keeps enough of the original shape to apply two
// different policies: summation treats anything unparsable as zero, while
// averaging excludes it from both numerator and denominator.
package core

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Number is a nullable metric value decoded from a number, a string or null.
type Number struct {
	value   float64
	set     bool // false for absent or null
	parsed  bool // a numeric value could be read
	textual bool // the source carried the value as a string
	whole   bool // the whole string is a number, not just a prefix
	raw     string
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Num returns a Number holding a plain numeric value.
func Num(v float64) Number {
	return Number{value: v, set: true, parsed: true}
}

// Text returns a Number decoded from a string. Averages read its leading
// numeric prefix ("40%" reads as 40); sums only take strings that are
// numeric as a whole.
func Text(s string) Number {
	n := Number{set: true, textual: true, raw: s}
	trimmed := strings.TrimSpace(s)
	if m := leadingFloat.FindString(trimmed); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			n.value = v
			n.parsed = true
			n.whole = m == trimmed
		}
	}
	return n
}

// ParseCell converts a tabular cell into a Number. Cells that are entirely
// numeric become plain numbers; anything else is kept as text.
func ParseCell(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return Num(v)
	}
	return Text(s)
}

// Float returns the value used for summation. Strings that are not numeric
// as a whole, like "40%", sum as 0.
func (n Number) Float() float64 {
	if !n.parsed || (n.textual && !n.whole) {
		return 0
	}
	return n.value
}

// Countable reports the value used for averaging and whether the record
// participates at all. Only values greater than zero count, whether they
// arrived as numbers or as text.
func (n Number) Countable() (float64, bool) {
	return n.Positive()
}

// Positive reports the parsed value when it is strictly positive.
func (n Number) Positive() (float64, bool) {
	if n.parsed && n.value > 0 {
		return n.value, true
	}
	return 0, false
}

// IsSet reports whether the field was present and not null.
func (n Number) IsSet() bool { return n.set }

// IsText reports whether the field was carried as a string.
func (n Number) IsText() bool { return n.textual }

// String renders the value as it appeared in the source.
func (n Number) String() string {
	switch {
	case !n.set:
		return ""
	case n.textual:
		return n.raw
	default:
		return strconv.FormatFloat(n.value, 'f', -1, 64)
	}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Text(s)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		// Booleans, objects and arrays are present but never numeric.
		*n = Number{set: true, raw: string(data)}
		return nil
	}
	*n = Num(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case !n.set:
		return []byte("null"), nil
	case n.textual:
		return json.Marshal(n.raw)
	case !n.parsed:
		return json.Marshal(n.raw)
	default:
		return []byte(strconv.FormatFloat(n.value, 'f', -1, 64)), nil
	}
}
