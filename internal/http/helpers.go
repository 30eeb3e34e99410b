package http

import (
	"math"
	"strconv"
	"strings"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}

// formatHectares renders an area with thousands separators and no decimals,
// e.g. 1234567.4 -> "1,234,567".
func formatHectares(v float64) string {
	return groupThousands(strconv.FormatInt(int64(math.Round(v)), 10))
}

// formatRate renders a percentage or yield with two decimals.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	if len(digits) <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// barPercent scales v against max into a 0..100 width for CSS bars.
func barPercent(v, max float64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	p := int(math.Round(v / max * 100))
	if p < 1 {
		return 1
	}
	return min(p, 100)
}
