package format

import (
	"fmt"
	"strings"
	"time"
)

// Seconds formats a duration as "1.23 seconds".
func Seconds(d time.Duration) string {
	return fmt.Sprintf("%.2f seconds", d.Seconds())
}

// Percent formats p (0-100) without decimals: "67%".
func Percent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// Bar draws a fixed-width progress bar for p (0-100).
func Bar(p float64, width int) string {
	if width <= 0 {
		return ""
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	filled := int(p/100*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
