package transport

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as M:SS. NaN and infinite values (unknown
// duration) render as fallback.
func FormatTime(seconds float64, fallback string) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fallback
	}
	if seconds < 0 {
		seconds = 0
	}

	minutes := int(math.Floor(seconds / 60))
	rest := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, rest)
}

// RemainingTime renders the time left as -M:SS, or fallback while the
// duration is unknown.
func RemainingTime(elapsed, duration float64, fallback string) string {
	if math.IsNaN(duration) || math.IsInf(duration, 0) {
		return fallback
	}

	left := duration - elapsed
	if left < 0 || math.IsNaN(left) {
		left = 0
	}
	return "-" + FormatTime(left, fallback)
}
