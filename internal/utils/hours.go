package utils

import (
	"fmt"
	"math"
)

// FormatHours renders fractional hours as HH:MM, truncating to whole minutes.
func FormatHours(hours float64) string {
	if hours <= 0 {
		return "00:00"
	}
	// 1e-9 absorbs float error such as 0.7*60 = 41.999...
	minutes := int(math.Floor(hours*60 + 1e-9))
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
