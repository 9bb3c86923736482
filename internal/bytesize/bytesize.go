// Package bytesize formats byte counts for display.
package bytesize

import (
	"fmt"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// Format renders n with two decimals and the largest binary unit that keeps
// the value at or above 1, e.g. 1536 -> "1.50 KB". Inputs past the TB range
// stay in TB.
func Format(n int64) string {
	if n <= 0 {
		return "0 B"
	}

	// Integer division avoids the float rounding of log(n)/log(1024) at exact powers.
	i := 0
	div := int64(1)
	for i < len(units)-1 && n/div >= 1024 {
		div *= 1024
		i++
	}

	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), units[i])
}
