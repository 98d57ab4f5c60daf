package pricing

import (
	"fmt"
	"math"
)

// Money values are rounded to six decimal places at every sub-total so that
// breakdown fields always sum exactly to the reported total. Display formatting
// uses four places.

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// FormatUSD renders a cost for display with four decimal places.
func FormatUSD(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}
