package utils

import (
	"math"

	"github.com/dustin/go-humanize"
)

// FormatCurrency formats a dollar amount without cents, e.g. 36000 -> "$36,000"
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0"
	}
	rounded := int64(math.Round(math.Abs(v)))
	if v < 0 && rounded != 0 {
		return "-$" + humanize.Comma(rounded)
	}
	return "$" + humanize.Comma(rounded)
}
