package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const rupee = "₹"

var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatCurrency renders amount in Indian rupees with en-IN digit grouping
// and no decimal places. Amounts too large for int64 keep their magnitude.
func FormatCurrency(amount float64) string {
	rounded := math.Round(amount)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	if rounded < math.MaxInt64 {
		return sign + rupee + inPrinter.Sprintf("%d", int64(rounded))
	}
	return sign + rupee + inPrinter.Sprintf("%.0f", rounded)
}
