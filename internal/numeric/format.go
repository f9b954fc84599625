package numeric

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Suffix tiers, one per factor of 1000.
var suffixes = []string{"", "K", "M", "B", "T", "Qa", "Qi", "Sx", "Sp", "Oc", "No", "Dc"}

// ExponentialFrom is the base-10 magnitude where Format switches to
// exponential notation.
const ExponentialFrom = 36

var thousand = FromInt(1000)

// Format renders d for display: whole numbers below 1000, two decimals with a
// suffix up to Dc, and mantissa-exponent text from 1e36.
func Format(d Decimal) string {
	if d.Lt(thousand) {
		return strconv.FormatInt(d.Floor().Int64(), 10)
	}

	m, e := d.sci()
	if e >= ExponentialFrom {
		return formatExponential(m, e)
	}

	tier := e / 3
	var scaled float64
	if d.isPlain() {
		scaled = d.mantissa / pow10(tier*3)
	} else {
		scaled = m * pow10(e-tier*3)
	}

	rounded := round2(scaled)
	if rounded >= 1000 {
		tier++
		rounded = 1
		if tier >= int64(len(suffixes)) {
			return formatExponential(1, tier*3)
		}
	}
	return strconv.FormatFloat(rounded, 'f', 2, 64) + suffixes[tier]
}

func formatExponential(m float64, e int64) string {
	rounded := round2(m)
	if rounded >= 10 {
		rounded /= 10
		e++
	}
	return strconv.FormatFloat(rounded, 'f', 2, 64) + "e" + strconv.FormatInt(e, 10)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatInt renders a small exact counter with thousands separators.
func FormatInt(n int64) string {
	return humanize.Comma(n)
}
