package pricing

import "math"

// Tax rates by customer country. Countries missing from the table are
// taxed at the US rate.
var taxRates = map[string]float64{
	"US": 0.08,
	"CA": 0.13,
	"EU": 0.20,
	"UK": 0.20,
}

// Tax returns the tax owed on amount for the given country, rounded to a
// whole currency unit.
func Tax(amount int64, country string) int64 {
	rate, ok := taxRates[country]
	if !ok {
		rate = taxRates["US"]
	}
	return int64(math.Round(float64(amount) * rate))
}
