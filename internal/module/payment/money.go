package payment

import "math"

// ToMinorUnits converts a major-unit amount (rupees) to minor units (paise).
// Gateway amounts are always integer paise; rounding guards against float
// artifacts in prices like 394.00 stored as 393.9999...
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// ToMajorUnits converts minor units (paise) back to major units (rupees).
func ToMajorUnits(minor int64) float64 {
	return float64(minor) / 100
}
