package utils

import "math"

// Round2 rounds a non-negative amount half-up to 2 decimal places. Session
// totals, payment aggregates and listing footers all round through here so
// the ledger stays reconcilable to the cent.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
