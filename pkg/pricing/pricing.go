// Package pricing holds the single global margin rule. Line items and catalog
// records store raw base prices; every display or total goes through Apply so
// a margin change never requires rewriting stored documents.
package pricing

// Apply returns the final price for a base price and a margin percentage
// (e.g. 10 for 10%).
func Apply(basePrice, margin float64) float64 {
	return basePrice * (1 + margin/100)
}
