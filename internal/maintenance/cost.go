package maintenance

// GetEstimatedCost resolves an item's cost from the most specific source
// that has a usable value: a vehicle/part override, then the program item
// estimate, then the alert estimate. Nil and zero both fall through.
func GetEstimatedCost(override, programItem, alert *float64) float64 {
	for _, c := range []*float64{override, programItem, alert} {
		if c != nil && *c > 0 {
			return *c
		}
	}
	return 0
}
