package engine

// FreeShippingThreshold returns the subtotal floor above which the
// producer's shipping leg is waived, if any rule applies. Rules are ranked by
// specificity: zone+method beats zone-only beats method-only beats the
// catch-all rule. Only the most specific applicable rule is consulted.
func (s *Snapshot) FreeShippingThreshold(producerID, zoneID, methodID int64) (Money, bool) {
	var (
		best      FreeShippingRule
		bestScore = -1
	)
	for _, rule := range s.freeShipping[producerID] {
		if rule.ZoneID != 0 && rule.ZoneID != zoneID {
			continue
		}
		if rule.MethodID != 0 && rule.MethodID != methodID {
			continue
		}
		score := 0
		if rule.ZoneID != 0 {
			score += 2
		}
		if rule.MethodID != 0 {
			score++
		}
		if score > bestScore {
			best = rule
			bestScore = score
		}
	}
	if bestScore < 0 {
		return 0, false
	}
	return best.Threshold, true
}
