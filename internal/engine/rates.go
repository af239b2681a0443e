package engine

// ResolveBaseRate resolves the effective base rate for a producer leg.
// A producer override wins on price but the multi-producer discount policy is
// always borrowed from the zone-default rate for the same combination; a
// producer override without a zone rate carries no discount policy. Missing
// both rows is a configuration gap and aborts the quote: substituting zero
// would silently ship for free.
func (s *Snapshot) ResolveBaseRate(producerID, zoneID, tierID, methodID int64) (BaseRate, error) {
	zoneRate, hasZoneRate := s.rates[RateKey{ZoneID: zoneID, TierID: tierID, MethodID: methodID}]

	if price, ok := s.producerRates[ProducerRateKey{ProducerID: producerID, ZoneID: zoneID, TierID: tierID, MethodID: methodID}]; ok {
		rate := BaseRate{Price: price}
		if hasZoneRate {
			rate.DiscountBps = zoneRate.DiscountBps
			rate.MinProducers = zoneRate.MinProducers
		}
		return rate, nil
	}
	if hasZoneRate {
		return BaseRate{
			Price:        zoneRate.Price,
			DiscountBps:  zoneRate.DiscountBps,
			MinProducers: zoneRate.MinProducers,
		}, nil
	}
	return BaseRate{}, &RateNotConfiguredError{ProducerID: producerID, ZoneID: zoneID, TierID: tierID, MethodID: methodID}
}

// OverweightSurcharge prices the weight exceeding the heaviest tier. Partial
// kilograms round up: a single gram of overflow charges a full kilogram.
// When overflowGrams is zero no rate lookup occurs, so shipments inside the
// tier table never fail on a missing extra-weight charge.
func (s *Snapshot) OverweightSurcharge(overflowGrams, producerID, zoneID, methodID int64) (Money, error) {
	if overflowGrams <= 0 {
		return 0, nil
	}
	rate, err := s.extraKgRate(producerID, zoneID, methodID)
	if err != nil {
		return 0, err
	}
	kilos := (overflowGrams + 999) / 1000
	return Money(kilos) * rate, nil
}

func (s *Snapshot) extraKgRate(producerID, zoneID, methodID int64) (Money, error) {
	if rate, ok := s.producerExtraWeight[producerID]; ok {
		return rate, nil
	}
	if rate, ok := s.extraWeight[RateKey{ZoneID: zoneID, MethodID: methodID}]; ok {
		return rate, nil
	}
	if rate, ok := s.extraWeight[RateKey{ZoneID: zoneID}]; ok {
		return rate, nil
	}
	return 0, &RateNotConfiguredError{ProducerID: producerID, ZoneID: zoneID, MethodID: methodID}
}
