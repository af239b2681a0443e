package engine

import (
	"fmt"
	"sort"
	"time"
)

// Item is one order line handed to the engine: the producer it belongs to,
// quantity, unit price and per-unit weight. Dimensions and suitability flags
// are optional and only tighten method availability.
type Item struct {
	ProducerID  int64
	Qty         int
	UnitPrice   Money
	WeightGrams int64
	LengthCm    int64
	WidthCm     int64
	HeightCm    int64
	Perishable  bool
	Fragile     bool
}

// QuoteInput describes one shipment to be priced with a single chosen
// delivery method for the whole order.
type QuoteInput struct {
	PostalCode  string
	MethodCode  string
	Items       []Item
	ChargeCodes []string
}

// ProducerLeg is the priced shipping leg of a single producer.
type ProducerLeg struct {
	ProducerID    int64
	TierID        int64
	TierCode      string
	WeightGrams   int64
	OverflowGrams int64
	ItemsSubtotal Money
	BaseRate      Money
	Overweight    Money
	Waived        bool
	Amount        Money
}

// ChargeLine is one applied additional charge.
type ChargeLine struct {
	Code   string
	Name   string
	Amount Money
}

// DiscountRule records which rate's policy triggered the multi-producer
// discount, for display and audit.
type DiscountRule struct {
	PercentBps   int32
	MinProducers int32
	ProducerID   int64
}

// Quote is the full cost breakdown for one shipment. Total always equals
// SubtotalBeforeDiscount - Discount + the sum of AdditionalCharges.
type Quote struct {
	SnapshotVersion        int64
	Currency               string
	ZoneID                 int64
	ZoneName               string
	MethodID               int64
	MethodCode             string
	Legs                   []ProducerLeg
	SubtotalBeforeDiscount Money
	GrossSubtotal          Money
	Discount               Money
	DiscountRule           *DiscountRule
	AdditionalCharges      []ChargeLine
	Total                  Money
}

// shipmentGroup aggregates one producer's items for pricing.
type shipmentGroup struct {
	producerID  int64
	weightGrams int64
	subtotal    Money
	maxLengthCm int64
	maxWidthCm  int64
	maxHeightCm int64
	perishable  bool
	fragile     bool
}

// ComputeQuote prices the shipment against the snapshot. Steps, in order:
// resolve the zone once; per producer resolve tier, base rate, overweight
// surcharge and free-shipping waiver; sum the non-waived legs; apply the
// multi-producer discount to that sum; apply additional charges against the
// pre-waiver gross. Any resolution failure aborts the whole quote — a wrong
// shipping price is worse than none.
func (s *Snapshot) ComputeQuote(in QuoteInput) (Quote, error) {
	if err := s.Stale(time.Now()); err != nil {
		return Quote{}, err
	}
	zone, err := s.ResolveZone(in.PostalCode)
	if err != nil {
		return Quote{}, err
	}
	method, err := s.activeMethod(in.MethodCode)
	if err != nil {
		return Quote{}, err
	}
	groups, err := groupByProducer(in.Items)
	if err != nil {
		return Quote{}, err
	}

	quote := Quote{
		SnapshotVersion: s.version,
		Currency:        s.currency,
		ZoneID:          zone.ID,
		ZoneName:        zone.Name,
		MethodID:        method.ID,
		MethodCode:      method.Code,
		Legs:            make([]ProducerLeg, 0, len(groups)),
	}

	// The dominant leg (largest non-waived amount, ties to the lowest
	// producer id) governs the discount policy for the whole shipment.
	dominantIdx := -1
	var dominantPolicy BaseRate
	for i := range groups {
		group := &groups[i]
		if err := s.checkMethodForGroup(method, group); err != nil {
			return Quote{}, err
		}
		leg, policy, err := s.priceLeg(group, zone.ID, method.ID)
		if err != nil {
			return Quote{}, err
		}
		quote.GrossSubtotal += leg.BaseRate + leg.Overweight
		quote.SubtotalBeforeDiscount += leg.Amount
		quote.Legs = append(quote.Legs, leg)
		if leg.Waived {
			continue
		}
		if dominantIdx < 0 || leg.Amount > quote.Legs[dominantIdx].Amount {
			dominantIdx = len(quote.Legs) - 1
			dominantPolicy = policy
		}
	}

	if dominantIdx >= 0 && dominantPolicy.MinProducers > 0 && dominantPolicy.DiscountBps > 0 {
		if int32(len(groups)) >= dominantPolicy.MinProducers {
			quote.Discount = quote.SubtotalBeforeDiscount * Money(dominantPolicy.DiscountBps) / 10000
			quote.DiscountRule = &DiscountRule{
				PercentBps:   dominantPolicy.DiscountBps,
				MinProducers: dominantPolicy.MinProducers,
				ProducerID:   quote.Legs[dominantIdx].ProducerID,
			}
		}
	}
	if quote.Discount > quote.SubtotalBeforeDiscount {
		quote.Discount = quote.SubtotalBeforeDiscount
	}

	charges, err := s.applyCharges(in.ChargeCodes, method, quote.GrossSubtotal)
	if err != nil {
		return Quote{}, err
	}
	quote.AdditionalCharges = charges

	quote.Total = quote.SubtotalBeforeDiscount - quote.Discount
	for _, line := range charges {
		quote.Total += line.Amount
	}
	return quote, nil
}

// priceLeg resolves tier, base rate, overweight surcharge and the
// free-shipping waiver for one producer group. The returned policy carries
// the discount parameters of the governing rate for the aggregator.
func (s *Snapshot) priceLeg(group *shipmentGroup, zoneID, methodID int64) (ProducerLeg, BaseRate, error) {
	chargeable := s.ChargeableWeightGrams(group.weightGrams, group.maxLengthCm, group.maxWidthCm, group.maxHeightCm)
	tier, overflow := s.ResolveTier(chargeable)

	rate, err := s.ResolveBaseRate(group.producerID, zoneID, tier.ID, methodID)
	if err != nil {
		return ProducerLeg{}, BaseRate{}, err
	}
	surcharge, err := s.OverweightSurcharge(overflow, group.producerID, zoneID, methodID)
	if err != nil {
		return ProducerLeg{}, BaseRate{}, err
	}

	leg := ProducerLeg{
		ProducerID:    group.producerID,
		TierID:        tier.ID,
		TierCode:      tier.Code,
		WeightGrams:   chargeable,
		OverflowGrams: overflow,
		ItemsSubtotal: group.subtotal,
		BaseRate:      rate.Price,
		Overweight:    surcharge,
	}
	if threshold, ok := s.FreeShippingThreshold(group.producerID, zoneID, methodID); ok && group.subtotal >= threshold {
		leg.Waived = true
	} else {
		leg.Amount = rate.Price + surcharge
	}
	return leg, rate, nil
}

func (s *Snapshot) activeMethod(code string) (DeliveryMethod, error) {
	id, ok := s.methodsByCode[code]
	if !ok {
		return DeliveryMethod{}, &MethodNotAvailableError{MethodCode: code, Reason: "unknown delivery method"}
	}
	method := s.methods[id]
	if !method.Active {
		return DeliveryMethod{}, &MethodNotAvailableError{MethodCode: code, Reason: "delivery method is disabled"}
	}
	return method, nil
}

// checkMethodForGroup enforces producer enablement plus the method's
// physical limits and suitability flags for one producer group.
func (s *Snapshot) checkMethodForGroup(method DeliveryMethod, group *shipmentGroup) error {
	if !s.MethodEnabled(group.producerID, method.ID) {
		return &MethodNotAvailableError{ProducerID: group.producerID, MethodCode: method.Code, Reason: "method not enabled by producer"}
	}
	chargeable := s.ChargeableWeightGrams(group.weightGrams, group.maxLengthCm, group.maxWidthCm, group.maxHeightCm)
	if method.MaxWeightGrams > 0 && chargeable > method.MaxWeightGrams {
		return &MethodNotAvailableError{ProducerID: group.producerID, MethodCode: method.Code, Reason: "shipment exceeds method weight limit"}
	}
	if (method.MaxLengthCm > 0 && group.maxLengthCm > method.MaxLengthCm) ||
		(method.MaxWidthCm > 0 && group.maxWidthCm > method.MaxWidthCm) ||
		(method.MaxHeightCm > 0 && group.maxHeightCm > method.MaxHeightCm) {
		return &MethodNotAvailableError{ProducerID: group.producerID, MethodCode: method.Code, Reason: "shipment exceeds method size limit"}
	}
	if group.perishable && !method.SuitableForPerishable {
		return &MethodNotAvailableError{ProducerID: group.producerID, MethodCode: method.Code, Reason: "method unsuitable for perishable items"}
	}
	if group.fragile && !method.SuitableForFragile {
		return &MethodNotAvailableError{ProducerID: group.producerID, MethodCode: method.Code, Reason: "method unsuitable for fragile items"}
	}
	return nil
}

// applyCharges resolves requested additional-charge codes against the active
// catalogue. Percentage charges are computed on the pre-discount, pre-waiver
// shipping gross: cash on delivery is a property of the order's payment
// handling, not of any one producer's goods, so waivers never reduce it.
func (s *Snapshot) applyCharges(codes []string, method DeliveryMethod, gross Money) ([]ChargeLine, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	lines := make([]ChargeLine, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		charge, ok := s.charges[code]
		if !ok {
			return nil, &ChargeNotConfiguredError{Code: code}
		}
		if charge.RequiresCODSupport && !method.SupportsCOD {
			return nil, &MethodNotAvailableError{MethodCode: method.Code, Reason: "cash on delivery not supported by method"}
		}
		amount := charge.Price
		if charge.IsPercentage {
			amount = gross * Money(charge.PercentBps) / 10000
		}
		lines = append(lines, ChargeLine{Code: charge.Code, Name: charge.Name, Amount: amount})
	}
	return lines, nil
}

// groupByProducer aggregates items per producer in ascending producer order
// so identical inputs always produce identical quotes.
func groupByProducer(items []Item) ([]shipmentGroup, error) {
	byProducer := make(map[int64]*shipmentGroup)
	for _, it := range items {
		if it.ProducerID <= 0 {
			return nil, fmt.Errorf("item has invalid producer id %d", it.ProducerID)
		}
		if it.Qty <= 0 {
			continue
		}
		group := byProducer[it.ProducerID]
		if group == nil {
			group = &shipmentGroup{producerID: it.ProducerID}
			byProducer[it.ProducerID] = group
		}
		group.weightGrams += it.WeightGrams * int64(it.Qty)
		group.subtotal += it.UnitPrice * Money(it.Qty)
		if it.LengthCm > group.maxLengthCm {
			group.maxLengthCm = it.LengthCm
		}
		if it.WidthCm > group.maxWidthCm {
			group.maxWidthCm = it.WidthCm
		}
		if it.HeightCm > group.maxHeightCm {
			group.maxHeightCm = it.HeightCm
		}
		if it.Perishable {
			group.perishable = true
		}
		if it.Fragile {
			group.fragile = true
		}
	}
	if len(byProducer) == 0 {
		return nil, fmt.Errorf("shipment contains no priceable items")
	}
	ids := make([]int64, 0, len(byProducer))
	for id := range byProducer {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	groups := make([]shipmentGroup, 0, len(ids))
	for _, id := range ids {
		groups = append(groups, *byProducer[id])
	}
	return groups, nil
}
