package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQuoteSingleProducerBaseRate(t *testing.T) {
	s := fixtureSnapshot()
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode: "10431",
		MethodCode: "HOME",
		Items: []Item{
			{ProducerID: 2, Qty: 1, UnitPrice: 1200, WeightGrams: 1500},
		},
	})
	require.NoError(t, err)
	require.Len(t, quote.Legs, 1)
	require.Equal(t, Money(350), quote.Legs[0].BaseRate)
	require.False(t, quote.Legs[0].Waived)
	require.Equal(t, Money(350), quote.Total)
	require.Equal(t, "EUR", quote.Currency)
	require.Equal(t, int64(7), quote.SnapshotVersion)
}

func TestQuoteFreeShippingWaivesLeg(t *testing.T) {
	s := fixtureSnapshot()
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode: "10431",
		MethodCode: "HOME",
		Items: []Item{
			// €55 subtotal against the €50 Athens threshold of producer 1
			{ProducerID: 1, Qty: 5, UnitPrice: 1100, WeightGrams: 300},
		},
	})
	require.NoError(t, err)
	require.True(t, quote.Legs[0].Waived)
	require.Equal(t, Money(0), quote.Legs[0].Amount)
	require.Equal(t, Money(0), quote.SubtotalBeforeDiscount)
	require.Equal(t, Money(350), quote.GrossSubtotal)
	require.Equal(t, Money(0), quote.Total)
}

func TestQuoteMultiProducerDiscount(t *testing.T) {
	s := fixtureSnapshot()
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode: "84100",
		MethodCode: "HOME",
		Items: []Item{
			{ProducerID: 1, Qty: 1, UnitPrice: 2000, WeightGrams: 1000},
			{ProducerID: 2, Qty: 1, UnitPrice: 2000, WeightGrams: 1000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, Money(700), quote.SubtotalBeforeDiscount)
	require.Equal(t, Money(70), quote.Discount)
	require.Equal(t, Money(630), quote.Total)
	require.NotNil(t, quote.DiscountRule)
	// dominant leg is the €4.00 producer override of producer 1
	require.Equal(t, int64(1), quote.DiscountRule.ProducerID)
	require.Equal(t, int32(1000), quote.DiscountRule.PercentBps)
}

func TestQuoteDiscountNotAppliedBelowThreshold(t *testing.T) {
	s := fixtureSnapshot()
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode: "84100",
		MethodCode: "HOME",
		Items: []Item{
			{ProducerID: 1, Qty: 1, UnitPrice: 2000, WeightGrams: 1000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, Money(0), quote.Discount)
	require.Nil(t, quote.DiscountRule)
	require.Equal(t, Money(400), quote.Total)
}

func TestQuoteOverweightSurcharge(t *testing.T) {
	s := New(Config{
		Zones:    []Zone{{ID: 1, Name: "Athens", Active: true}},
		Prefixes: []ZonePrefix{{Prefix: "10", ZoneID: 1}},
		Tiers:    []WeightTier{{ID: 1, Code: "T2KG", MinGrams: 0, MaxGrams: 2000}},
		Methods:  []DeliveryMethod{{ID: 1, Code: "HOME", Active: true}},
		Rates: []ZoneRate{
			{ZoneID: 1, TierID: 1, MethodID: 1, Price: 350},
		},
		ExtraWeight: []ExtraWeightCharge{{ZoneID: 1, PricePerKg: 120, Active: true}},
		ProducerMethods: []ProducerMethod{
			{ProducerID: 1, MethodID: 1, Enabled: true},
		},
	})
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode: "10431",
		MethodCode: "HOME",
		Items:      []Item{{ProducerID: 1, Qty: 1, UnitPrice: 1000, WeightGrams: 2300}},
	})
	require.NoError(t, err)
	// 300 g past the heaviest tier rounds up to one full kilogram
	require.Equal(t, int64(300), quote.Legs[0].OverflowGrams)
	require.Equal(t, Money(120), quote.Legs[0].Overweight)
	require.Equal(t, Money(470), quote.Total)
}

func TestQuoteCODSurvivesFreeShipping(t *testing.T) {
	s := fixtureSnapshot()
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode:  "10431",
		MethodCode:  "HOME",
		ChargeCodes: []string{"cod"},
		Items: []Item{
			{ProducerID: 1, Qty: 5, UnitPrice: 1100, WeightGrams: 300},
		},
	})
	require.NoError(t, err)
	require.True(t, quote.Legs[0].Waived)
	require.Len(t, quote.AdditionalCharges, 1)
	require.Equal(t, Money(200), quote.AdditionalCharges[0].Amount)
	require.Equal(t, Money(200), quote.Total)
}

func TestQuotePercentageChargeUsesPreWaiverGross(t *testing.T) {
	s := fixtureSnapshot()
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode:  "10431",
		MethodCode:  "HOME",
		ChargeCodes: []string{"insurance"},
		Items: []Item{
			{ProducerID: 1, Qty: 5, UnitPrice: 1100, WeightGrams: 300},
		},
	})
	require.NoError(t, err)
	// 5% of the €3.50 gross, unaffected by the waiver
	require.Equal(t, Money(17), quote.AdditionalCharges[0].Amount)
	require.Equal(t, Money(17), quote.Total)
}

func TestQuoteZoneResolutionFailureAborts(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode: "99999",
		MethodCode: "HOME",
		Items:      []Item{{ProducerID: 1, Qty: 1, UnitPrice: 100, WeightGrams: 100}},
	})
	var zerr *ZoneResolutionError
	require.ErrorAs(t, err, &zerr)
}

func TestQuoteMethodNotEnabledByProducer(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode: "10431",
		MethodCode: "PICKUP",
		Items: []Item{
			{ProducerID: 1, Qty: 1, UnitPrice: 100, WeightGrams: 100},
			{ProducerID: 2, Qty: 1, UnitPrice: 100, WeightGrams: 100},
		},
	})
	var merr *MethodNotAvailableError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, int64(2), merr.ProducerID)
}

func TestQuoteMethodWeightLimit(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode: "10431",
		MethodCode: "PICKUP",
		Items:      []Item{{ProducerID: 1, Qty: 1, UnitPrice: 100, WeightGrams: 9000}},
	})
	var merr *MethodNotAvailableError
	require.ErrorAs(t, err, &merr)
}

func TestQuoteMethodUnsuitableForPerishable(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode: "10431",
		MethodCode: "PICKUP",
		Items:      []Item{{ProducerID: 1, Qty: 1, UnitPrice: 100, WeightGrams: 100, Perishable: true}},
	})
	var merr *MethodNotAvailableError
	require.ErrorAs(t, err, &merr)
}

func TestQuoteCODRequiresMethodSupport(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode:  "10431",
		MethodCode:  "PICKUP",
		ChargeCodes: []string{"cod"},
		Items:       []Item{{ProducerID: 1, Qty: 1, UnitPrice: 100, WeightGrams: 100}},
	})
	var merr *MethodNotAvailableError
	require.ErrorAs(t, err, &merr)
}

func TestQuoteUnknownChargeCode(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode:  "10431",
		MethodCode:  "HOME",
		ChargeCodes: []string{"giftwrap"},
		Items:       []Item{{ProducerID: 1, Qty: 1, UnitPrice: 100, WeightGrams: 100}},
	})
	var cerr *ChargeNotConfiguredError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "giftwrap", cerr.Code)
}

func TestQuoteRateGapAborts(t *testing.T) {
	s := fixtureSnapshot()
	// island zone has no heavy-tier rate configured
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode: "84100",
		MethodCode: "HOME",
		Items:      []Item{{ProducerID: 2, Qty: 1, UnitPrice: 100, WeightGrams: 6000}},
	})
	var rerr *RateNotConfiguredError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, int64(2), rerr.ProducerID)
}

func TestQuoteStaleSnapshotRefused(t *testing.T) {
	cfg := fixtureConfig()
	cfg.LoadedAt = time.Now().Add(-time.Hour)
	cfg.MaxAge = time.Minute
	s := New(cfg)
	_, err := s.ComputeQuote(QuoteInput{
		PostalCode: "10431",
		MethodCode: "HOME",
		Items:      []Item{{ProducerID: 1, Qty: 1, UnitPrice: 100, WeightGrams: 100}},
	})
	var serr *SnapshotStaleError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, int64(7), serr.Version)
}

func TestQuoteIdempotent(t *testing.T) {
	s := fixtureSnapshot()
	input := QuoteInput{
		PostalCode:  "84100",
		MethodCode:  "HOME",
		ChargeCodes: []string{"cod"},
		Items: []Item{
			{ProducerID: 2, Qty: 3, UnitPrice: 700, WeightGrams: 900},
			{ProducerID: 1, Qty: 1, UnitPrice: 2500, WeightGrams: 400},
		},
	}
	first, err := s.ComputeQuote(input)
	require.NoError(t, err)
	second, err := s.ComputeQuote(input)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestQuoteRoundTripInvariant(t *testing.T) {
	s := fixtureSnapshot()
	quote, err := s.ComputeQuote(QuoteInput{
		PostalCode:  "84100",
		MethodCode:  "HOME",
		ChargeCodes: []string{"cod", "insurance"},
		Items: []Item{
			{ProducerID: 1, Qty: 1, UnitPrice: 2000, WeightGrams: 1000},
			{ProducerID: 2, Qty: 1, UnitPrice: 2000, WeightGrams: 1000},
		},
	})
	require.NoError(t, err)
	var charges Money
	for _, line := range quote.AdditionalCharges {
		charges += line.Amount
	}
	require.Equal(t, quote.SubtotalBeforeDiscount-quote.Discount+charges, quote.Total)
}
