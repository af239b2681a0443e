package engine

import (
	"errors"
	"testing"
)

func TestResolveBaseRateProducerOverrideWins(t *testing.T) {
	s := fixtureSnapshot()
	rate, err := s.ResolveBaseRate(1, zoneIsland, tierLight, methodHome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Price != 400 {
		t.Fatalf("producer override price must win, got %d", rate.Price)
	}
	// discount policy is borrowed from the zone rate, not overridden
	if rate.DiscountBps != 1000 || rate.MinProducers != 2 {
		t.Fatalf("discount policy should come from the zone rate, got bps=%d min=%d", rate.DiscountBps, rate.MinProducers)
	}
}

func TestResolveBaseRateZoneDefault(t *testing.T) {
	s := fixtureSnapshot()
	rate, err := s.ResolveBaseRate(2, zoneIsland, tierLight, methodHome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Price != 300 {
		t.Fatalf("expected zone default 300, got %d", rate.Price)
	}
}

func TestResolveBaseRateMissing(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ResolveBaseRate(2, zoneIsland, tierHeavy, methodHome)
	var rerr *RateNotConfiguredError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RateNotConfiguredError, got %v", err)
	}
	if rerr.ProducerID != 2 || rerr.ZoneID != zoneIsland || rerr.TierID != tierHeavy || rerr.MethodID != methodHome {
		t.Fatalf("error must identify the missing combination: %+v", rerr)
	}
}

func TestOverweightSurchargeRoundsUp(t *testing.T) {
	s := fixtureSnapshot()
	// 1 g of overflow charges a full kilogram
	got, err := s.OverweightSurcharge(1, 2, zoneAthens, methodHome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 120 {
		t.Fatalf("expected 120 for 1 g overflow, got %d", got)
	}
	got, err = s.OverweightSurcharge(2300, 2, zoneAthens, methodHome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3*120 {
		t.Fatalf("expected 360 for 2300 g overflow, got %d", got)
	}
}

func TestOverweightSurchargeSkipsLookupWhenNoOverflow(t *testing.T) {
	s := New(Config{}) // no extra-weight charges configured at all
	got, err := s.OverweightSurcharge(0, 1, 1, 1)
	if err != nil || got != 0 {
		t.Fatalf("zero overflow must not look up a rate, got %d err %v", got, err)
	}
}

func TestExtraKgRatePrecedence(t *testing.T) {
	s := New(Config{ExtraWeight: []ExtraWeightCharge{
		{ZoneID: 1, PricePerKg: 90, Active: true},
		{ZoneID: 1, MethodID: 2, PricePerKg: 110, Active: true},
		{ProducerID: 5, PricePerKg: 70, Active: true},
	}})
	if got, _ := s.OverweightSurcharge(1000, 5, 1, 2); got != 70 {
		t.Fatalf("producer charge must win, got %d", got)
	}
	if got, _ := s.OverweightSurcharge(1000, 6, 1, 2); got != 110 {
		t.Fatalf("zone+method charge must beat zone-only, got %d", got)
	}
	if got, _ := s.OverweightSurcharge(1000, 6, 1, 3); got != 90 {
		t.Fatalf("zone-only charge should apply for other methods, got %d", got)
	}
	var rerr *RateNotConfiguredError
	if _, err := s.OverweightSurcharge(1000, 6, 2, 1); !errors.As(err, &rerr) {
		t.Fatalf("expected RateNotConfiguredError for unknown zone, got %v", err)
	}
}
