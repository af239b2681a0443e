package engine

import (
	"time"
)

const (
	tierLight  = int64(1) // 0–2000 g
	tierMid    = int64(2) // 2001–5000 g
	tierHeavy  = int64(3) // 5001–10000 g
	methodHome = int64(1)
	methodPick = int64(2)
	zoneAthens = int64(1)
	zoneIsland = int64(2)
)

// fixtureConfig mirrors the seed data shape: two zones, three tiers, two
// methods, a zone-default rate matrix with a multi-producer discount on the
// island zone, one producer price override and one free-shipping rule.
func fixtureConfig() Config {
	return Config{
		Version:  7,
		LoadedAt: time.Now(),
		Currency: "EUR",
		Zones: []Zone{
			{ID: zoneAthens, Name: "Athens", Active: true},
			{ID: zoneIsland, Name: "Islands", Active: true},
		},
		Prefixes: []ZonePrefix{
			{Prefix: "10", ZoneID: zoneAthens},
			{Prefix: "11", ZoneID: zoneAthens},
			{Prefix: "8", ZoneID: zoneIsland},
		},
		Tiers: []WeightTier{
			{ID: tierLight, Code: "T2KG", MinGrams: 0, MaxGrams: 2000},
			{ID: tierMid, Code: "T5KG", MinGrams: 2001, MaxGrams: 5000},
			{ID: tierHeavy, Code: "T10KG", MinGrams: 5001, MaxGrams: 10000},
		},
		Methods: []DeliveryMethod{
			{ID: methodHome, Code: "HOME", Name: "Home delivery", Active: true, SupportsCOD: true, SuitableForPerishable: true, SuitableForFragile: true},
			{ID: methodPick, Code: "PICKUP", Name: "Pickup point", Active: true, MaxWeightGrams: 8000, SuitableForFragile: true},
		},
		Rates: []ZoneRate{
			{ZoneID: zoneAthens, TierID: tierLight, MethodID: methodHome, Price: 350},
			{ZoneID: zoneAthens, TierID: tierMid, MethodID: methodHome, Price: 450},
			{ZoneID: zoneAthens, TierID: tierHeavy, MethodID: methodHome, Price: 600},
			{ZoneID: zoneAthens, TierID: tierLight, MethodID: methodPick, Price: 250},
			{ZoneID: zoneIsland, TierID: tierLight, MethodID: methodHome, Price: 300, DiscountBps: 1000, MinProducers: 2},
			{ZoneID: zoneIsland, TierID: tierMid, MethodID: methodHome, Price: 700},
		},
		ProducerRates: []ProducerRate{
			// producer 1 pays a negotiated island rate; discount policy
			// stays with the zone rate above
			{ProducerID: 1, ZoneID: zoneIsland, TierID: tierLight, MethodID: methodHome, Price: 400},
		},
		FreeShipping: []FreeShippingRule{
			{ProducerID: 1, ZoneID: zoneAthens, Threshold: 5000, Active: true},
		},
		ExtraWeight: []ExtraWeightCharge{
			{ZoneID: zoneAthens, PricePerKg: 120, Active: true},
			{ZoneID: zoneIsland, PricePerKg: 150, Active: true},
		},
		Charges: []AdditionalCharge{
			{Code: "cod", Name: "Cash on delivery", Price: 200, RequiresCODSupport: true, Active: true},
			{Code: "insurance", Name: "Shipment insurance", PercentBps: 500, IsPercentage: true, Active: true},
		},
		ProducerMethods: []ProducerMethod{
			{ProducerID: 1, MethodID: methodHome, Enabled: true},
			{ProducerID: 1, MethodID: methodPick, Enabled: true},
			{ProducerID: 2, MethodID: methodHome, Enabled: true},
		},
	}
}

func fixtureSnapshot() *Snapshot {
	return New(fixtureConfig())
}
