package engine

// Money represents a monetary value stored in minor units (euro cents).
type Money = int64

// Zone is a geographic pricing region resolved from a postal-code prefix.
type Zone struct {
	ID     int64
	Name   string
	Active bool
}

// ZonePrefix maps a postal-code prefix to a shipping zone.
type ZonePrefix struct {
	Prefix string
	ZoneID int64
}

// WeightTier is a contiguous weight bracket used for base-rate lookup.
type WeightTier struct {
	ID       int64
	Code     string
	MinGrams int64
	MaxGrams int64
}

// DeliveryMethod is a fulfillment channel (home delivery, pickup point, locker).
// Zero-valued limits mean "no limit".
type DeliveryMethod struct {
	ID                    int64
	Code                  string
	Name                  string
	Active                bool
	MaxWeightGrams        int64
	MaxLengthCm           int64
	MaxWidthCm            int64
	MaxHeightCm           int64
	SuitableForPerishable bool
	SuitableForFragile    bool
	SupportsCOD           bool
}

// RateKey identifies a zone-default shipping rate.
type RateKey struct {
	ZoneID   int64
	TierID   int64
	MethodID int64
}

// ProducerRateKey identifies a producer price override.
type ProducerRateKey struct {
	ProducerID int64
	ZoneID     int64
	TierID     int64
	MethodID   int64
}

// ZoneRate is the default price for a (zone, tier, method) combination,
// together with the multi-producer discount policy attached to it.
type ZoneRate struct {
	ZoneID       int64
	TierID       int64
	MethodID     int64
	Price        Money
	DiscountBps  int32
	MinProducers int32
}

// ProducerRate overrides the zone-default price for one producer. It never
// carries discount policy; that is borrowed from the zone rate.
type ProducerRate struct {
	ProducerID int64
	ZoneID     int64
	TierID     int64
	MethodID   int64
	Price      Money
}

// BaseRate is the result of rate resolution for one producer leg.
type BaseRate struct {
	Price        Money
	DiscountBps  int32
	MinProducers int32
}

// FreeShippingRule waives a producer's shipping leg above a subtotal
// threshold. ZoneID/MethodID of zero mean the rule applies to any zone or
// method; more specific rules win.
type FreeShippingRule struct {
	ProducerID int64
	ZoneID     int64
	MethodID   int64
	Threshold  Money
	Active     bool
}

// ExtraWeightCharge prices each kilogram beyond the heaviest weight tier.
// A producer-scoped charge overrides zone-scoped charges; a zone charge with
// MethodID zero applies to any method in the zone.
type ExtraWeightCharge struct {
	ProducerID int64
	ZoneID     int64
	MethodID   int64
	PricePerKg Money
	Active     bool
}

// AdditionalCharge is an order-level surcharge, flat or percentage
// (e.g. cash on delivery). Percentage charges are expressed in basis points
// against the pre-discount shipping subtotal.
type AdditionalCharge struct {
	Code               string
	Name               string
	Price              Money
	PercentBps         int32
	IsPercentage       bool
	RequiresCODSupport bool
	Active             bool
}

// ProducerMethod records that a producer has enabled a delivery method.
type ProducerMethod struct {
	ProducerID int64
	MethodID   int64
	Enabled    bool
}
