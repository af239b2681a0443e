package engine

import (
	"sort"
	"time"
)

// DefaultVolumetricDivisor converts cm³ into volumetric kilograms.
const DefaultVolumetricDivisor = 5000

// Config carries the raw configuration rows a snapshot is built from.
type Config struct {
	Version           int64
	LoadedAt          time.Time
	MaxAge            time.Duration
	Currency          string
	VolumetricDivisor int64

	Zones           []Zone
	Prefixes        []ZonePrefix
	Tiers           []WeightTier
	Methods         []DeliveryMethod
	Rates           []ZoneRate
	ProducerRates   []ProducerRate
	FreeShipping    []FreeShippingRule
	ExtraWeight     []ExtraWeightCharge
	Charges         []AdditionalCharge
	ProducerMethods []ProducerMethod
}

// Snapshot is an immutable, read-optimised view of the shipping
// configuration. All engine operations evaluate against one snapshot so a
// quote never mixes configuration generations.
type Snapshot struct {
	version           int64
	loadedAt          time.Time
	maxAge            time.Duration
	currency          string
	volumetricDivisor int64

	zones               map[int64]Zone
	prefixes            []ZonePrefix
	tiers               []WeightTier
	methods             map[int64]DeliveryMethod
	methodsByCode       map[string]int64
	rates               map[RateKey]ZoneRate
	producerRates       map[ProducerRateKey]Money
	freeShipping        map[int64][]FreeShippingRule
	extraWeight         map[RateKey]Money
	producerExtraWeight map[int64]Money
	charges             map[string]AdditionalCharge
	producerMethods     map[int64]map[int64]bool
}

// New builds a snapshot from configuration rows. Prefixes are ordered
// longest-first for the longest-match walk and tiers ascending by MinGrams
// for the bracket search.
func New(cfg Config) *Snapshot {
	s := &Snapshot{
		version:             cfg.Version,
		loadedAt:            cfg.LoadedAt,
		maxAge:              cfg.MaxAge,
		currency:            cfg.Currency,
		volumetricDivisor:   cfg.VolumetricDivisor,
		zones:               make(map[int64]Zone, len(cfg.Zones)),
		prefixes:            append([]ZonePrefix(nil), cfg.Prefixes...),
		tiers:               append([]WeightTier(nil), cfg.Tiers...),
		methods:             make(map[int64]DeliveryMethod, len(cfg.Methods)),
		methodsByCode:       make(map[string]int64, len(cfg.Methods)),
		rates:               make(map[RateKey]ZoneRate, len(cfg.Rates)),
		producerRates:       make(map[ProducerRateKey]Money, len(cfg.ProducerRates)),
		freeShipping:        make(map[int64][]FreeShippingRule),
		extraWeight:         make(map[RateKey]Money, len(cfg.ExtraWeight)),
		producerExtraWeight: make(map[int64]Money),
		charges:             make(map[string]AdditionalCharge, len(cfg.Charges)),
		producerMethods:     make(map[int64]map[int64]bool),
	}
	if s.loadedAt.IsZero() {
		s.loadedAt = time.Now()
	}
	if s.currency == "" {
		s.currency = "EUR"
	}
	if s.volumetricDivisor <= 0 {
		s.volumetricDivisor = DefaultVolumetricDivisor
	}

	for _, z := range cfg.Zones {
		s.zones[z.ID] = z
	}
	sort.SliceStable(s.prefixes, func(i, j int) bool {
		return len(s.prefixes[i].Prefix) > len(s.prefixes[j].Prefix)
	})
	sort.SliceStable(s.tiers, func(i, j int) bool {
		return s.tiers[i].MinGrams < s.tiers[j].MinGrams
	})
	for _, m := range cfg.Methods {
		s.methods[m.ID] = m
		s.methodsByCode[m.Code] = m.ID
	}
	for _, r := range cfg.Rates {
		s.rates[RateKey{ZoneID: r.ZoneID, TierID: r.TierID, MethodID: r.MethodID}] = r
	}
	for _, r := range cfg.ProducerRates {
		s.producerRates[ProducerRateKey{ProducerID: r.ProducerID, ZoneID: r.ZoneID, TierID: r.TierID, MethodID: r.MethodID}] = r.Price
	}
	for _, rule := range cfg.FreeShipping {
		if !rule.Active {
			continue
		}
		s.freeShipping[rule.ProducerID] = append(s.freeShipping[rule.ProducerID], rule)
	}
	for _, c := range cfg.ExtraWeight {
		if !c.Active {
			continue
		}
		if c.ProducerID != 0 {
			s.producerExtraWeight[c.ProducerID] = c.PricePerKg
			continue
		}
		s.extraWeight[RateKey{ZoneID: c.ZoneID, MethodID: c.MethodID}] = c.PricePerKg
	}
	for _, c := range cfg.Charges {
		if !c.Active {
			continue
		}
		s.charges[c.Code] = c
	}
	for _, pm := range cfg.ProducerMethods {
		if !pm.Enabled {
			continue
		}
		methods := s.producerMethods[pm.ProducerID]
		if methods == nil {
			methods = make(map[int64]bool)
			s.producerMethods[pm.ProducerID] = methods
		}
		methods[pm.MethodID] = true
	}
	return s
}

// Version reports the configuration generation the snapshot was built from.
func (s *Snapshot) Version() int64 { return s.version }

// LoadedAt reports when the snapshot was loaded.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Currency reports the currency code all snapshot prices are expressed in.
func (s *Snapshot) Currency() string { return s.currency }

// Stale reports whether the snapshot exceeded its maximum age at the given
// instant. A zero MaxAge disables the check.
func (s *Snapshot) Stale(now time.Time) error {
	if s.maxAge <= 0 {
		return nil
	}
	if age := now.Sub(s.loadedAt); age > s.maxAge {
		return &SnapshotStaleError{Version: s.version, Age: age}
	}
	return nil
}

// MethodEnabled reports whether a producer has enabled a delivery method.
func (s *Snapshot) MethodEnabled(producerID, methodID int64) bool {
	return s.producerMethods[producerID][methodID]
}
