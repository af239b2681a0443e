package engine

import (
	"sort"
	"time"
)

// OptionsInput describes a shipment whose available delivery options should
// be listed per producer, before the customer commits to a method.
type OptionsInput struct {
	PostalCode string
	Items      []Item
}

// MethodOption is one priced delivery option for a producer.
type MethodOption struct {
	MethodID    int64
	MethodCode  string
	Name        string
	Cost        Money
	Waived      bool
	SupportsCOD bool
}

// ProducerOptions lists the priced options of one producer, cheapest first.
type ProducerOptions struct {
	ProducerID int64
	Options    []MethodOption
}

// Options is the per-producer availability listing for a destination.
type Options struct {
	SnapshotVersion int64
	Currency        string
	ZoneID          int64
	ZoneName        string
	Producers       []ProducerOptions
}

// ListOptions evaluates every producer-enabled, physically valid method for
// each producer in the shipment and returns the priced candidates. Unlike
// quoting a chosen method, listing is best-effort: a candidate method that
// cannot be priced (missing rate, physical limits) is skipped rather than
// failing the listing. Zone resolution failures still abort — nothing can be
// offered to an unserved address.
func (s *Snapshot) ListOptions(in OptionsInput) (Options, error) {
	if err := s.Stale(time.Now()); err != nil {
		return Options{}, err
	}
	zone, err := s.ResolveZone(in.PostalCode)
	if err != nil {
		return Options{}, err
	}
	groups, err := groupByProducer(in.Items)
	if err != nil {
		return Options{}, err
	}

	out := Options{
		SnapshotVersion: s.version,
		Currency:        s.currency,
		ZoneID:          zone.ID,
		ZoneName:        zone.Name,
		Producers:       make([]ProducerOptions, 0, len(groups)),
	}
	for i := range groups {
		group := &groups[i]
		options := make([]MethodOption, 0, len(s.producerMethods[group.producerID]))
		for methodID := range s.producerMethods[group.producerID] {
			method, ok := s.methods[methodID]
			if !ok || !method.Active {
				continue
			}
			if s.checkMethodForGroup(method, group) != nil {
				continue
			}
			leg, _, err := s.priceLeg(group, zone.ID, method.ID)
			if err != nil {
				continue
			}
			options = append(options, MethodOption{
				MethodID:    method.ID,
				MethodCode:  method.Code,
				Name:        method.Name,
				Cost:        leg.Amount,
				Waived:      leg.Waived,
				SupportsCOD: method.SupportsCOD,
			})
		}
		sort.Slice(options, func(a, b int) bool {
			if options[a].Cost != options[b].Cost {
				return options[a].Cost < options[b].Cost
			}
			return options[a].MethodID < options[b].MethodID
		})
		out.Producers = append(out.Producers, ProducerOptions{ProducerID: group.producerID, Options: options})
	}
	return out, nil
}
