package engine

import "strings"

// ResolveZone maps a destination postal code to its shipping zone using
// longest-prefix matching. Prefixes are unique and disjoint by construction,
// so the first (longest) match is the only match at that length. A code that
// matches no prefix cannot be shipped to; there is deliberately no default
// zone fallback.
func (s *Snapshot) ResolveZone(postalCode string) (Zone, error) {
	code := strings.TrimSpace(postalCode)
	if code == "" {
		return Zone{}, &ZoneResolutionError{PostalCode: postalCode}
	}
	for _, p := range s.prefixes {
		if !strings.HasPrefix(code, p.Prefix) {
			continue
		}
		zone, ok := s.zones[p.ZoneID]
		if !ok || !zone.Active {
			continue
		}
		return zone, nil
	}
	return Zone{}, &ZoneResolutionError{PostalCode: code}
}
