package engine

import (
	"errors"
	"testing"
)

func TestResolveZoneLongestPrefixWins(t *testing.T) {
	s := New(Config{
		Zones: []Zone{
			{ID: 1, Name: "Islands", Active: true},
			{ID: 2, Name: "Cyclades", Active: true},
		},
		Prefixes: []ZonePrefix{
			{Prefix: "8", ZoneID: 1},
			{Prefix: "84", ZoneID: 2},
		},
	})
	zone, err := s.ResolveZone("84100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.ID != 2 {
		t.Fatalf("expected longest prefix zone 2, got %d", zone.ID)
	}
	zone, err = s.ResolveZone("85100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.ID != 1 {
		t.Fatalf("expected fallback to shorter prefix zone 1, got %d", zone.ID)
	}
}

func TestResolveZoneNoMatch(t *testing.T) {
	s := fixtureSnapshot()
	_, err := s.ResolveZone("99999")
	var zerr *ZoneResolutionError
	if !errors.As(err, &zerr) {
		t.Fatalf("expected ZoneResolutionError, got %v", err)
	}
	if zerr.PostalCode != "99999" {
		t.Fatalf("error should carry the postal code, got %q", zerr.PostalCode)
	}
}

func TestResolveZoneEmptyCode(t *testing.T) {
	s := fixtureSnapshot()
	var zerr *ZoneResolutionError
	if _, err := s.ResolveZone("  "); !errors.As(err, &zerr) {
		t.Fatalf("expected ZoneResolutionError for blank code, got %v", err)
	}
}

func TestResolveZoneSkipsInactiveZone(t *testing.T) {
	s := New(Config{
		Zones: []Zone{
			{ID: 1, Name: "Retired", Active: false},
			{ID: 2, Name: "Mainland", Active: true},
		},
		Prefixes: []ZonePrefix{
			{Prefix: "201", ZoneID: 1},
			{Prefix: "2", ZoneID: 2},
		},
	})
	zone, err := s.ResolveZone("20100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.ID != 2 {
		t.Fatalf("inactive zone must not resolve, got zone %d", zone.ID)
	}
}
