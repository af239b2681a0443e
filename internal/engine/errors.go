package engine

import (
	"fmt"
	"time"
)

// ZoneResolutionError indicates the destination postal code matches no
// configured prefix. The order cannot be shipped to this address.
type ZoneResolutionError struct {
	PostalCode string
}

func (e *ZoneResolutionError) Error() string {
	return fmt.Sprintf("no shipping zone configured for postal code %q", e.PostalCode)
}

// RateNotConfiguredError indicates a required rate row is missing. A TierID
// of zero marks an extra-weight (per-kg) lookup rather than a base rate.
type RateNotConfiguredError struct {
	ProducerID int64
	ZoneID     int64
	TierID     int64
	MethodID   int64
}

func (e *RateNotConfiguredError) Error() string {
	if e.TierID == 0 {
		return fmt.Sprintf("no extra-weight charge configured for producer %d, zone %d, method %d", e.ProducerID, e.ZoneID, e.MethodID)
	}
	return fmt.Sprintf("no shipping rate configured for producer %d, zone %d, tier %d, method %d", e.ProducerID, e.ZoneID, e.TierID, e.MethodID)
}

// MethodNotAvailableError indicates the chosen delivery method cannot serve
// one of the producers in the shipment.
type MethodNotAvailableError struct {
	ProducerID int64
	MethodCode string
	Reason     string
}

func (e *MethodNotAvailableError) Error() string {
	if e.ProducerID == 0 {
		return fmt.Sprintf("delivery method %q not available: %s", e.MethodCode, e.Reason)
	}
	return fmt.Sprintf("delivery method %q not available for producer %d: %s", e.MethodCode, e.ProducerID, e.Reason)
}

// ChargeNotConfiguredError indicates a requested additional-charge code does
// not exist in the active charge catalogue.
type ChargeNotConfiguredError struct {
	Code string
}

func (e *ChargeNotConfiguredError) Error() string {
	return fmt.Sprintf("additional charge %q is not configured", e.Code)
}

// SnapshotStaleError indicates the configuration snapshot exceeded its
// maximum age; quoting against it could price deleted rate rows.
type SnapshotStaleError struct {
	Version int64
	Age     time.Duration
}

func (e *SnapshotStaleError) Error() string {
	return fmt.Sprintf("configuration snapshot version %d is stale (age %s)", e.Version, e.Age)
}
