// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between failure scenarios. Note that a row
// owned by another tenant is reported with the same not-found sentinel
// as a row that does not exist: callers must not be able to tell the
// two cases apart.
package repository

import (
	"errors"
	"fmt"
)

// ErrTenantNotFound is returned when a tenant row cannot be located.
var ErrTenantNotFound = errors.New("tenant not found")

// ErrVenueNotFound is returned when a venue is absent or belongs to a
// different tenant than the caller's scope.
var ErrVenueNotFound = errors.New("venue not found")

// ErrActNotFound is returned when an act is absent or cross-tenant.
var ErrActNotFound = errors.New("act not found")

// ErrShowNotFound is returned when a show is absent or its venue belongs
// to a different tenant.
var ErrShowNotFound = errors.New("show not found")

// ErrOfferNotFound is returned when a ticket offer is absent or its
// show's venue belongs to a different tenant.
var ErrOfferNotFound = errors.New("offer not found")

// ErrNoChange indicates an UPDATE attempted to set fields equal to the
// current values.
var ErrNoChange = errors.New("no change")

// CapacityError reports that a requested ticket count would push the
// allocated total past the show's capacity. Available carries the count
// still free at evaluation time so the client can retry with a corrected
// value without re-querying.
type CapacityError struct {
	Available int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("requested count exceeds capacity: %d tickets available", e.Available)
}
