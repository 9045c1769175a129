// schedule.go implements the scheduling-conflict detector: a read-only
// lookup of other shows at a venue within 48 hours of a candidate start
// time. It is advisory only: it informs the caller and never blocks a
// write.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/tenant"
)

// NearbyWindow is how far on each side of the candidate start the
// detector looks, inclusive on both ends.
const NearbyWindow = 48 * time.Hour

// startLocalLayout is the wall-clock layout callers submit; it carries
// no offset because the offset comes from the venue's zone on that date.
const startLocalLayout = "2006-01-02T15:04:05"

// VenueStore is the venue lookup the detector needs.
type VenueStore interface {
	GetByPublicID(ctx context.Context, sc tenant.Scope, publicID string) (*repository.Venue, error)
}

// ShowWindowStore is the window query the detector needs.
type ShowWindowStore interface {
	FindInWindow(ctx context.Context, sc tenant.Scope, venueID, excludeShowID uint64, from, to time.Time) ([]repository.NearbyShow, error)
}

// ScheduleService answers "what else is on at this venue around then".
type ScheduleService struct {
	venues VenueStore
	shows  ShowWindowStore
}

// NewScheduleService constructs the conflict detector.
func NewScheduleService(venues VenueStore, shows ShowWindowStore) *ScheduleService {
	if venues == nil || shows == nil {
		panic("nil store passed to NewScheduleService")
	}
	return &ScheduleService{venues: venues, shows: shows}
}

// FindNearbyShows returns other shows at the venue whose start instant
// falls within 48 hours before or after the candidate start, inclusive,
// ordered ascending by start time. startLocal is a wall-clock time
// ("2006-01-02T15:04:05") interpreted in the venue's timezone using the
// offset in force on that date, so daylight-saving transitions between
// now and the candidate date resolve correctly. An empty result is a
// valid, non-error outcome. Cross-tenant venues are ErrVenueNotFound.
func (s *ScheduleService) FindNearbyShows(ctx context.Context, sc tenant.Scope, venueKey, startLocal string) ([]repository.NearbyShow, error) {
	v, err := s.venues.GetByPublicID(ctx, sc, venueKey)
	if err != nil {
		return nil, err
	}
	start, err := ResolveStartTime(v, startLocal)
	if err != nil {
		return nil, err
	}
	return s.shows.FindInWindow(ctx, sc, v.ID, 0, start.Add(-NearbyWindow), start.Add(NearbyWindow))
}

// ResolveStartTime interprets a submitted start time in the venue's
// timezone and returns the absolute instant. An explicit offset (RFC
// 3339) is honored as-is; otherwise the wall-clock value is placed in
// the venue's zone on that date.
func ResolveStartTime(v *repository.Venue, raw string) (time.Time, error) {
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: venue has invalid timezone %q", ErrInvalidArgument, v.Timezone)
	}
	if t, err := time.ParseInLocation(startLocalLayout, raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: starts_at must be %q or RFC 3339", ErrInvalidArgument, startLocalLayout)
}
