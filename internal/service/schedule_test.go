package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/tenant"
)

type fakeVenueStore struct {
	venues map[string]*repository.Venue
}

func (f *fakeVenueStore) GetByPublicID(_ context.Context, sc tenant.Scope, publicID string) (*repository.Venue, error) {
	v, ok := f.venues[publicID]
	if !ok || (!sc.IsAdmin() && v.TenantID != sc.TenantID()) {
		return nil, repository.ErrVenueNotFound
	}
	return v, nil
}

// fakeShowWindowStore filters an in-memory list with the repository's
// documented inclusive-window contract.
type fakeShowWindowStore struct {
	shows []repository.NearbyShow
}

func (f *fakeShowWindowStore) FindInWindow(_ context.Context, _ tenant.Scope, _ uint64, _ uint64, from, to time.Time) ([]repository.NearbyShow, error) {
	out := []repository.NearbyShow{}
	for _, s := range f.shows {
		if !s.StartsAt.Before(from) && !s.StartsAt.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func chicagoVenue(id uint64, tenantID uint64) *repository.Venue {
	return &repository.Venue{ID: id, PublicID: "venue-1", TenantID: tenantID, Name: "The Vic", Timezone: "America/Chicago"}
}

func TestFindNearbyShowsWindowIsInclusive(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	candidate := time.Date(2026, 6, 10, 20, 0, 0, 0, loc)

	shows := &fakeShowWindowStore{shows: []repository.NearbyShow{
		{ShowPublicID: "edge-before", ActName: "Edge Before", StartsAt: candidate.Add(-NearbyWindow)},
		{ShowPublicID: "out-before", ActName: "Out Before", StartsAt: candidate.Add(-NearbyWindow - time.Second)},
		{ShowPublicID: "edge-after", ActName: "Edge After", StartsAt: candidate.Add(NearbyWindow)},
		{ShowPublicID: "out-after", ActName: "Out After", StartsAt: candidate.Add(NearbyWindow + time.Second)},
		{ShowPublicID: "middle", ActName: "Middle", StartsAt: candidate.Add(2 * time.Hour)},
	}}
	svc := NewScheduleService(&fakeVenueStore{venues: map[string]*repository.Venue{"venue-1": chicagoVenue(1, 1)}}, shows)

	got, err := svc.FindNearbyShows(context.Background(), tenant.ForTenant(1), "venue-1", "2026-06-10T20:00:00")
	require.NoError(t, err)

	// Exactly the inclusive 48h boundary and everything inside, sorted
	// ascending by start instant.
	require.Len(t, got, 3)
	assert.Equal(t, "edge-before", got[0].ShowPublicID)
	assert.Equal(t, "middle", got[1].ShowPublicID)
	assert.Equal(t, "edge-after", got[2].ShowPublicID)
}

func TestFindNearbyShowsEmptyIsNotAnError(t *testing.T) {
	svc := NewScheduleService(
		&fakeVenueStore{venues: map[string]*repository.Venue{"venue-1": chicagoVenue(1, 1)}},
		&fakeShowWindowStore{},
	)

	got, err := svc.FindNearbyShows(context.Background(), tenant.ForTenant(1), "venue-1", "2026-06-10T20:00:00")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindNearbyShowsCrossTenantVenue(t *testing.T) {
	svc := NewScheduleService(
		&fakeVenueStore{venues: map[string]*repository.Venue{"venue-1": chicagoVenue(1, 2)}},
		&fakeShowWindowStore{},
	)

	_, err := svc.FindNearbyShows(context.Background(), tenant.ForTenant(1), "venue-1", "2026-06-10T20:00:00")
	assert.ErrorIs(t, err, repository.ErrVenueNotFound)
}

func TestFindNearbyShowsRejectsBadInput(t *testing.T) {
	svc := NewScheduleService(
		&fakeVenueStore{venues: map[string]*repository.Venue{"venue-1": chicagoVenue(1, 1)}},
		&fakeShowWindowStore{},
	)

	_, err := svc.FindNearbyShows(context.Background(), tenant.ForTenant(1), "venue-1", "next tuesday")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResolveStartTimeUsesVenueZoneOnCandidateDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	v := &repository.Venue{Timezone: "America/New_York"}

	// 2026-03-08 is the US spring-forward date: noon wall clock that day
	// is EDT (UTC-4) even if the request is made during EST.
	got, err := ResolveStartTime(v, "2026-03-08T12:00:00")
	require.NoError(t, err)
	want := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)
	assert.True(t, got.Equal(want))
	_, offset := got.Zone()
	assert.Equal(t, -4*3600, offset)

	// The same wall clock in January resolves to EST (UTC-5).
	got, err = ResolveStartTime(v, "2026-01-08T12:00:00")
	require.NoError(t, err)
	_, offset = got.Zone()
	assert.Equal(t, -5*3600, offset)
}

func TestResolveStartTimeHonorsExplicitOffset(t *testing.T) {
	v := &repository.Venue{Timezone: "America/Chicago"}

	got, err := ResolveStartTime(v, "2026-06-10T20:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 6, 10, 20, 0, 0, 0, time.UTC)))
}

func TestResolveStartTimeInvalidZone(t *testing.T) {
	v := &repository.Venue{Timezone: "Mars/Olympus_Mons"}

	_, err := ResolveStartTime(v, "2026-06-10T20:00:00")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
