package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/stagepass/internal/queue"
	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/tenant"
)

// fakeOfferStore reproduces the store contract in memory. A single
// mutex plays the role of the show-row lock: the capacity check and the
// write happen atomically with respect to other callers, exactly the
// guarantee the SQL implementation provides per show.
type fakeOfferStore struct {
	mu     sync.Mutex
	shows  map[string]*fakeShow
	offers map[string]*repository.Offer
	nextID uint64
}

type fakeShow struct {
	id       uint64
	tenantID uint64
	total    int64
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{
		shows:  map[string]*fakeShow{},
		offers: map[string]*repository.Offer{},
	}
}

func (f *fakeOfferStore) addShow(publicID string, tenantID uint64, total int64) {
	f.nextID++
	f.shows[publicID] = &fakeShow{id: f.nextID, tenantID: tenantID, total: total}
}

func (f *fakeOfferStore) visible(sc tenant.Scope, s *fakeShow) bool {
	return sc.IsAdmin() || s.tenantID == sc.TenantID()
}

func (f *fakeOfferStore) sum(showID, excludeOfferID uint64) int64 {
	var n int64
	for _, o := range f.offers {
		if o.ShowID == showID && o.ID != excludeOfferID {
			n += o.TicketCount
		}
	}
	return n
}

func (f *fakeOfferStore) CreateWithCapacity(_ context.Context, sc tenant.Scope, showPublicID string, o *repository.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shows[showPublicID]
	if !ok || !f.visible(sc, s) {
		return repository.ErrShowNotFound
	}
	available := s.total - f.sum(s.id, 0)
	if o.TicketCount > available {
		return &repository.CapacityError{Available: available}
	}
	f.nextID++
	o.ID = f.nextID
	o.PublicID = fmt.Sprintf("offer-%d", f.nextID)
	o.ShowID = s.id
	o.ShowPublicID = showPublicID
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	f.offers[o.PublicID] = &cp
	return nil
}

func (f *fakeOfferStore) UpdateWithCapacity(_ context.Context, sc tenant.Scope, offerPublicID, name string, priceCents, count int64) (*repository.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerPublicID]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}
	var show *fakeShow
	var showPID string
	for pid, s := range f.shows {
		if s.id == o.ShowID {
			show = s
			showPID = pid
		}
	}
	if show == nil || !f.visible(sc, show) {
		return nil, repository.ErrOfferNotFound
	}
	available := show.total - f.sum(show.id, o.ID)
	if count > available {
		return nil, &repository.CapacityError{Available: available}
	}
	o.Name = name
	o.PriceCents = priceCents
	o.TicketCount = count
	o.ShowPublicID = showPID
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

func (f *fakeOfferStore) Capacity(_ context.Context, sc tenant.Scope, showPublicID string) (*repository.ShowCapacity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shows[showPublicID]
	if !ok || !f.visible(sc, s) {
		return nil, repository.ErrShowNotFound
	}
	allocated := f.sum(s.id, 0)
	return &repository.ShowCapacity{Total: s.total, Allocated: allocated, Available: s.total - allocated}, nil
}

// fakeEvents records published events.
type fakeEvents struct {
	mu      sync.Mutex
	created []queue.OfferCreatedEvent
	updated []queue.OfferUpdatedEvent
}

func (f *fakeEvents) PublishOfferCreated(_ context.Context, ev queue.OfferCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, ev)
	return nil
}

func (f *fakeEvents) PublishOfferUpdated(_ context.Context, ev queue.OfferUpdatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, ev)
	return nil
}

func TestCreateOfferExactFit(t *testing.T) {
	store := newFakeOfferStore()
	store.addShow("show-1", 1, 1000)
	svc := NewAllocationService(store, nil)
	sc := tenant.ForTenant(1)

	_, err := svc.CreateOffer(context.Background(), sc, "show-1", "GA", 2500, 600)
	require.NoError(t, err)

	// Exactly the remaining capacity succeeds and drives available to 0.
	o, err := svc.CreateOffer(context.Background(), sc, "show-1", "Balcony", 1500, 400)
	require.NoError(t, err)
	assert.Equal(t, int64(400), o.TicketCount)

	cap, err := svc.GetShowCapacity(context.Background(), sc, "show-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cap.Allocated)
	assert.Equal(t, int64(0), cap.Available)
}

func TestCreateOfferOneOverFails(t *testing.T) {
	store := newFakeOfferStore()
	store.addShow("show-1", 1, 1000)
	svc := NewAllocationService(store, nil)
	sc := tenant.ForTenant(1)

	_, err := svc.CreateOffer(context.Background(), sc, "show-1", "GA", 2500, 600)
	require.NoError(t, err)

	_, err = svc.CreateOffer(context.Background(), sc, "show-1", "VIP", 9900, 401)
	var capErr *repository.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(400), capErr.Available)
	assert.Contains(t, capErr.Error(), "400")

	// The failed create left allocation untouched.
	cap, err := svc.GetShowCapacity(context.Background(), sc, "show-1")
	require.NoError(t, err)
	assert.Equal(t, int64(600), cap.Allocated)
	assert.Equal(t, int64(400), cap.Available)
}

func TestUpdateOfferExcludesOwnAllocation(t *testing.T) {
	store := newFakeOfferStore()
	store.addShow("show-1", 1, 1000)
	svc := NewAllocationService(store, nil)
	sc := tenant.ForTenant(1)

	a, err := svc.CreateOffer(context.Background(), sc, "show-1", "A", 1000, 600)
	require.NoError(t, err)
	_, err = svc.CreateOffer(context.Background(), sc, "show-1", "B", 1000, 200)
	require.NoError(t, err)

	// Editing A may use everything B leaves free: 1000 - 200 = 800.
	upd, err := svc.UpdateOffer(context.Background(), sc, a.PublicID, "A", 1000, 800)
	require.NoError(t, err)
	assert.Equal(t, int64(800), upd.TicketCount)

	// One past that limit fails and reports what was available.
	_, err = svc.UpdateOffer(context.Background(), sc, a.PublicID, "A", 1000, 801)
	var capErr *repository.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(800), capErr.Available)
}

func TestOfferScenario(t *testing.T) {
	// Show 1000: GA 600 ok -> available 400; VIP 450 fails reporting
	// 400; GA down to 300 -> available 700.
	store := newFakeOfferStore()
	store.addShow("show-1", 1, 1000)
	svc := NewAllocationService(store, nil)
	sc := tenant.ForTenant(1)
	ctx := context.Background()

	ga, err := svc.CreateOffer(ctx, sc, "show-1", "GA", 2500, 600)
	require.NoError(t, err)
	cap, _ := svc.GetShowCapacity(ctx, sc, "show-1")
	assert.Equal(t, int64(400), cap.Available)

	_, err = svc.CreateOffer(ctx, sc, "show-1", "VIP", 9900, 450)
	var capErr *repository.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(400), capErr.Available)

	_, err = svc.UpdateOffer(ctx, sc, ga.PublicID, "GA", 2500, 300)
	require.NoError(t, err)
	cap, _ = svc.GetShowCapacity(ctx, sc, "show-1")
	assert.Equal(t, int64(700), cap.Available)
}

func TestCreateOfferCrossTenantIsNotFound(t *testing.T) {
	store := newFakeOfferStore()
	store.addShow("show-1", 2, 1000)
	svc := NewAllocationService(store, nil)

	_, err := svc.CreateOffer(context.Background(), tenant.ForTenant(1), "show-1", "GA", 2500, 10)
	assert.ErrorIs(t, err, repository.ErrShowNotFound)

	// The admin scope sees every tenant's shows.
	_, err = svc.CreateOffer(context.Background(), tenant.Admin(), "show-1", "GA", 2500, 10)
	assert.NoError(t, err)
}

func TestOfferFieldValidation(t *testing.T) {
	store := newFakeOfferStore()
	store.addShow("show-1", 1, 1000)
	svc := NewAllocationService(store, nil)
	sc := tenant.ForTenant(1)
	ctx := context.Background()

	cases := []struct {
		name  string
		offer string
		price int64
		count int64
	}{
		{"empty name", "   ", 100, 10},
		{"oversized name", strings.Repeat("x", 101), 100, 10},
		{"zero price", "GA", 0, 10},
		{"negative price", "GA", -5, 10},
		{"zero count", "GA", 100, 0},
		{"negative count", "GA", 100, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOffer(ctx, sc, "show-1", tc.offer, tc.price, tc.count)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	// Nothing was written by any rejected call.
	cap, err := svc.GetShowCapacity(ctx, sc, "show-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), cap.Allocated)
}

func TestConcurrentCreatesNeverOversell(t *testing.T) {
	// Two concurrent creates individually fit but jointly exceed
	// capacity: exactly one must succeed.
	store := newFakeOfferStore()
	store.addShow("show-1", 1, 1000)
	svc := NewAllocationService(store, nil)
	sc := tenant.ForTenant(1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOffer(context.Background(), sc, "show-1", fmt.Sprintf("offer-%d", i), 1000, 600)
		}(i)
	}
	wg.Wait()

	var okCount, capCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		var capErr *repository.CapacityError
		if errors.As(err, &capErr) {
			assert.Equal(t, int64(400), capErr.Available)
			capCount++
		}
	}
	assert.Equal(t, 1, okCount, "exactly one create must win")
	assert.Equal(t, 1, capCount, "the other must fail with a capacity error")

	cap, err := svc.GetShowCapacity(context.Background(), sc, "show-1")
	require.NoError(t, err)
	assert.LessOrEqual(t, cap.Allocated, cap.Total)
	assert.Equal(t, int64(600), cap.Allocated)
}

func TestOfferEventsPublished(t *testing.T) {
	store := newFakeOfferStore()
	store.addShow("show-1", 1, 1000)
	events := &fakeEvents{}
	svc := NewAllocationService(store, events)
	sc := tenant.ForTenant(1)
	ctx := context.Background()

	o, err := svc.CreateOffer(ctx, sc, "show-1", "GA", 2500, 100)
	require.NoError(t, err)
	_, err = svc.UpdateOffer(ctx, sc, o.PublicID, "GA", 2600, 150)
	require.NoError(t, err)

	require.Len(t, events.created, 1)
	assert.Equal(t, o.PublicID, events.created[0].OfferID)
	assert.Equal(t, "show-1", events.created[0].ShowID)
	assert.Equal(t, uint64(1), events.created[0].TenantID)
	require.Len(t, events.updated, 1)
	assert.Equal(t, "show-1", events.updated[0].ShowID)
	assert.Equal(t, int64(150), events.updated[0].TicketCount)
}
