// Package service holds the business operations that sit between the
// HTTP handlers and the repositories: capacity-checked offer allocation,
// scheduling-conflict detection, and event publishing. Services consume
// repository behavior through interfaces declared here so tests can
// substitute fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stagepass/stagepass/internal/queue"
	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/tenant"
)

// ErrInvalidArgument marks a field-level contract violation (empty or
// oversized name, non-positive price or count). Wrapped values carry the
// specific field message; match with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// maxOfferNameLen bounds offer names.
const maxOfferNameLen = 100

// OfferStore is the repository surface the allocation engine needs. The
// *WithCapacity methods must make the capacity check and the write
// atomic with respect to concurrent writers on the same show.
type OfferStore interface {
	CreateWithCapacity(ctx context.Context, sc tenant.Scope, showPublicID string, o *repository.Offer) error
	UpdateWithCapacity(ctx context.Context, sc tenant.Scope, offerPublicID, name string, priceCents, count int64) (*repository.Offer, error)
	Capacity(ctx context.Context, sc tenant.Scope, showPublicID string) (*repository.ShowCapacity, error)
}

// OfferEvents is the publishing surface for offer lifecycle events.
type OfferEvents interface {
	PublishOfferCreated(ctx context.Context, ev queue.OfferCreatedEvent) error
	PublishOfferUpdated(ctx context.Context, ev queue.OfferUpdatedEvent) error
}

// AllocationService validates and commits ticket-offer writes against
// show capacity. All tenant confinement happens in the store through the
// scope parameter; the service adds field validation and event fanout.
type AllocationService struct {
	store  OfferStore
	events OfferEvents // may be nil; events are then skipped
}

// NewAllocationService constructs the allocation engine. events may be
// nil when no broker is configured.
func NewAllocationService(store OfferStore, events OfferEvents) *AllocationService {
	if store == nil {
		panic("nil store passed to NewAllocationService")
	}
	return &AllocationService{store: store, events: events}
}

// CreateOffer creates a ticket offer on the named show. The requested
// count must fit the show's remaining capacity at commit time; when it
// does not, the returned *repository.CapacityError reports how many
// tickets were still available. Cross-tenant and missing shows both
// return repository.ErrShowNotFound.
func (s *AllocationService) CreateOffer(ctx context.Context, sc tenant.Scope, showKey, name string, priceCents, count int64) (*repository.Offer, error) {
	name, err := validateOfferFields(name, priceCents, count)
	if err != nil {
		return nil, err
	}
	o := &repository.Offer{Name: name, PriceCents: priceCents, TicketCount: count}
	if err := s.store.CreateWithCapacity(ctx, sc, showKey, o); err != nil {
		return nil, err
	}
	if s.events != nil {
		// Best effort: the allocation already committed, a publish
		// failure is logged inside the publisher and ignored here.
		_ = s.events.PublishOfferCreated(ctx, queue.OfferCreatedEvent{
			OfferID:     o.PublicID,
			ShowID:      showKey,
			TenantID:    sc.TenantID(),
			Name:        o.Name,
			PriceCents:  o.PriceCents,
			TicketCount: o.TicketCount,
			CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	log.Printf("offer created: offer=%s show=%s count=%d %s", o.PublicID, showKey, o.TicketCount, sc)
	return o, nil
}

// UpdateOffer replaces an offer's name, price and ticket count. The new
// count must fit the capacity left by the other offers on the show; the
// edited offer's current allocation does not count against it because it
// is being replaced. Offer identity and owning show are immutable.
func (s *AllocationService) UpdateOffer(ctx context.Context, sc tenant.Scope, offerKey, name string, priceCents, count int64) (*repository.Offer, error) {
	name, err := validateOfferFields(name, priceCents, count)
	if err != nil {
		return nil, err
	}
	o, err := s.store.UpdateWithCapacity(ctx, sc, offerKey, name, priceCents, count)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		_ = s.events.PublishOfferUpdated(ctx, queue.OfferUpdatedEvent{
			OfferID:     o.PublicID,
			ShowID:      o.ShowPublicID,
			TenantID:    sc.TenantID(),
			Name:        o.Name,
			PriceCents:  o.PriceCents,
			TicketCount: o.TicketCount,
			UpdatedAt:   o.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	log.Printf("offer updated: offer=%s count=%d %s", o.PublicID, o.TicketCount, sc)
	return o, nil
}

// GetShowCapacity reads the show's total, allocated and available
// counts. Pure read, no locks.
func (s *AllocationService) GetShowCapacity(ctx context.Context, sc tenant.Scope, showKey string) (*repository.ShowCapacity, error) {
	return s.store.Capacity(ctx, sc, showKey)
}

// validateOfferFields checks the shared create/update field contract and
// returns the trimmed name.
func validateOfferFields(name string, priceCents, count int64) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > maxOfferNameLen {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidArgument, maxOfferNameLen)
	}
	if priceCents <= 0 {
		return "", fmt.Errorf("%w: price_cents must be positive", ErrInvalidArgument)
	}
	if count <= 0 {
		return "", fmt.Errorf("%w: ticket_count must be positive", ErrInvalidArgument)
	}
	return name, nil
}
