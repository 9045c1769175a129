// offer_repository.go contains data access for ticket offers and the
// capacity-checked write path. The invariant is that the ticket counts
// of all offers on a show never sum past the show's ticket_count. A
// naive read-then-insert admits a race where two concurrent requests
// both observe enough remaining capacity; the writes here close it by
// taking a row lock on the show (SELECT ... FOR UPDATE) inside the same
// transaction that re-reads the allocated sum and performs the write,
// so concurrent writers on one show serialize and the later one
// recomputes against the committed state.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stagepass/stagepass/internal/tenant"
)

// Offer is a priced allocation of tickets on a single show. The owning
// show is set at creation and never reassigned; tenant ownership derives
// through show and venue.
type Offer struct {
	ID          uint64
	PublicID    string
	ShowID      uint64
	Name        string
	PriceCents  int64 // unit price in cents, positive
	TicketCount int64 // tickets allocated to this offer, positive
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// ShowPublicID is the owning show's external id. The capacity write
	// paths populate it for event payloads; plain reads leave it empty.
	ShowPublicID string
}

// ShowCapacity is the result of a capacity read: the ceiling, the sum
// over current offers, and what remains.
type ShowCapacity struct {
	Total     int64
	Allocated int64
	Available int64
}

// OfferRepo manages persistence for ticket offers.
type OfferRepo struct {
	db *sql.DB
}

// NewOfferRepo constructs an OfferRepo with the given DB handle.
func NewOfferRepo(db *sql.DB) *OfferRepo {
	return &OfferRepo{db: db}
}

const offerCols = `o.id, o.public_id, o.show_id, o.name, o.price_cents, o.ticket_count, o.created_at, o.updated_at`

// GetByPublicID retrieves an offer by its external id. The query joins
// through show and venue so the tenant predicate applies; absent and
// cross-tenant offers are both ErrOfferNotFound.
func (r *OfferRepo) GetByPublicID(ctx context.Context, sc tenant.Scope, publicID string) (*Offer, error) {
	cond, args := tenantCond(sc)
	q := `SELECT ` + offerCols + ` FROM ticket_offers o` + joinOfferShowVenue + ` WHERE o.public_id = ?` + cond
	var o Offer
	err := r.db.QueryRowContext(ctx, q, append([]any{publicID}, args...)...).Scan(
		&o.ID, &o.PublicID, &o.ShowID, &o.Name, &o.PriceCents, &o.TicketCount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ListByShow returns all offers on a show ordered by creation. The show
// id comes from a scoped lookup but the tenant predicate is applied
// again through the joins.
func (r *OfferRepo) ListByShow(ctx context.Context, sc tenant.Scope, showID uint64) ([]Offer, error) {
	cond, args := tenantCond(sc)
	q := `SELECT ` + offerCols + ` FROM ticket_offers o` + joinOfferShowVenue + ` WHERE o.show_id = ?` + cond + ` ORDER BY o.id ASC`
	rows, err := r.db.QueryContext(ctx, q, append([]any{showID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Offer{}
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.ID, &o.PublicID, &o.ShowID, &o.Name, &o.PriceCents, &o.TicketCount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateWithCapacity inserts a new offer on the named show after
// verifying, under a show-row lock, that the requested ticket count fits
// the remaining capacity. On success the passed Offer is populated with
// its generated ids and timestamps. Returns ErrShowNotFound when the
// show is absent or cross-tenant, or *CapacityError carrying the
// remaining count when the request does not fit. Any error rolls the
// transaction back in full; no partial offer is ever visible.
func (r *OfferRepo) CreateWithCapacity(ctx context.Context, sc tenant.Scope, showPublicID string, o *Offer) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	showID, total, err := lockShowByPublicID(ctx, tx, sc, showPublicID)
	if err != nil {
		return err
	}
	allocated, err := sumOffers(ctx, tx, showID, 0)
	if err != nil {
		return err
	}
	available := total - allocated
	if o.TicketCount > available {
		return &CapacityError{Available: available}
	}

	pid, err := NewPublicID()
	if err != nil {
		return err
	}
	const ins = `INSERT INTO ticket_offers (public_id, show_id, name, price_cents, ticket_count) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, pid, showID, o.Name, o.PriceCents, o.TicketCount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.PublicID = pid
	o.ShowID = showID
	const sel = `SELECT ` + offerCols + ` FROM ticket_offers o WHERE o.id = ?`
	if err := tx.QueryRowContext(ctx, sel, o.ID).Scan(
		&o.ID, &o.PublicID, &o.ShowID, &o.Name, &o.PriceCents, &o.TicketCount, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return err
	}
	o.ShowPublicID = showPublicID
	return nil
}

// UpdateWithCapacity replaces an offer's name, price and ticket count
// after verifying the new count fits the capacity left by the *other*
// offers on the show; the edited offer's own allocation is being
// replaced, not added to, so it is excluded from the allocated sum.
// Offer identity and the owning show are immutable. Returns
// ErrOfferNotFound when the offer is absent or cross-tenant, or
// *CapacityError when the new count does not fit.
func (r *OfferRepo) UpdateWithCapacity(ctx context.Context, sc tenant.Scope, offerPublicID, name string, priceCents, count int64) (o *Offer, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// Resolving the offer with FOR UPDATE locks the examined rows of the
	// joined show as well, which is the serialization point shared with
	// CreateWithCapacity.
	cond, args := tenantCond(sc)
	q := `SELECT o.id, o.show_id, s.public_id, s.ticket_count FROM ticket_offers o` + joinOfferShowVenue + ` WHERE o.public_id = ?` + cond + ` FOR UPDATE`
	var offerID, showID uint64
	var showPID string
	var total int64
	err = tx.QueryRowContext(ctx, q, append([]any{offerPublicID}, args...)...).Scan(&offerID, &showID, &showPID, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrOfferNotFound
		}
		return nil, err
	}

	others, err := sumOffers(ctx, tx, showID, offerID)
	if err != nil {
		return nil, err
	}
	available := total - others
	if count > available {
		err = &CapacityError{Available: available}
		return nil, err
	}

	const upd = `UPDATE ticket_offers SET name = ?, price_cents = ?, ticket_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err = tx.ExecContext(ctx, upd, name, priceCents, count, offerID); err != nil {
		return nil, err
	}
	o = &Offer{}
	const sel = `SELECT ` + offerCols + ` FROM ticket_offers o WHERE o.id = ?`
	err = tx.QueryRowContext(ctx, sel, offerID).Scan(
		&o.ID, &o.PublicID, &o.ShowID, &o.Name, &o.PriceCents, &o.TicketCount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.ShowPublicID = showPID
	return o, nil
}

// Capacity reads a show's total, allocated and available counts without
// taking locks. Available never goes negative when the write paths are
// the only mutators.
func (r *OfferRepo) Capacity(ctx context.Context, sc tenant.Scope, showPublicID string) (*ShowCapacity, error) {
	cond, args := tenantCond(sc)
	q := `SELECT s.ticket_count, COALESCE(SUM(o.ticket_count), 0)
          FROM shows s` + joinShowVenue + `
          LEFT JOIN ticket_offers o ON o.show_id = s.id
          WHERE s.public_id = ?` + cond + `
          GROUP BY s.id, s.ticket_count`
	var c ShowCapacity
	err := r.db.QueryRowContext(ctx, q, append([]any{showPublicID}, args...)...).Scan(&c.Total, &c.Allocated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	c.Available = c.Total - c.Allocated
	return &c, nil
}

// lockShowByPublicID resolves a show under the scope and takes the row
// lock that serializes capacity-changing writes on it.
func lockShowByPublicID(ctx context.Context, tx *sql.Tx, sc tenant.Scope, publicID string) (uint64, int64, error) {
	cond, args := tenantCond(sc)
	q := `SELECT s.id, s.ticket_count FROM shows s` + joinShowVenue + ` WHERE s.public_id = ?` + cond + ` FOR UPDATE`
	var id uint64
	var total int64
	err := tx.QueryRowContext(ctx, q, append([]any{publicID}, args...)...).Scan(&id, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrShowNotFound
		}
		return 0, 0, err
	}
	return id, total, nil
}

// sumOffers totals the ticket counts on a show inside the caller's
// transaction, optionally excluding one offer (the one being edited).
func sumOffers(ctx context.Context, tx *sql.Tx, showID, excludeOfferID uint64) (int64, error) {
	const q = `SELECT COALESCE(SUM(ticket_count), 0) FROM ticket_offers WHERE show_id = ? AND id <> ?`
	var sum int64
	if err := tx.QueryRowContext(ctx, q, showID, excludeOfferID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}
