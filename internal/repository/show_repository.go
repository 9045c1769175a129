// show_repository.go contains data access for shows. A show schedules an
// act at a venue with a fixed total ticket count, the capacity ceiling
// for all ticket offers on that show. Shows carry no tenant column:
// tenant ownership is resolved by joining through the owning venue on
// every query, so a show whose venue belongs to another tenant scans as
// no rows.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stagepass/stagepass/internal/tenant"
)

// Show is a scheduled performance. StartsAt is stored as UTC; the wall
// clock shown to users is derived from the venue's timezone.
type Show struct {
	ID          uint64
	PublicID    string
	VenueID     uint64
	ActID       uint64
	TicketCount int64 // capacity ceiling, positive
	StartsAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NearbyShow is a row of the scheduling-conflict query: another show at
// the same venue inside the comparison window.
type NearbyShow struct {
	ShowPublicID string
	ActName      string
	StartsAt     time.Time
}

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

const showCols = `s.id, s.public_id, s.venue_id, s.act_id, s.ticket_count, s.starts_at, s.created_at, s.updated_at`

// Create inserts a new show. VenueID and ActID must have been resolved
// through scoped venue/act lookups beforehand, which is what confines
// the insert to the caller's tenant; the ids never come from request
// input directly.
func (r *ShowRepo) Create(ctx context.Context, s *Show) error {
	pid, err := NewPublicID()
	if err != nil {
		return err
	}
	const q = `INSERT INTO shows (public_id, venue_id, act_id, ticket_count, starts_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, pid, s.VenueID, s.ActID, s.TicketCount, s.StartsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.PublicID = pid
	const sel = `SELECT ` + showCols + ` FROM shows s WHERE s.id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(
		&s.ID, &s.PublicID, &s.VenueID, &s.ActID, &s.TicketCount, &s.StartsAt, &s.CreatedAt, &s.UpdatedAt,
	)
}

// GetByPublicID retrieves a show by its external id, joined through its
// venue so the tenant predicate applies. Absent and cross-tenant shows
// are both ErrShowNotFound.
func (r *ShowRepo) GetByPublicID(ctx context.Context, sc tenant.Scope, publicID string) (*Show, error) {
	cond, args := tenantCond(sc)
	q := `SELECT ` + showCols + ` FROM shows s` + joinShowVenue + ` WHERE s.public_id = ?` + cond
	var s Show
	err := r.db.QueryRowContext(ctx, q, append([]any{publicID}, args...)...).Scan(
		&s.ID, &s.PublicID, &s.VenueID, &s.ActID, &s.TicketCount, &s.StartsAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByVenue returns all shows at a venue ordered by start time. The
// venue id comes from a scoped venue lookup, but the tenant predicate is
// applied again here rather than trusting the caller.
func (r *ShowRepo) ListByVenue(ctx context.Context, sc tenant.Scope, venueID uint64) ([]Show, error) {
	cond, args := tenantCond(sc)
	q := `SELECT ` + showCols + ` FROM shows s` + joinShowVenue + ` WHERE s.venue_id = ?` + cond + ` ORDER BY s.starts_at ASC`
	rows, err := r.db.QueryContext(ctx, q, append([]any{venueID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Show{}
	for rows.Next() {
		var s Show
		if err := rows.Scan(&s.ID, &s.PublicID, &s.VenueID, &s.ActID, &s.TicketCount, &s.StartsAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindInWindow returns other shows at the venue whose start instant lies
// inside [from, to], inclusive on both ends, ordered ascending by start
// time. Joined to acts for display names. excludeShowID skips the show
// being edited; pass 0 when scheduling a new show. An empty result is a
// slice, not an error.
func (r *ShowRepo) FindInWindow(ctx context.Context, sc tenant.Scope, venueID, excludeShowID uint64, from, to time.Time) ([]NearbyShow, error) {
	cond, args := tenantCond(sc)
	q := `SELECT s.public_id, a.name, s.starts_at
          FROM shows s` + joinShowVenue + `
          JOIN acts a ON a.id = s.act_id
          WHERE s.venue_id = ? AND s.id <> ? AND s.starts_at >= ? AND s.starts_at <= ?` + cond + `
          ORDER BY s.starts_at ASC`
	exec := append([]any{venueID, excludeShowID, from.UTC(), to.UTC()}, args...)
	rows, err := r.db.QueryContext(ctx, q, exec...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []NearbyShow{}
	for rows.Next() {
		var n NearbyShow
		if err := rows.Scan(&n.ShowPublicID, &n.ActName, &n.StartsAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
