// venue_repository.go holds the Venue model and its repository. A venue
// is the tenant-owned anchor of the ownership chain: shows derive their
// tenant through the venue, offers through show and venue. The venue's
// IANA timezone is what scheduling uses to resolve wall-clock inputs.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stagepass/stagepass/internal/tenant"
)

// Venue is a performance location owned by exactly one tenant.
type Venue struct {
	ID          uint64
	PublicID    string
	TenantID    uint64
	Name        string
	Address     *string  // optional street address
	Capacity    uint32   // seating capacity, informational (>= 0)
	Description string
	Latitude    *float64 // optional geographic point
	Longitude   *float64
	Timezone    string // IANA zone name, e.g. "America/Chicago"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VenueRepo manages persistence for venues.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueCols = `v.id, v.public_id, v.tenant_id, v.name, v.address, v.capacity, v.description, v.latitude, v.longitude, v.timezone, v.created_at, v.updated_at`

func scanVenue(row interface{ Scan(...any) error }, v *Venue) error {
	return row.Scan(
		&v.ID, &v.PublicID, &v.TenantID, &v.Name, &v.Address, &v.Capacity,
		&v.Description, &v.Latitude, &v.Longitude, &v.Timezone, &v.CreatedAt, &v.UpdatedAt,
	)
}

// Create inserts a new venue under the caller's tenant. For tenant
// scopes the tenant id is taken from the scope, overriding whatever the
// caller set; admin scopes must supply TenantID on the struct.
func (r *VenueRepo) Create(ctx context.Context, sc tenant.Scope, v *Venue) error {
	if !sc.IsAdmin() {
		v.TenantID = sc.TenantID()
	}
	pid, err := NewPublicID()
	if err != nil {
		return err
	}
	const q = `INSERT INTO venues (public_id, tenant_id, name, address, capacity, description, latitude, longitude, timezone)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, pid, v.TenantID, v.Name, v.Address, v.Capacity, v.Description, v.Latitude, v.Longitude, v.Timezone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	v.PublicID = pid
	const sel = `SELECT ` + venueCols + ` FROM venues v WHERE v.id = ?`
	return scanVenue(r.db.QueryRowContext(ctx, sel, v.ID), v)
}

// GetByPublicID retrieves a venue by its external id, confined to the
// caller's scope. A venue owned by another tenant scans as no rows and
// surfaces as ErrVenueNotFound, indistinguishable from a missing venue.
func (r *VenueRepo) GetByPublicID(ctx context.Context, sc tenant.Scope, publicID string) (*Venue, error) {
	cond, args := tenantCond(sc)
	q := `SELECT ` + venueCols + ` FROM venues v WHERE v.public_id = ?` + cond
	var v Venue
	err := scanVenue(r.db.QueryRowContext(ctx, q, append([]any{publicID}, args...)...), &v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// List returns all venues visible to the scope ordered by name. An empty
// result is a slice, not an error.
func (r *VenueRepo) List(ctx context.Context, sc tenant.Scope) ([]Venue, error) {
	cond, args := tenantCond(sc)
	q := `SELECT ` + venueCols + ` FROM venues v WHERE 1=1` + cond + ` ORDER BY v.name ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Venue{}
	for rows.Next() {
		var v Venue
		if err := scanVenue(rows, &v); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateByPublicID updates a venue's mutable fields when it is visible
// to the scope. Tenant ownership is immutable. When the row does not
// match the scope it returns ErrVenueNotFound; when the values are
// already identical it returns ErrNoChange. updated_at is set by the
// store, never by the caller.
func (r *VenueRepo) UpdateByPublicID(ctx context.Context, sc tenant.Scope, publicID string, v *Venue) error {
	cond, args := tenantCond(sc)
	q := `UPDATE venues v
          SET v.name = ?, v.address = ?, v.capacity = ?, v.description = ?, v.latitude = ?, v.longitude = ?, v.timezone = ?, v.updated_at = CURRENT_TIMESTAMP
          WHERE v.public_id = ?` + cond + `
            AND (v.name <> ? OR NOT (v.address <=> ?) OR v.capacity <> ? OR v.description <> ? OR NOT (v.latitude <=> ?) OR NOT (v.longitude <=> ?) OR v.timezone <> ?)`
	exec := []any{
		v.Name, v.Address, v.Capacity, v.Description, v.Latitude, v.Longitude, v.Timezone, // SET
		publicID,
	}
	exec = append(exec, args...)
	exec = append(exec, v.Name, v.Address, v.Capacity, v.Description, v.Latitude, v.Longitude, v.Timezone) // only if a field differs
	res, err := r.db.ExecContext(ctx, q, exec...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// Distinguish "not visible to this scope" from "no change".
	qExists := `SELECT 1 FROM venues v WHERE v.public_id = ?` + cond + ` LIMIT 1`
	var one int
	if err := r.db.QueryRowContext(ctx, qExists, append([]any{publicID}, args...)...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrVenueNotFound
		}
		return err
	}
	return ErrNoChange
}
