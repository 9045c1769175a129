// Package repository contains data access logic for the tenant registry.
// Tenants are the isolation boundary: every other entity belongs to
// exactly one tenant, directly (venues, acts) or transitively (shows,
// ticket offers). Tenant rows themselves are only written through
// administrative provisioning.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Tenant is one provisioned organization. Slug is the human-readable
// handle used in administrative tooling; IsActive gates request
// authentication for the whole tenant.
type Tenant struct {
	ID        uint64
	PublicID  string
	Slug      string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantRepo manages persistence for tenants.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo constructs a TenantRepo with the given DB handle.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

// Create inserts a new tenant and populates the generated id, public id
// and DB-default fields on the passed struct. It is only reachable from
// admin-scoped provisioning endpoints.
func (r *TenantRepo) Create(ctx context.Context, t *Tenant) error {
	pid, err := NewPublicID()
	if err != nil {
		return err
	}
	const q = `INSERT INTO tenants (public_id, slug, name, is_active) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, pid, t.Slug, t.Name, t.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.PublicID = pid
	// Fetch the freshly inserted row to populate created_at/updated_at.
	const sel = `SELECT id, public_id, slug, name, is_active, created_at, updated_at FROM tenants WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(
		&t.ID, &t.PublicID, &t.Slug, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
}

// GetByID retrieves a tenant by its internal id. The auth middleware
// uses this to confirm the tenant named in a token is still active.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (*Tenant, error) {
	const q = `SELECT id, public_id, slug, name, is_active, created_at, updated_at FROM tenants WHERE id = ?`
	var t Tenant
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.PublicID, &t.Slug, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetBySlug retrieves a tenant by its slug.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	const q = `SELECT id, public_id, slug, name, is_active, created_at, updated_at FROM tenants WHERE slug = ?`
	var t Tenant
	err := r.db.QueryRowContext(ctx, q, slug).Scan(
		&t.ID, &t.PublicID, &t.Slug, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}
