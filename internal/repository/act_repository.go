// act_repository.go holds the Act model and its repository. An act is a
// performing artist or group owned directly by a tenant; shows reference
// an act and a venue from the same tenant.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stagepass/stagepass/internal/tenant"
)

// Act is a performer owned by exactly one tenant.
type Act struct {
	ID        uint64
	PublicID  string
	TenantID  uint64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActRepo manages persistence for acts.
type ActRepo struct {
	db *sql.DB
}

// NewActRepo constructs an ActRepo with the given DB handle.
func NewActRepo(db *sql.DB) *ActRepo {
	return &ActRepo{db: db}
}

// actTenantCond scopes act queries. Acts carry the tenant column inline
// like venues, so the predicate targets the acts alias directly rather
// than joining through venues.
func actTenantCond(sc tenant.Scope) (string, []any) {
	if sc.IsAdmin() {
		return "", nil
	}
	return " AND a.tenant_id = ?", []any{sc.TenantID()}
}

// Create inserts a new act under the caller's tenant. Tenant scopes
// stamp their own tenant id; admin scopes must supply one.
func (r *ActRepo) Create(ctx context.Context, sc tenant.Scope, a *Act) error {
	if !sc.IsAdmin() {
		a.TenantID = sc.TenantID()
	}
	pid, err := NewPublicID()
	if err != nil {
		return err
	}
	const q = `INSERT INTO acts (public_id, tenant_id, name) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, pid, a.TenantID, a.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.PublicID = pid
	const sel = `SELECT a.id, a.public_id, a.tenant_id, a.name, a.created_at, a.updated_at FROM acts a WHERE a.id = ?`
	return r.db.QueryRowContext(ctx, sel, a.ID).Scan(&a.ID, &a.PublicID, &a.TenantID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
}

// GetByPublicID retrieves an act by its external id within the scope.
// Cross-tenant acts surface as ErrActNotFound.
func (r *ActRepo) GetByPublicID(ctx context.Context, sc tenant.Scope, publicID string) (*Act, error) {
	cond, args := actTenantCond(sc)
	q := `SELECT a.id, a.public_id, a.tenant_id, a.name, a.created_at, a.updated_at FROM acts a WHERE a.public_id = ?` + cond
	var a Act
	err := r.db.QueryRowContext(ctx, q, append([]any{publicID}, args...)...).Scan(
		&a.ID, &a.PublicID, &a.TenantID, &a.Name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List returns all acts visible to the scope ordered by name.
func (r *ActRepo) List(ctx context.Context, sc tenant.Scope) ([]Act, error) {
	cond, args := actTenantCond(sc)
	q := `SELECT a.id, a.public_id, a.tenant_id, a.name, a.created_at, a.updated_at FROM acts a WHERE 1=1` + cond + ` ORDER BY a.name ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Act{}
	for rows.Next() {
		var a Act
		if err := rows.Scan(&a.ID, &a.PublicID, &a.TenantID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateByPublicID renames an act visible to the scope. Returns
// ErrActNotFound when the row is absent or cross-tenant, ErrNoChange
// when the name is already set.
func (r *ActRepo) UpdateByPublicID(ctx context.Context, sc tenant.Scope, publicID, name string) error {
	cond, args := actTenantCond(sc)
	q := `UPDATE acts a SET a.name = ?, a.updated_at = CURRENT_TIMESTAMP
          WHERE a.public_id = ?` + cond + ` AND a.name <> ?`
	exec := append([]any{name, publicID}, args...)
	exec = append(exec, name)
	res, err := r.db.ExecContext(ctx, q, exec...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	qExists := `SELECT 1 FROM acts a WHERE a.public_id = ?` + cond + ` LIMIT 1`
	var one int
	if err := r.db.QueryRowContext(ctx, qExists, append([]any{publicID}, args...)...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrActNotFound
		}
		return err
	}
	return ErrNoChange
}
