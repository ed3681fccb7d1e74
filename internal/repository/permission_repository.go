package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/anshulagrawal2902/MSS/internal/model"
)

// PermissionRepo is a thin query layer over the permissions table.
// It never caches: authorization checks re-query on every action
// because access levels can change between actions.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

const permissionCols = "id,u_id,op_id,access_level"

// Get returns the permission of one user on one operation, or
// ErrNotFound when no grant exists.
func (r *PermissionRepo) Get(ctx context.Context, userID, opID uint64) (model.Permission, error) {
	var p model.Permission
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+permissionCols+" FROM permissions WHERE u_id=? AND op_id=? LIMIT 1",
		userID, opID).Scan(&p.ID, &p.UserID, &p.OpID, &p.AccessLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// ListByUser returns every grant a user holds.
func (r *PermissionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Permission, error) {
	return r.list(ctx, "SELECT "+permissionCols+" FROM permissions WHERE u_id=?", userID)
}

// ListByOperation returns every grant on an operation.
func (r *PermissionRepo) ListByOperation(ctx context.Context, opID uint64) ([]model.Permission, error) {
	return r.list(ctx, "SELECT "+permissionCols+" FROM permissions WHERE op_id=?", opID)
}

func (r *PermissionRepo) list(ctx context.Context, q string, arg any) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []model.Permission
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.UserID, &p.OpID, &p.AccessLevel); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Upsert grants or updates a user's access level on an operation.
func (r *PermissionRepo) Upsert(ctx context.Context, userID, opID uint64, level model.AccessLevel) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO permissions (u_id, op_id, access_level) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE access_level=VALUES(access_level)`,
		userID, opID, level)
	return err
}

// Delete revokes one grant.  The creator's grant is protected at the
// store level: attempting to revoke it returns ErrForbidden.
func (r *PermissionRepo) Delete(ctx context.Context, userID, opID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM permissions WHERE u_id=? AND op_id=? AND access_level<>'creator'", userID, opID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, userID, opID); err != nil {
			return err
		}
		return ErrForbidden
	}
	return nil
}

// DeleteBulk revokes the grants of several users on one operation and
// returns the user ids actually removed.  The creator's row is never
// touched.
func (r *PermissionRepo) DeleteBulk(ctx context.Context, opID uint64, userIDs []uint64) ([]uint64, error) {
	removed := make([]uint64, 0, len(userIDs))
	for _, uid := range userIDs {
		res, err := r.DB.ExecContext(ctx,
			"DELETE FROM permissions WHERE u_id=? AND op_id=? AND access_level<>'creator'", uid, opID)
		if err != nil {
			return removed, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			removed = append(removed, uid)
		}
	}
	return removed, nil
}
