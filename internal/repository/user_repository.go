package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/anshulagrawal2902/MSS/internal/model"
	"github.com/anshulagrawal2902/MSS/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userCols = "id,username,email,password_hash,registered_on,confirmed,confirmed_on"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var confirmedOn sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RegisteredOn, &u.Confirmed, &confirmedOn)
	if confirmedOn.Valid {
		t := confirmedOn.Time
		u.ConfirmedOn = &t
	}
	return u, err
}

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, registered_on) VALUES (?,?,?,?)",
		username, email, hash, time.Now().UTC())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// IsConfirmed reports whether the account exists and is confirmed.
func (r *UserRepo) IsConfirmed(ctx context.Context, id uint64) (bool, error) {
	var confirmed bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT confirmed FROM users WHERE id=? LIMIT 1", id).Scan(&confirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return confirmed, err
}

// Confirm marks an account as confirmed.  Idempotent.
func (r *UserRepo) Confirm(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET confirmed=1, confirmed_on=COALESCE(confirmed_on, UTC_TIMESTAMP()) WHERE id=?", id)
	return err
}

// Delete removes a user.  Permission and token rows cascade in the
// database.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
