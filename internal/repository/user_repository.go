package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/taskboard/internal/model"
)

const userColumns = "id, name, email, password_hash, provider, provider_id, avatar, created_at, updated_at"

// UserRepo is the credential store: it persists accounts and answers the
// lookups needed by password login and OAuth resolution.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Provider,
		&u.ProviderID, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// now returns the current time at the precision stored by both dialects.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Create inserts u and fills its ID and timestamps.  Password accounts set
// PasswordHash; OAuth accounts set Provider and ProviderID instead.  A
// clash on email or (provider, provider_id) returns ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	ts := now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, provider, provider_id, avatar, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Provider, u.ProviderID, u.Avatar, ts, ts)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt, u.UpdatedAt = ts, ts
	return nil
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return scanUser(row)
}

// FindByEmailOrProvider returns the first account, by id, whose email
// matches or which is already linked to (provider, providerID).  Both
// conditions are evaluated in a single query.
func (r *UserRepo) FindByEmailOrProvider(ctx context.Context, email, provider, providerID string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE email = ? OR (provider = ? AND provider_id = ?)
		 ORDER BY id LIMIT 1`,
		email, provider, providerID)
	return scanUser(row)
}

// LinkProvider attaches an OAuth identity to an account that has none yet.
// It reports false when the account already had a provider, in which case
// nothing is changed.  A clash with another account's identity returns
// ErrDuplicate.
func (r *UserRepo) LinkProvider(ctx context.Context, id uint64, provider, providerID string, avatar *string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET provider = ?, provider_id = ?, avatar = ?, updated_at = ?
		 WHERE id = ? AND provider IS NULL`,
		provider, providerID, avatar, now(), id)
	if err != nil {
		if isDuplicate(err) {
			return false, ErrDuplicate
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
