package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

const userColumns = "user_id, full_name, password, picture, primary_address, mobile_number, email, role"

// UserRepo owns the `users` table.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a UserRepo over db.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// NormalizeEmail is applied to every email before it reaches SQL.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts u (with an already hashed password) and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	if u.Role == "" {
		u.Role = model.RoleCustomer
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (full_name, password, picture, primary_address, mobile_number, email, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.FullName, u.PasswordHash, u.Picture, u.PrimaryAddress, u.MobileNumber, NormalizeEmail(u.Email), u.Role)
	if err != nil {
		if isDuplicate(err) {
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

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id = ? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", NormalizeEmail(email)))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FullName, &u.PasswordHash, &u.Picture, &u.PrimaryAddress, &u.MobileNumber, &u.Email, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// EmailExists reports whether a user already registered with email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", NormalizeEmail(email)).Scan(&n)
	return n > 0, err
}

// Exists reports whether a user with id exists.
func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE user_id = ?", id).Scan(&n)
	return n > 0, err
}

// UpdateProfile overwrites the profile fields of a user.  ErrNotFound is
// returned when no row matches id.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p model.UserProfile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, picture = ?, primary_address = ?, mobile_number = ?
		 WHERE user_id = ?`,
		p.FullName, p.Picture, p.PrimaryAddress, p.MobileNumber, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password = ? WHERE user_id = ?", hash, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// Delete removes a user together with the rows that reference it (one-time
// codes and addresses) inside a single transaction.  Any failure rolls the
// whole operation back; ErrNotFound is returned when the user is absent.
func (r *UserRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var n int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE user_id = ? FOR UPDATE", id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM otp WHERE user_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM address WHERE user_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", id); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// expectRow turns a zero-row UPDATE into ErrNotFound.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
