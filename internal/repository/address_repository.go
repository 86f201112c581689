package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

const addressColumns = `address_id, user_id, full_name, mobile_number, address_line1, address_line2,
	city, state, country, pincode, latitude, longitude`

// AddressRepo owns the `address` table.  Callers must make sure the owning
// user exists before calling Create; the foreign key is the last line of
// defence, not the check.
type AddressRepo struct{ db *sql.DB }

// NewAddressRepo returns an AddressRepo over db.
func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{db: db} }

// Create inserts a fully populated address (coordinates included).
func (r *AddressRepo) Create(ctx context.Context, a model.Address) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO address
		 (user_id, full_name, mobile_number, address_line1, address_line2, city, state, country, pincode, latitude, longitude)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.FullName, a.MobileNumber, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.Country, a.Pincode, a.Latitude, a.Longitude)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns every address of a user ordered by id.  A user with no
// addresses yields an empty, non-nil slice.
func (r *AddressRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM address WHERE user_id = ? ORDER BY address_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FullName, &a.MobileNumber, &a.AddressLine1, &a.AddressLine2,
			&a.City, &a.State, &a.Country, &a.Pincode, &a.Latitude, &a.Longitude); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches one address.
func (r *AddressRepo) GetByID(ctx context.Context, id uint64) (model.Address, error) {
	var a model.Address
	err := r.db.QueryRowContext(ctx, "SELECT "+addressColumns+" FROM address WHERE address_id = ?", id).
		Scan(&a.ID, &a.UserID, &a.FullName, &a.MobileNumber, &a.AddressLine1, &a.AddressLine2,
			&a.City, &a.State, &a.Country, &a.Pincode, &a.Latitude, &a.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Address{}, ErrNotFound
	}
	return a, err
}

// Update rewrites the textual fields of an address owned by userID.  The
// stored coordinates are left untouched.  ErrNotFound covers both a missing
// address and an address owned by someone else.
func (r *AddressRepo) Update(ctx context.Context, id, userID uint64, in model.AddressInput) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE address
		 SET full_name = ?, mobile_number = ?, address_line1 = ?, address_line2 = ?,
		     city = ?, state = ?, country = ?, pincode = ?
		 WHERE address_id = ? AND user_id = ?`,
		in.FullName, in.MobileNumber, in.AddressLine1, in.AddressLine2,
		in.City, in.State, in.Country, in.Pincode, id, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}
