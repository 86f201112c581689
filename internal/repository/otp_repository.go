package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

// OTPRepo persists hashed one-time codes.  Rows are only ever inserted;
// expired rows are left for an external cleanup job.
type OTPRepo struct{ db *sql.DB }

// NewOTPRepo returns an OTPRepo over db.
func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{db: db} }

// Insert stores a new code row.  Earlier rows for the same user and purpose
// are kept.
func (r *OTPRepo) Insert(ctx context.Context, o model.OTP) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO otp (user_id, type_id, code, expired_at) VALUES (?, ?, ?, ?)",
		o.UserID, uint8(o.Purpose), o.Code, o.ExpiresAt.UTC())
	return err
}

// ActiveCodes returns the hashes of every code for (userID, purpose) that
// is still valid at now, newest first.
func (r *OTPRepo) ActiveCodes(ctx context.Context, userID uint64, purpose model.OTPPurpose, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code FROM otp
		 WHERE user_id = ? AND type_id = ? AND expired_at > ?
		 ORDER BY expired_at DESC`,
		userID, uint8(purpose), now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
