package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

const partnerColumns = `partner_id, name, contact_number, email, vehicle_type, vehicle_number,
	pincode, availability_status, password, last_assigned_order`

// PartnerRepo owns the `delivery_partners` table.
type PartnerRepo struct{ db *sql.DB }

// NewPartnerRepo returns a PartnerRepo over db.
func NewPartnerRepo(db *sql.DB) *PartnerRepo { return &PartnerRepo{db: db} }

// Create inserts a partner with an already hashed password.  New partners
// always start as "not available".
func (r *PartnerRepo) Create(ctx context.Context, p model.DeliveryPartner) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO delivery_partners
		 (name, contact_number, email, vehicle_type, vehicle_number, pincode, availability_status, password)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.ContactNumber, NormalizeEmail(p.Email), p.VehicleType, p.VehicleNumber, p.Pincode,
		string(model.StatusNotAvailable), p.PasswordHash)
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

// GetByEmail fetches a partner by normalized email.
func (r *PartnerRepo) GetByEmail(ctx context.Context, email string) (model.DeliveryPartner, error) {
	return scanPartner(r.db.QueryRowContext(ctx,
		"SELECT "+partnerColumns+" FROM delivery_partners WHERE email = ? LIMIT 1", NormalizeEmail(email)))
}

// GetByID fetches a partner by id.
func (r *PartnerRepo) GetByID(ctx context.Context, id uint64) (model.DeliveryPartner, error) {
	return scanPartner(r.db.QueryRowContext(ctx,
		"SELECT "+partnerColumns+" FROM delivery_partners WHERE partner_id = ? LIMIT 1", id))
}

func scanPartner(row *sql.Row) (model.DeliveryPartner, error) {
	var (
		p      model.DeliveryPartner
		status string
		last   sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.ContactNumber, &p.Email, &p.VehicleType, &p.VehicleNumber,
		&p.Pincode, &status, &p.PasswordHash, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DeliveryPartner{}, ErrNotFound
	}
	if err != nil {
		return model.DeliveryPartner{}, err
	}
	p.AvailabilityStatus = model.AvailabilityStatus(status)
	if last.Valid {
		v := uint64(last.Int64)
		p.LastAssignedOrder = &v
	}
	return p, nil
}

// UpdateProfile overwrites the editable partner fields.  A clash with
// another partner's email yields ErrEmailExists.
func (r *PartnerRepo) UpdateProfile(ctx context.Context, id uint64, p model.PartnerProfile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE delivery_partners
		 SET name = ?, contact_number = ?, email = ?, vehicle_type = ?, vehicle_number = ?, pincode = ?
		 WHERE partner_id = ?`,
		p.Name, p.ContactNumber, NormalizeEmail(p.Email), p.VehicleType, p.VehicleNumber, p.Pincode, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return expectRow(res)
}

// UpdateStatus changes only the availability status.
func (r *PartnerRepo) UpdateStatus(ctx context.Context, id uint64, status model.AvailabilityStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE delivery_partners SET availability_status = ? WHERE partner_id = ?", string(status), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}
