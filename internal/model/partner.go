package model

// AvailabilityStatus is the enum-like status string of a delivery partner.
type AvailabilityStatus string

const (
	StatusAvailable    AvailabilityStatus = "available"
	StatusNotAvailable AvailabilityStatus = "not available"
)

// Valid reports whether s is one of the known statuses.
func (s AvailabilityStatus) Valid() bool {
	return s == StatusAvailable || s == StatusNotAvailable
}

// DeliveryPartner mirrors the `delivery_partners` table.  Availability is
// changed only through the dedicated status update; the profile update
// never touches it.
type DeliveryPartner struct {
	ID                 uint64             `json:"partner_id"`
	Name               string             `json:"name"`
	ContactNumber      string             `json:"contact_number"`
	Email              string             `json:"email"`
	VehicleType        string             `json:"vehicle_type"`
	VehicleNumber      string             `json:"vehicle_number"`
	Pincode            string             `json:"pincode"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	PasswordHash       string             `json:"-"`
	LastAssignedOrder  *uint64            `json:"last_assigned_order"` // nil until the first assignment
}

// PartnerProfile carries the fields editable by the partner.
type PartnerProfile struct {
	Name          string
	ContactNumber string
	Email         string
	VehicleType   string
	VehicleNumber string
	Pincode       string
}
