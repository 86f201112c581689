package model

// Address mirrors the `address` table.  Latitude and Longitude are filled
// by the geocoder when the row is created and are not recomputed on update.
type Address struct {
	ID           uint64  `json:"address_id"`
	UserID       uint64  `json:"user_id"`
	FullName     string  `json:"full_name"`
	MobileNumber string  `json:"mobile_number"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	Pincode      string  `json:"pincode"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// AddressInput is the caller supplied part of an address.
type AddressInput struct {
	FullName     string
	MobileNumber string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
	Pincode      string
}
