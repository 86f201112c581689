package model

// User represents a customer account as stored in the `users` table.
// PasswordHash never leaves the service layer; the json tag hides it
// from every response that embeds a User.
//
// Fields:
//  ID             – primary key identifier of the user.
//  FullName       – display name.
//  PasswordHash   – bcrypt hash of the password.
//  Picture        – URL of the profile picture in object storage.
//  PrimaryAddress – free-text primary address.
//  MobileNumber   – contact number.
//  Email          – unique email address.
//  Role           – role tag, "customer" unless changed by an operator.
type User struct {
	ID             uint64 `json:"user_id"`         // users.user_id
	FullName       string `json:"full_name"`       // users.full_name
	PasswordHash   string `json:"-"`               // users.password
	Picture        string `json:"picture"`         // users.picture
	PrimaryAddress string `json:"primary_address"` // users.primary_address
	MobileNumber   string `json:"mobile_number"`   // users.mobile_number
	Email          string `json:"email"`           // users.email
	Role           string `json:"role"`            // users.role
}

// RoleCustomer is the default role tag for newly registered users.
const RoleCustomer = "customer"

// UserProfile carries the mutable profile fields of a user.
type UserProfile struct {
	FullName       string
	Picture        string
	PrimaryAddress string
	MobileNumber   string
}
