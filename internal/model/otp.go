package model

import "time"

// OTPPurpose discriminates what a one-time code authorizes.  Values are
// persisted in otp.type_id.
type OTPPurpose uint8

const (
	OTPPasswordReset OTPPurpose = 1
)

// OTP models a row of the `otp` table.  Code holds the bcrypt hash of the
// code, never the plain value.
type OTP struct {
	ID        uint64
	UserID    uint64
	Purpose   OTPPurpose
	Code      string
	ExpiresAt time.Time
}
