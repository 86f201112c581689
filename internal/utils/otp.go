package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultOTPLength is used when a non-positive length is requested.
const DefaultOTPLength = 6

var ten = big.NewInt(10)

// GenerateOTP returns a cryptographically random numeric code of the given
// length.  Leading zeros are kept, so every code has exactly length digits.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = DefaultOTPLength
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
