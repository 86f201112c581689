package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/ecomm-delivery-backend/internal/metrics"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/queue"
	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
)

// DefaultOTPTTL is the lifetime of a code when none is configured.
const DefaultOTPTTL = 5 * time.Minute

const resetPasswordSubject = "Reset Password"

// OTPDeps lists the collaborators of OTPService.  Length and TTL fall
// back to six digits and DefaultOTPTTL.
type OTPDeps struct {
	Users  UserStore
	Codes  OTPStore
	Hasher Hasher
	Mailer Mailer
	Events EventPublisher
	Length int
	TTL    time.Duration
}

// OTPService issues and checks one-time codes.  Codes are stored hashed.
// Issuing is additive and checking does not consume: a code stays valid
// until it expires, even after a successful match.
type OTPService struct {
	users  UserStore
	codes  OTPStore
	hasher Hasher
	mailer Mailer
	events EventPublisher
	length int
	ttl    time.Duration
	now    func() time.Time
}

// NewOTPService builds an OTPService from d.
func NewOTPService(d OTPDeps) *OTPService {
	ttl := d.TTL
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPService{
		users:  d.Users,
		codes:  d.Codes,
		hasher: d.Hasher,
		mailer: d.Mailer,
		events: publisherOrNoop(d.Events),
		length: d.Length,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue stores a new hashed code for (userID, purpose) and returns the
// plain code.
func (s *OTPService) Issue(ctx context.Context, userID uint64, purpose model.OTPPurpose) (string, error) {
	code, err := utils.GenerateOTP(s.length)
	if err != nil {
		metrics.OTPOperations.WithLabelValues("issue", "error").Inc()
		return "", err
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		metrics.OTPOperations.WithLabelValues("issue", "error").Inc()
		return "", err
	}
	err = s.codes.Insert(ctx, model.OTP{
		UserID:    userID,
		Purpose:   purpose,
		Code:      hash,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	})
	if err != nil {
		metrics.OTPOperations.WithLabelValues("issue", "error").Inc()
		return "", fmt.Errorf("store otp: %w", err)
	}
	metrics.OTPOperations.WithLabelValues("issue", "ok").Inc()
	return code, nil
}

// Verify reports whether code matches any unexpired code of (userID,
// purpose).  Having no unexpired code is a mismatch, not an error.
func (s *OTPService) Verify(ctx context.Context, code string, userID uint64, purpose model.OTPPurpose) (bool, error) {
	if code == "" {
		metrics.OTPOperations.WithLabelValues("verify", "mismatch").Inc()
		return false, nil
	}
	hashes, err := s.codes.ActiveCodes(ctx, userID, purpose, s.now().UTC())
	if err != nil {
		metrics.OTPOperations.WithLabelValues("verify", "error").Inc()
		return false, err
	}
	for _, h := range hashes {
		if s.hasher.Verify(h, code) {
			metrics.OTPOperations.WithLabelValues("verify", "match").Inc()
			return true, nil
		}
	}
	metrics.OTPOperations.WithLabelValues("verify", "mismatch").Inc()
	return false, nil
}

// RequestPasswordReset issues a password reset code for the account with
// the given email and mails it.  The code is stored before the mail is
// sent, so a mail failure leaves a valid but undelivered code.
func (s *OTPService) RequestPasswordReset(ctx context.Context, email string) error {
	email = repository.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := s.Issue(ctx, u.ID, model.OTPPasswordReset)
	if err != nil {
		return err
	}
	if err := s.mailer.SendMail(ctx, u.Email, resetPasswordSubject, code); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	s.events.PublishAsync(queue.NewAccountEvent(queue.EventOTPIssued, model.ActorCustomer, u.ID, u.Email))
	return nil
}

// ResetPassword replaces the password of userID when code is a valid
// password reset code.
func (s *OTPService) ResetPassword(ctx context.Context, userID uint64, code, newPassword string) error {
	if code == "" || newPassword == "" {
		return fmt.Errorf("%w: otp and new_password are required", ErrValidation)
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}
	ok, err := s.Verify(ctx, code, userID, model.OTPPasswordReset)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
