// Package service holds the account, partner, address and one-time code
// workflows.  Services depend on the narrow interfaces below so that tests
// can swap the MySQL repositories, SMTP, S3, OpenCage and RabbitMQ for
// mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iliyamo/ecomm-delivery-backend/internal/geocode"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/queue"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidPassword is the customer login outcome for a wrong password.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidCredentials is the partner login outcome for an unknown
	// email or a wrong password; the two are not told apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOTP means no unexpired code for the user matched.
	ErrInvalidOTP = errors.New("invalid otp")
)

// UserStore persists customer accounts.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	UpdateProfile(ctx context.Context, id uint64, p model.UserProfile) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	Delete(ctx context.Context, id uint64) error
}

// PartnerStore persists delivery partner accounts.
type PartnerStore interface {
	Create(ctx context.Context, p model.DeliveryPartner) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.DeliveryPartner, error)
	GetByID(ctx context.Context, id uint64) (model.DeliveryPartner, error)
	UpdateProfile(ctx context.Context, id uint64, p model.PartnerProfile) error
	UpdateStatus(ctx context.Context, id uint64, status model.AvailabilityStatus) error
}

// AddressStore persists shipping addresses.  Update is scoped to the
// owning user.
type AddressStore interface {
	Create(ctx context.Context, a model.Address) (uint64, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Address, error)
	GetByID(ctx context.Context, id uint64) (model.Address, error)
	Update(ctx context.Context, id, userID uint64, in model.AddressInput) error
}

// OTPStore keeps hashed one-time codes.  Rows are only ever added.
type OTPStore interface {
	Insert(ctx context.Context, o model.OTP) error
	ActiveCodes(ctx context.Context, userID uint64, purpose model.OTPPurpose, now time.Time) ([]string, error)
}

// Hasher is satisfied by utils.PasswordHasher.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(digest, plain string) bool
}

// TokenIssuer is satisfied by *utils.TokenService.
type TokenIssuer interface {
	Issue(actor model.ActorType, id uint64, email string) (utils.AccessToken, error)
}

// Mailer delivers plain-text mail.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// PictureUploader stores a profile picture and returns its public URL.
type PictureUploader interface {
	UploadPicture(ctx context.Context, filename string, r io.Reader, contentType string) (string, error)
}

// Geocoder resolves a free-text locality to coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (geocode.Coordinates, error)
}

// EventPublisher is satisfied by *queue.Publisher.  Publishing is fire and
// forget: it never fails the calling operation.
type EventPublisher interface {
	PublishAsync(ev queue.AccountEvent)
}

// Upload is an optional file attached to a request.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(queue.AccountEvent) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// checkPasswordLength rejects passwords bcrypt would refuse to hash.
func checkPasswordLength(password string) error {
	if len(password) > utils.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, utils.MaxPasswordBytes)
	}
	return nil
}
