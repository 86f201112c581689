package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/ecomm-delivery-backend/internal/metrics"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/queue"
	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
)

// RegisterInput is a customer sign-up request.  Picture is optional.
type RegisterInput struct {
	FullName       string
	Password       string
	PrimaryAddress string
	MobileNumber   string
	Email          string
	Picture        *Upload
}

// UpdateProfileInput carries profile changes; empty fields keep their
// current value.
type UpdateProfileInput struct {
	FullName       string
	PrimaryAddress string
	MobileNumber   string
	Picture        *Upload // nil keeps the current picture
}

// AccountDeps lists the collaborators of AccountService.  Events may be nil.
type AccountDeps struct {
	Users    UserStore
	Hasher   Hasher
	Tokens   TokenIssuer
	Pictures PictureUploader
	Events   EventPublisher
}

// AccountService manages customer accounts.
type AccountService struct {
	users    UserStore
	hasher   Hasher
	tokens   TokenIssuer
	pictures PictureUploader
	events   EventPublisher
}

// NewAccountService builds an AccountService from d.
func NewAccountService(d AccountDeps) *AccountService {
	return &AccountService{
		users:    d.Users,
		hasher:   d.Hasher,
		tokens:   d.Tokens,
		pictures: d.Pictures,
		events:   publisherOrNoop(d.Events),
	}
}

// Register creates a customer.  The email is checked before the picture is
// uploaded so a duplicate never leaves an orphaned object behind; the
// unique index still decides races.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := repository.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.FullName) == "" || email == "" || in.Password == "" ||
		strings.TrimSpace(in.MobileNumber) == "" || strings.TrimSpace(in.PrimaryAddress) == "" {
		return model.User{}, fmt.Errorf("%w: full_name, email, password, mobile_number and primary_address are required", ErrValidation)
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return model.User{}, err
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, repository.ErrEmailExists
	}

	picture, err := s.upload(ctx, in.Picture)
	if err != nil {
		return model.User{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		FullName:       strings.TrimSpace(in.FullName),
		PasswordHash:   hash,
		Picture:        picture,
		PrimaryAddress: strings.TrimSpace(in.PrimaryAddress),
		MobileNumber:   strings.TrimSpace(in.MobileNumber),
		Email:          email,
		Role:           model.RoleCustomer,
	}
	id, err := s.users.Create(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	u.ID = id

	s.events.PublishAsync(queue.NewAccountEvent(queue.EventUserRegistered, model.ActorCustomer, id, email))
	return u, nil
}

// Login checks the credentials and issues a customer token.  An unknown
// email yields repository.ErrNotFound and a wrong password
// ErrInvalidPassword; callers report them differently.
func (s *AccountService) Login(ctx context.Context, email, password string) (model.User, utils.AccessToken, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, utils.AccessToken{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		outcome := "error"
		if errors.Is(err, repository.ErrNotFound) {
			outcome = "unknown_account"
		}
		metrics.LoginAttempts.WithLabelValues(string(model.ActorCustomer), outcome).Inc()
		return model.User{}, utils.AccessToken{}, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues(string(model.ActorCustomer), "bad_password").Inc()
		return model.User{}, utils.AccessToken{}, ErrInvalidPassword
	}
	tok, err := s.tokens.Issue(model.ActorCustomer, u.ID, u.Email)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(model.ActorCustomer), "error").Inc()
		return model.User{}, utils.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	metrics.LoginAttempts.WithLabelValues(string(model.ActorCustomer), "success").Inc()
	return u, tok, nil
}

// Get returns the customer with id, or repository.ErrNotFound.
func (s *AccountService) Get(ctx context.Context, id uint64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile overwrites the editable fields of the user.  Empty fields
// keep their stored value.
func (s *AccountService) UpdateProfile(ctx context.Context, id uint64, in UpdateProfileInput) (model.User, error) {
	cur, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	p := model.UserProfile{
		FullName:       coalesce(in.FullName, cur.FullName),
		Picture:        cur.Picture,
		PrimaryAddress: coalesce(in.PrimaryAddress, cur.PrimaryAddress),
		MobileNumber:   coalesce(in.MobileNumber, cur.MobileNumber),
	}
	if in.Picture != nil {
		url, err := s.upload(ctx, in.Picture)
		if err != nil {
			return model.User{}, err
		}
		p.Picture = url
	}
	if err := s.users.UpdateProfile(ctx, id, p); err != nil {
		return model.User{}, err
	}

	cur.FullName, cur.Picture, cur.PrimaryAddress, cur.MobileNumber = p.FullName, p.Picture, p.PrimaryAddress, p.MobileNumber
	return cur, nil
}

// Delete removes the user together with their addresses and codes.
func (s *AccountService) Delete(ctx context.Context, id uint64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.events.PublishAsync(queue.NewAccountEvent(queue.EventUserDeleted, model.ActorCustomer, id, ""))
	return nil
}

func (s *AccountService) upload(ctx context.Context, up *Upload) (string, error) {
	if up == nil || s.pictures == nil {
		return "", nil
	}
	url, err := s.pictures.UploadPicture(ctx, up.Filename, up.Body, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload picture: %w", err)
	}
	return url, nil
}

func coalesce(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
