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

// PartnerRegisterInput is a delivery partner sign-up request.
type PartnerRegisterInput struct {
	Name          string
	ContactNumber string
	Email         string
	Password      string
	VehicleType   string
	VehicleNumber string
	Pincode       string
}

// PartnerDeps lists the collaborators of PartnerService.  Events may be nil.
type PartnerDeps struct {
	Partners PartnerStore
	Hasher   Hasher
	Tokens   TokenIssuer
	Events   EventPublisher
}

// PartnerService manages delivery partner accounts and availability.
type PartnerService struct {
	partners PartnerStore
	hasher   Hasher
	tokens   TokenIssuer
	events   EventPublisher
}

// NewPartnerService builds a PartnerService from d.
func NewPartnerService(d PartnerDeps) *PartnerService {
	return &PartnerService{
		partners: d.Partners,
		hasher:   d.Hasher,
		tokens:   d.Tokens,
		events:   publisherOrNoop(d.Events),
	}
}

// Register creates a partner in the "not available" state.
func (s *PartnerService) Register(ctx context.Context, in PartnerRegisterInput) (model.DeliveryPartner, error) {
	email := repository.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" || strings.TrimSpace(in.ContactNumber) == "" {
		return model.DeliveryPartner{}, fmt.Errorf("%w: name, email, password and contact_number are required", ErrValidation)
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return model.DeliveryPartner{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.DeliveryPartner{}, err
	}
	p := model.DeliveryPartner{
		Name:               strings.TrimSpace(in.Name),
		ContactNumber:      strings.TrimSpace(in.ContactNumber),
		Email:              email,
		VehicleType:        strings.TrimSpace(in.VehicleType),
		VehicleNumber:      strings.TrimSpace(in.VehicleNumber),
		Pincode:            strings.TrimSpace(in.Pincode),
		AvailabilityStatus: model.StatusNotAvailable,
		PasswordHash:       hash,
	}
	id, err := s.partners.Create(ctx, p)
	if err != nil {
		return model.DeliveryPartner{}, err
	}
	p.ID = id

	s.events.PublishAsync(queue.NewAccountEvent(queue.EventPartnerRegistered, model.ActorPartner, id, email))
	return p, nil
}

// Login returns ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *PartnerService) Login(ctx context.Context, email, password string) (model.DeliveryPartner, utils.AccessToken, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.DeliveryPartner{}, utils.AccessToken{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	p, err := s.partners.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.LoginAttempts.WithLabelValues(string(model.ActorPartner), "unknown_account").Inc()
		return model.DeliveryPartner{}, utils.AccessToken{}, ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(model.ActorPartner), "error").Inc()
		return model.DeliveryPartner{}, utils.AccessToken{}, err
	}
	if !s.hasher.Verify(p.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues(string(model.ActorPartner), "bad_password").Inc()
		return model.DeliveryPartner{}, utils.AccessToken{}, ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(model.ActorPartner, p.ID, p.Email)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(model.ActorPartner), "error").Inc()
		return model.DeliveryPartner{}, utils.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	metrics.LoginAttempts.WithLabelValues(string(model.ActorPartner), "success").Inc()
	return p, tok, nil
}

// Get returns the partner with id, or repository.ErrNotFound.
func (s *PartnerService) Get(ctx context.Context, id uint64) (model.DeliveryPartner, error) {
	return s.partners.GetByID(ctx, id)
}

// UpdateProfile edits the partner identified by the session, never one
// named in the request body.  Empty fields keep their stored value.
func (s *PartnerService) UpdateProfile(ctx context.Context, id uint64, in model.PartnerProfile) (model.DeliveryPartner, error) {
	cur, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return model.DeliveryPartner{}, err
	}
	p := model.PartnerProfile{
		Name:          coalesce(in.Name, cur.Name),
		ContactNumber: coalesce(in.ContactNumber, cur.ContactNumber),
		Email:         cur.Email,
		VehicleType:   coalesce(in.VehicleType, cur.VehicleType),
		VehicleNumber: coalesce(in.VehicleNumber, cur.VehicleNumber),
		Pincode:       coalesce(in.Pincode, cur.Pincode),
	}
	if e := repository.NormalizeEmail(in.Email); e != "" {
		p.Email = e
	}
	if err := s.partners.UpdateProfile(ctx, id, p); err != nil {
		return model.DeliveryPartner{}, err
	}
	cur.Name, cur.ContactNumber, cur.Email = p.Name, p.ContactNumber, p.Email
	cur.VehicleType, cur.VehicleNumber, cur.Pincode = p.VehicleType, p.VehicleNumber, p.Pincode
	return cur, nil
}

// UpdateStatus sets the availability of partner id and publishes a
// partner.status_changed event.  Unknown statuses are ErrValidation.
func (s *PartnerService) UpdateStatus(ctx context.Context, id uint64, status model.AvailabilityStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: availability_status must be %q or %q", ErrValidation, model.StatusAvailable, model.StatusNotAvailable)
	}
	if err := s.partners.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	ev := queue.NewAccountEvent(queue.EventPartnerStatusChanged, model.ActorPartner, id, "")
	ev.Detail = string(status)
	s.events.PublishAsync(ev)
	return nil
}
