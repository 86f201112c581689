package handler

import (
	"context"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/service"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
)

// The interfaces below are implemented by the service package.

// AccountService is the customer account workflow.
type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (model.User, utils.AccessToken, error)
	Get(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, in service.UpdateProfileInput) (model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// PartnerService is the delivery partner workflow.
type PartnerService interface {
	Register(ctx context.Context, in service.PartnerRegisterInput) (model.DeliveryPartner, error)
	Login(ctx context.Context, email, password string) (model.DeliveryPartner, utils.AccessToken, error)
	Get(ctx context.Context, id uint64) (model.DeliveryPartner, error)
	UpdateProfile(ctx context.Context, id uint64, in model.PartnerProfile) (model.DeliveryPartner, error)
	UpdateStatus(ctx context.Context, id uint64, status model.AvailabilityStatus) error
}

// AddressService manages customer addresses.
type AddressService interface {
	Create(ctx context.Context, userID uint64, in model.AddressInput) (model.Address, error)
	List(ctx context.Context, userID uint64) ([]model.Address, error)
	Update(ctx context.Context, userID, addressID uint64, in model.AddressInput) (model.Address, error)
}

// OTPService is the password reset flow.
type OTPService interface {
	RequestPasswordReset(ctx context.Context, email string) error
	Verify(ctx context.Context, code string, userID uint64, purpose model.OTPPurpose) (bool, error)
	ResetPassword(ctx context.Context, userID uint64, code, newPassword string) error
}
