package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/ecomm-delivery-backend/internal/geocode"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
)

// AddressDeps lists the collaborators of AddressService.
type AddressDeps struct {
	Users     UserStore
	Addresses AddressStore
	Geocoder  Geocoder
}

// AddressService manages the delivery addresses of customers.
type AddressService struct {
	users     UserStore
	addresses AddressStore
	geocoder  Geocoder
}

// NewAddressService builds an AddressService from d.
func NewAddressService(d AddressDeps) *AddressService {
	return &AddressService{users: d.Users, addresses: d.Addresses, geocoder: d.Geocoder}
}

func validateAddress(in model.AddressInput) error {
	fields := []struct{ name, value string }{
		{"full_name", in.FullName},
		{"mobile_number", in.MobileNumber},
		{"address_line1", in.AddressLine1},
		{"city", in.City},
		{"state", in.State},
		{"country", in.Country},
		{"pincode", in.Pincode},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Create geocodes and stores a new address.  The user must exist before the
// provider is called, and a geocoding failure stores nothing.
func (s *AddressService) Create(ctx context.Context, userID uint64, in model.AddressInput) (model.Address, error) {
	if err := validateAddress(in); err != nil {
		return model.Address{}, err
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return model.Address{}, err
	}
	if !ok {
		return model.Address{}, repository.ErrNotFound
	}

	coords, err := s.geocoder.Resolve(ctx, geocode.ComposeQuery(in.City, in.State, in.Country, in.Pincode))
	if err != nil {
		return model.Address{}, fmt.Errorf("geocode address: %w", err)
	}

	a := model.Address{
		UserID:       userID,
		FullName:     in.FullName,
		MobileNumber: in.MobileNumber,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		Country:      in.Country,
		Pincode:      in.Pincode,
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
	}
	id, err := s.addresses.Create(ctx, a)
	if err != nil {
		return model.Address{}, err
	}
	a.ID = id
	return a, nil
}

// List returns the user's addresses, never nil.
func (s *AddressService) List(ctx context.Context, userID uint64) ([]model.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

// Update rewrites an address owned by userID.  An address of another user
// is reported as not found.
func (s *AddressService) Update(ctx context.Context, userID, addressID uint64, in model.AddressInput) (model.Address, error) {
	if err := validateAddress(in); err != nil {
		return model.Address{}, err
	}
	if err := s.addresses.Update(ctx, addressID, userID, in); err != nil {
		return model.Address{}, err
	}
	return s.addresses.GetByID(ctx, addressID)
}
