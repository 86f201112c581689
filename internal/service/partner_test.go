package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/queue"
	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
)

func newPartnerService(ps *mockPartnerStore, tk *mockTokens, pub *recordingPublisher) *PartnerService {
	return NewPartnerService(PartnerDeps{Partners: ps, Hasher: fastHasher(), Tokens: tk, Events: pub})
}

func TestPartnerRegister_StartsNotAvailable(t *testing.T) {
	ps := new(mockPartnerStore)
	pub := &recordingPublisher{}
	svc := newPartnerService(ps, new(mockTokens), pub)

	var stored model.DeliveryPartner
	ps.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(model.DeliveryPartner) }).
		Return(uint64(11), nil)

	p, err := svc.Register(context.Background(), PartnerRegisterInput{
		Name: "Ravi", ContactNumber: "888", Email: "R@x.com", Password: "secret", VehicleType: "bike",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), p.ID)
	assert.Equal(t, model.StatusNotAvailable, stored.AvailabilityStatus)
	assert.Equal(t, "r@x.com", stored.Email)
	assert.True(t, fastHasher().Verify(stored.PasswordHash, "secret"))
	assert.Equal(t, []string{queue.EventPartnerRegistered}, pub.types())
}

func TestPartnerRegister_Duplicate(t *testing.T) {
	ps := new(mockPartnerStore)
	svc := newPartnerService(ps, new(mockTokens), &recordingPublisher{})
	ps.On("Create", mock.Anything, mock.Anything).Return(uint64(0), repository.ErrEmailExists)

	_, err := svc.Register(context.Background(), PartnerRegisterInput{
		Name: "Ravi", ContactNumber: "888", Email: "r@x.com", Password: "secret",
	})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestPartnerLogin(t *testing.T) {
	hash, err := fastHasher().Hash("secret")
	require.NoError(t, err)

	ps := new(mockPartnerStore)
	tk := new(mockTokens)
	svc := newPartnerService(ps, tk, &recordingPublisher{})

	ps.On("GetByEmail", mock.Anything, "r@x.com").Return(model.DeliveryPartner{ID: 2, Email: "r@x.com", PasswordHash: hash}, nil)
	ps.On("GetByEmail", mock.Anything, "nobody@x.com").Return(model.DeliveryPartner{}, repository.ErrNotFound)
	tk.On("Issue", model.ActorPartner, uint64(2), "r@x.com").Return(utils.AccessToken{Token: "pt"}, nil)

	_, tok, err := svc.Login(context.Background(), "r@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "pt", tok.Token)

	_, _, err = svc.Login(context.Background(), "r@x.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@x.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPartnerUpdateStatus(t *testing.T) {
	ps := new(mockPartnerStore)
	pub := &recordingPublisher{}
	svc := newPartnerService(ps, new(mockTokens), pub)

	ps.On("UpdateStatus", mock.Anything, uint64(2), model.StatusAvailable).Return(nil)

	require.NoError(t, svc.UpdateStatus(context.Background(), 2, model.StatusAvailable))
	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), 2, "busy"), ErrValidation)
	ps.AssertNumberOfCalls(t, "UpdateStatus", 1)
	assert.Equal(t, []string{queue.EventPartnerStatusChanged}, pub.types())
}

func TestPartnerUpdateProfile_MergesFields(t *testing.T) {
	ps := new(mockPartnerStore)
	svc := newPartnerService(ps, new(mockTokens), &recordingPublisher{})

	cur := model.DeliveryPartner{ID: 2, Name: "Ravi", ContactNumber: "888", Email: "r@x.com", VehicleType: "bike", Pincode: "560001"}
	ps.On("GetByID", mock.Anything, uint64(2)).Return(cur, nil)
	ps.On("UpdateProfile", mock.Anything, uint64(2), model.PartnerProfile{
		Name: "Ravi", ContactNumber: "888", Email: "r@x.com", VehicleType: "van", Pincode: "560001",
	}).Return(nil)

	p, err := svc.UpdateProfile(context.Background(), 2, model.PartnerProfile{VehicleType: "van"})
	require.NoError(t, err)
	assert.Equal(t, "van", p.VehicleType)
	ps.AssertExpectations(t)
}

func TestPartnerRegister_PasswordTooLong(t *testing.T) {
	ps := new(mockPartnerStore)
	svc := newPartnerService(ps, new(mockTokens), &recordingPublisher{})

	_, err := svc.Register(context.Background(), PartnerRegisterInput{
		Name: "Ravi", ContactNumber: "888", Email: "r@x.com", Password: strings.Repeat("x", 100),
	})
	assert.ErrorIs(t, err, ErrValidation)
	ps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
