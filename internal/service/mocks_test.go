package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/ecomm-delivery-backend/internal/geocode"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/queue"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u model.User) (uint64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserStore) Exists(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserStore) UpdateProfile(ctx context.Context, id uint64, p model.UserProfile) error {
	return m.Called(ctx, id, p).Error(0)
}
func (m *mockUserStore) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}
func (m *mockUserStore) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPartnerStore struct{ mock.Mock }

func (m *mockPartnerStore) Create(ctx context.Context, p model.DeliveryPartner) (uint64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *mockPartnerStore) GetByEmail(ctx context.Context, email string) (model.DeliveryPartner, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.DeliveryPartner), args.Error(1)
}
func (m *mockPartnerStore) GetByID(ctx context.Context, id uint64) (model.DeliveryPartner, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.DeliveryPartner), args.Error(1)
}
func (m *mockPartnerStore) UpdateProfile(ctx context.Context, id uint64, p model.PartnerProfile) error {
	return m.Called(ctx, id, p).Error(0)
}
func (m *mockPartnerStore) UpdateStatus(ctx context.Context, id uint64, status model.AvailabilityStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockAddressStore struct{ mock.Mock }

func (m *mockAddressStore) Create(ctx context.Context, a model.Address) (uint64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *mockAddressStore) ListByUser(ctx context.Context, userID uint64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Address), args.Error(1)
}
func (m *mockAddressStore) GetByID(ctx context.Context, id uint64) (model.Address, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Address), args.Error(1)
}
func (m *mockAddressStore) Update(ctx context.Context, id, userID uint64, in model.AddressInput) error {
	return m.Called(ctx, id, userID, in).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Issue(actor model.ActorType, id uint64, email string) (utils.AccessToken, error) {
	args := m.Called(actor, id, email)
	return args.Get(0).(utils.AccessToken), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendMail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockUploader struct{ mock.Mock }

func (m *mockUploader) UploadPicture(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, filename, r, contentType)
	return args.String(0), args.Error(1)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Resolve(ctx context.Context, query string) (geocode.Coordinates, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(geocode.Coordinates), args.Error(1)
}

// --- fakes ---

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.AccountEvent
}

func (p *recordingPublisher) PublishAsync(ev queue.AccountEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// memoryOTPStore mimics the otp table: rows are appended and ActiveCodes
// returns those whose expiry is strictly after now.
type memoryOTPStore struct {
	mu   sync.Mutex
	rows []model.OTP
}

func (s *memoryOTPStore) Insert(_ context.Context, o model.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = uint64(len(s.rows) + 1)
	s.rows = append(s.rows, o)
	return nil
}

func (s *memoryOTPStore) ActiveCodes(_ context.Context, userID uint64, purpose model.OTPPurpose, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.rows {
		if r.UserID == userID && r.Purpose == purpose && r.ExpiresAt.After(now) {
			out = append(out, r.Code)
		}
	}
	return out, nil
}

// fastHasher is the real hasher at bcrypt's minimum cost.
func fastHasher() utils.PasswordHasher { return utils.NewPasswordHasher(4) }
