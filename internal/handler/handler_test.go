package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
	"github.com/iliyamo/ecomm-delivery-backend/internal/service"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
	"github.com/iliyamo/ecomm-delivery-backend/internal/validate"
)

// --- mocks ---

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) Register(ctx context.Context, in service.RegisterInput) (model.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockAccounts) Login(ctx context.Context, email, password string) (model.User, utils.AccessToken, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.User), args.Get(1).(utils.AccessToken), args.Error(2)
}
func (m *mockAccounts) Get(ctx context.Context, id uint64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockAccounts) UpdateProfile(ctx context.Context, id uint64, in service.UpdateProfileInput) (model.User, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *mockAccounts) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPartners struct{ mock.Mock }

func (m *mockPartners) Register(ctx context.Context, in service.PartnerRegisterInput) (model.DeliveryPartner, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.DeliveryPartner), args.Error(1)
}
func (m *mockPartners) Login(ctx context.Context, email, password string) (model.DeliveryPartner, utils.AccessToken, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.DeliveryPartner), args.Get(1).(utils.AccessToken), args.Error(2)
}
func (m *mockPartners) Get(ctx context.Context, id uint64) (model.DeliveryPartner, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.DeliveryPartner), args.Error(1)
}
func (m *mockPartners) UpdateProfile(ctx context.Context, id uint64, in model.PartnerProfile) (model.DeliveryPartner, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.DeliveryPartner), args.Error(1)
}
func (m *mockPartners) UpdateStatus(ctx context.Context, id uint64, status model.AvailabilityStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockOTP struct{ mock.Mock }

func (m *mockOTP) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockOTP) Verify(ctx context.Context, code string, userID uint64, purpose model.OTPPurpose) (bool, error) {
	args := m.Called(ctx, code, userID, purpose)
	return args.Bool(0), args.Error(1)
}
func (m *mockOTP) ResetPassword(ctx context.Context, userID uint64, code, newPassword string) error {
	return m.Called(ctx, userID, code, newPassword).Error(0)
}

type mockAddresses struct{ mock.Mock }

func (m *mockAddresses) Create(ctx context.Context, userID uint64, in model.AddressInput) (model.Address, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(model.Address), args.Error(1)
}
func (m *mockAddresses) List(ctx context.Context, userID uint64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Address), args.Error(1)
}
func (m *mockAddresses) Update(ctx context.Context, userID, addressID uint64, in model.AddressInput) (model.Address, error) {
	args := m.Called(ctx, userID, addressID, in)
	return args.Get(0).(model.Address), args.Error(1)
}

// --- helpers ---

var testCookies = config.CookieConfig{TTL: 15 * 24 * time.Hour, Secure: true}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validate.New()
	return e
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func as(req *http.Request, actor model.ActorType, id uint64) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{ID: id, Actor: actor}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// --- tests ---

func TestLogin_Outcomes(t *testing.T) {
	accounts := new(mockAccounts)
	h := NewAuthHandler(accounts, new(mockPartners), testCookies, zap.NewNop())
	e := newEcho()

	accounts.On("Login", mock.Anything, "a@x.com", "p1").
		Return(model.User{ID: 1, Email: "a@x.com"}, utils.AccessToken{Token: "tok", Exp: time.Now().Add(time.Hour)}, nil)
	accounts.On("Login", mock.Anything, "a@x.com", "wrong").
		Return(model.User{}, utils.AccessToken{}, service.ErrInvalidPassword)
	accounts.On("Login", mock.Anything, "b@x.com", "p1").
		Return(model.User{}, utils.AccessToken{}, repository.ErrNotFound)

	rec := httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(jsonRequest(http.MethodPost, "/login", loginReq{"a@x.com", "p1"}), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "tok", body["token"])
	require.NotNil(t, findCookie(rec, middleware.CustomerCookie))

	rec = httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(jsonRequest(http.MethodPost, "/login", loginReq{"a@x.com", "wrong"}), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid password","success":false}`, rec.Body.String())
	assert.Nil(t, findCookie(rec, middleware.CustomerCookie))

	rec = httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(jsonRequest(http.MethodPost, "/login", loginReq{"b@x.com", "p1"}), rec)))
	assert.JSONEq(t, `{"message":"User not found","success":false}`, rec.Body.String())
}

func TestLogin_MissingFields(t *testing.T) {
	h := NewAuthHandler(new(mockAccounts), new(mockPartners), testCookies, zap.NewNop())
	rec := httptest.NewRecorder()
	require.NoError(t, h.Login(newEcho().NewContext(jsonRequest(http.MethodPost, "/login", loginReq{Email: "a@x.com"}), rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionCookies_SameAttributesForBothActors(t *testing.T) {
	accounts := new(mockAccounts)
	partners := new(mockPartners)
	h := NewAuthHandler(accounts, partners, testCookies, zap.NewNop())
	e := newEcho()

	accounts.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(model.User{ID: 1}, utils.AccessToken{Token: "c"}, nil)
	partners.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(model.DeliveryPartner{ID: 1}, utils.AccessToken{Token: "p"}, nil)

	crec := httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(jsonRequest(http.MethodPost, "/login", loginReq{"a@x.com", "p1"}), crec)))
	prec := httptest.NewRecorder()
	require.NoError(t, h.LoginPartner(e.NewContext(jsonRequest(http.MethodPost, "/partnerlogin", loginReq{"r@x.com", "p1"}), prec)))

	cc := findCookie(crec, middleware.CustomerCookie)
	pc := findCookie(prec, middleware.PartnerCookie)
	require.NotNil(t, cc)
	require.NotNil(t, pc)
	for _, ck := range []*http.Cookie{cc, pc} {
		assert.True(t, ck.HttpOnly)
		assert.True(t, ck.Secure)
		assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
		assert.Equal(t, int((15 * 24 * time.Hour).Seconds()), ck.MaxAge)
		assert.Equal(t, "/", ck.Path)
	}
}

func TestLoginPartner_InvalidCredentials(t *testing.T) {
	partners := new(mockPartners)
	h := NewAuthHandler(new(mockAccounts), partners, testCookies, zap.NewNop())
	partners.On("Login", mock.Anything, "r@x.com", "bad").
		Return(model.DeliveryPartner{}, utils.AccessToken{}, service.ErrInvalidCredentials)

	rec := httptest.NewRecorder()
	require.NoError(t, h.LoginPartner(newEcho().NewContext(jsonRequest(http.MethodPost, "/partnerlogin", loginReq{"r@x.com", "bad"}), rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, rec.Body.String())
}

func TestRegister_Conflict(t *testing.T) {
	accounts := new(mockAccounts)
	h := NewAuthHandler(accounts, new(mockPartners), testCookies, zap.NewNop())
	accounts.On("Register", mock.Anything, mock.Anything).Return(model.User{}, repository.ErrEmailExists)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/register", registerReq{
		FullName: "A", Password: "p1", PrimaryAddress: "addr", MobileNumber: "1", Email: "a@x.com",
	})
	require.NoError(t, h.Register(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MultipartWithPicture(t *testing.T) {
	accounts := new(mockAccounts)
	h := NewAuthHandler(accounts, new(mockPartners), testCookies, zap.NewNop())
	accounts.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Email == "a@x.com" && in.Picture != nil && in.Picture.Filename == "me.png"
	})).Return(model.User{ID: 1, Email: "a@x.com"}, nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"full_name": "A", "password": "p1", "primary_address": "addr", "mobile_number": "1", "email": "a@x.com",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	accounts.AssertExpectations(t)
}

func TestGetUser_NotFoundAndServerError(t *testing.T) {
	accounts := new(mockAccounts)
	h := NewUserHandler(accounts, testCookies, zap.NewNop())
	accounts.On("Get", mock.Anything, uint64(1)).Return(model.User{}, repository.ErrNotFound)
	accounts.On("Get", mock.Anything, uint64(2)).Return(model.User{}, assert.AnError)
	e := newEcho()

	rec := httptest.NewRecorder()
	require.NoError(t, h.GetUser(e.NewContext(as(httptest.NewRequest(http.MethodGet, "/getuser", nil), model.ActorCustomer, 1), rec)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, h.GetUser(e.NewContext(as(httptest.NewRequest(http.MethodGet, "/getuser", nil), model.ActorCustomer, 2), rec)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestGetUser_PartnerIdentityIsUnauthorized(t *testing.T) {
	h := NewUserHandler(new(mockAccounts), testCookies, zap.NewNop())
	rec := httptest.NewRecorder()
	req := as(httptest.NewRequest(http.MethodGet, "/getuser", nil), model.ActorPartner, 1)
	require.NoError(t, h.GetUser(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompareOTP(t *testing.T) {
	otp := new(mockOTP)
	h := NewOTPHandler(otp, zap.NewNop())
	otp.On("Verify", mock.Anything, "123456", uint64(1), model.OTPPasswordReset).Return(true, nil)
	otp.On("Verify", mock.Anything, "000000", uint64(1), model.OTPPasswordReset).Return(false, nil)
	e := newEcho()

	rec := httptest.NewRecorder()
	req := as(jsonRequest(http.MethodPost, "/compareotp", compareOTPReq{OTP: "123456"}), model.ActorCustomer, 1)
	require.NoError(t, h.CompareOTP(e.NewContext(req, rec)))
	assert.JSONEq(t, `{"message":"Otp Match","success":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	req = as(jsonRequest(http.MethodPost, "/compareotp", compareOTPReq{OTP: "000000"}), model.ActorCustomer, 1)
	require.NoError(t, h.CompareOTP(e.NewContext(req, rec)))
	assert.JSONEq(t, `{"message":"Invalid OTP","success":false}`, rec.Body.String())
}

func TestSendResetOTP_UnknownEmail(t *testing.T) {
	otp := new(mockOTP)
	h := NewOTPHandler(otp, zap.NewNop())
	otp.On("RequestPasswordReset", mock.Anything, "b@x.com").Return(repository.ErrNotFound)

	rec := httptest.NewRecorder()
	req := as(jsonRequest(http.MethodPost, "/resetpassword", resetPasswordReq{Email: "b@x.com"}), model.ActorCustomer, 1)
	require.NoError(t, h.SendResetOTP(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAddress_ParsesIDAndScopesToCaller(t *testing.T) {
	addrs := new(mockAddresses)
	h := NewAddressHandler(addrs, zap.NewNop())
	e := newEcho()

	body := addressReq{
		FullName: "A", MobileNumber: "1", AddressLine1: "l1", City: "c", State: "s", Country: "in", Pincode: "560001",
	}
	addrs.On("Update", mock.Anything, uint64(7), uint64(5), body.input()).Return(model.Address{ID: 5, UserID: 7}, nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(as(jsonRequest(http.MethodPut, "/updateaddress/5", body), model.ActorCustomer, 7), rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(as(jsonRequest(http.MethodPut, "/updateaddress/x", body), model.ActorCustomer, 7), rec)
	c.SetParamNames("id")
	c.SetParamValues("5 OR 1=1")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	addrs.AssertNumberOfCalls(t, "Update", 1)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	partners := new(mockPartners)
	h := NewPartnerHandler(partners, zap.NewNop())
	partners.On("UpdateStatus", mock.Anything, uint64(3), model.StatusNotAvailable).Return(nil)
	e := newEcho()

	rec := httptest.NewRecorder()
	req := as(jsonRequest(http.MethodPut, "/updatestatus", updateStatusReq{AvailabilityStatus: "not available"}), model.ActorPartner, 3)
	require.NoError(t, h.UpdateStatus(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = as(jsonRequest(http.MethodPut, "/updatestatus", updateStatusReq{AvailabilityStatus: "busy"}), model.ActorPartner, 3)
	require.NoError(t, h.UpdateStatus(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	partners.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestLogout_ClearsCookie(t *testing.T) {
	h := NewAuthHandler(new(mockAccounts), new(mockPartners), testCookies, zap.NewNop())
	rec := httptest.NewRecorder()
	require.NoError(t, h.LogoutPartner(newEcho().NewContext(httptest.NewRequest(http.MethodPost, "/partnerlogout", strings.NewReader("")), rec)))
	ck := findCookie(rec, middleware.PartnerCookie)
	require.NotNil(t, ck)
	assert.Equal(t, "", ck.Value)
	assert.True(t, ck.MaxAge < 0)
}

func TestLongPasswords_AreBadRequests(t *testing.T) {
	accounts, partners, otp := new(mockAccounts), new(mockPartners), new(mockOTP)
	auth := NewAuthHandler(accounts, partners, testCookies, zap.NewNop())
	otpH := NewOTPHandler(otp, zap.NewNop())
	long := strings.Repeat("a", 100)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/register", registerReq{
		FullName: "A", Password: long, PrimaryAddress: "addr", MobileNumber: "1", Email: "a@x.com",
	})
	require.NoError(t, auth.Register(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = jsonRequest(http.MethodPost, "/createdeliverypartner", partnerRegisterReq{
		Name: "R", ContactNumber: "1", Email: "r@x.com", Password: long,
		VehicleType: "bike", VehicleNumber: "KA01", Pincode: "560001",
	})
	require.NoError(t, auth.RegisterPartner(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = as(jsonRequest(http.MethodPost, "/resetpassword/confirm", confirmResetReq{OTP: "123456", NewPassword: long}), model.ActorCustomer, 1)
	require.NoError(t, otpH.ConfirmReset(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	accounts.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	partners.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	otp.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_ServiceValidationErrorIsBadRequest(t *testing.T) {
	accounts := new(mockAccounts)
	h := NewAuthHandler(accounts, new(mockPartners), testCookies, zap.NewNop())
	// 40 runes pass the tag check but are 80 bytes, which the service refuses.
	accounts.On("Register", mock.Anything, mock.Anything).
		Return(model.User{}, fmt.Errorf("%w: password must be at most 72 bytes", service.ErrValidation))

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/register", registerReq{
		FullName: "A", Password: strings.Repeat("é", 40), PrimaryAddress: "addr", MobileNumber: "1", Email: "a@x.com",
	})
	require.NoError(t, h.Register(newEcho().NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionCookie_InsecureFallsBackToLax(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	insecure := config.CookieConfig{TTL: time.Hour, Secure: false}

	ck := sessionCookie(insecure, middleware.CustomerCookie, "t", now)
	assert.False(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	ck = sessionCookie(testCookies, middleware.PartnerCookie, "t", now)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)

	rec := httptest.NewRecorder()
	clearSessionCookie(newEcho().NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec), insecure, middleware.CustomerCookie)
	cleared := findCookie(rec, middleware.CustomerCookie)
	require.NotNil(t, cleared)
	assert.Equal(t, http.SameSiteLaxMode, cleared.SameSite)
}
