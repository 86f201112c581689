package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
	"github.com/iliyamo/ecomm-delivery-backend/internal/service"
)

// AuthHandler serves registration, login and logout for both customers and
// delivery partners.
type AuthHandler struct {
	Accounts AccountService
	Partners PartnerService
	Cookies  config.CookieConfig
	Log      *zap.Logger
}

// NewAuthHandler returns an AuthHandler.  cookies applies to both
// session cookies.
func NewAuthHandler(a AccountService, p PartnerService, cookies config.CookieConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Accounts: a, Partners: p, Cookies: cookies, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	FullName       string `json:"full_name" form:"full_name" validate:"required"`
	Password       string `json:"password" form:"password" validate:"required,max=72"`
	PrimaryAddress string `json:"primary_address" form:"primary_address" validate:"required"`
	MobileNumber   string `json:"mobile_number" form:"mobile_number" validate:"required"`
	Email          string `json:"email" form:"email" validate:"required,email"`
}

type loginReq struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type partnerRegisterReq struct {
	Name          string `json:"name" validate:"required"`
	ContactNumber string `json:"contact_number" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,max=72"`
	VehicleType   string `json:"vehicle_type" validate:"required"`
	VehicleNumber string `json:"vehicle_number" validate:"required"`
	Pincode       string `json:"pincode" validate:"required"`
}

// bindValid binds the body and runs the registered validator.
func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return err
		}
	}
	return nil
}

// formUpload returns the optional "file" part of a multipart request.  The
// caller must close the returned file.
func formUpload(c echo.Context) (*service.Upload, multipart.File, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil, nil
	}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	}, f, nil
}

// Register creates a customer.  Accepts JSON or multipart with an optional
// "file" picture.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	up, f, err := formUpload(c)
	if err != nil {
		return badRequest(c, "invalid file")
	}
	if f != nil {
		defer f.Close()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	u, err := h.Accounts.Register(ctx, service.RegisterInput{
		FullName:       req.FullName,
		Password:       req.Password,
		PrimaryAddress: req.PrimaryAddress,
		MobileNumber:   req.MobileNumber,
		Email:          req.Email,
		Picture:        up,
	})
	if err != nil {
		return respondError(c, h.Log, err, "Error creating user")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User created successfully", "user": u})
}

// Login answers unknown emails and wrong passwords with 200 and
// success=false, each with its own message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, "All fields are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, tok, err := h.Accounts.Login(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusOK, echo.Map{"message": "User not found", "success": false})
	case errors.Is(err, service.ErrInvalidPassword):
		return c.JSON(http.StatusOK, echo.Map{"message": "Invalid password", "success": false})
	case err != nil:
		return respondError(c, h.Log, err, "Error logging in")
	}

	setSessionCookie(c, h.Cookies, middleware.CustomerCookie, tok.Token)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"success": true,
		"token":   tok.Token,
		"expires": tok.Exp,
		"user":    u,
	})
}

// Logout clears the customer session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	clearSessionCookie(c, h.Cookies, middleware.CustomerCookie)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out", "success": true})
}

// RegisterPartner creates a delivery partner.
func (h *AuthHandler) RegisterPartner(c echo.Context) error {
	var req partnerRegisterReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Partners.Register(ctx, service.PartnerRegisterInput{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Password:      req.Password,
		VehicleType:   req.VehicleType,
		VehicleNumber: req.VehicleNumber,
		Pincode:       req.Pincode,
	})
	if err != nil {
		return respondError(c, h.Log, err, "Error creating delivery partner")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Partner created successfully", "partner": p})
}

// LoginPartner answers every credential failure with 401.
func (h *AuthHandler) LoginPartner(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, "All fields are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, tok, err := h.Partners.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Log, err, "Error logging in delivery partner")
	}

	setSessionCookie(c, h.Cookies, middleware.PartnerCookie, tok.Token)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"success": true,
		"token":   tok.Token,
		"expires": tok.Exp,
		"partner": p,
	})
}

// LogoutPartner clears the partner session cookie.
func (h *AuthHandler) LogoutPartner(c echo.Context) error {
	clearSessionCookie(c, h.Cookies, middleware.PartnerCookie)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out", "success": true})
}
