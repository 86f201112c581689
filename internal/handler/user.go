package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
	"github.com/iliyamo/ecomm-delivery-backend/internal/service"
)

// UserHandler serves the authenticated customer's own account.
type UserHandler struct {
	Accounts AccountService
	Cookies  config.CookieConfig
	Log      *zap.Logger
}

// NewUserHandler returns a UserHandler backed by a.
func NewUserHandler(a AccountService, cookies config.CookieConfig, log *zap.Logger) *UserHandler {
	return &UserHandler{Accounts: a, Cookies: cookies, Log: log}
}

type updateUserReq struct {
	FullName       string `json:"full_name" form:"full_name"`
	PrimaryAddress string `json:"primary_address" form:"primary_address"`
	MobileNumber   string `json:"mobile_number" form:"mobile_number"`
}

// GetUser returns the caller without the password hash.
func (h *UserHandler) GetUser(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Accounts.Get(ctx, uid)
	if err != nil {
		return respondError(c, h.Log, err, "Error fetching user")
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateUser accepts JSON or multipart; a "file" part replaces the picture.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
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

	u, err := h.Accounts.UpdateProfile(ctx, uid, service.UpdateProfileInput{
		FullName:       req.FullName,
		PrimaryAddress: req.PrimaryAddress,
		MobileNumber:   req.MobileNumber,
		Picture:        up,
	})
	if err != nil {
		return respondError(c, h.Log, err, "Error updating user")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User updated successfully", "user": u})
}

// DeleteUser removes the account and ends the session.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.Delete(ctx, uid); err != nil {
		return respondError(c, h.Log, err, "Error deleting user")
	}
	clearSessionCookie(c, h.Cookies, middleware.CustomerCookie)
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
