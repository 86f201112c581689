package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/service"
)

// OTPHandler serves the password reset flow.
type OTPHandler struct {
	OTP OTPService
	Log *zap.Logger
}

// NewOTPHandler returns an OTPHandler backed by s.
func NewOTPHandler(s OTPService, log *zap.Logger) *OTPHandler {
	return &OTPHandler{OTP: s, Log: log}
}

type resetPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type compareOTPReq struct {
	OTP string `json:"otp" validate:"required"`
}

type confirmResetReq struct {
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=72"`
}

// SendResetOTP mails a password reset code to the given email.
func (h *OTPHandler) SendResetOTP(c echo.Context) error {
	var req resetPasswordReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.OTP.RequestPasswordReset(ctx, req.Email); err != nil {
		return respondError(c, h.Log, err, "Error generating otp")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent successfully", "success": true})
}

// CompareOTP checks a code against the caller's unexpired reset codes.
func (h *OTPHandler) CompareOTP(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req compareOTPReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, "OTP is required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	valid, err := h.OTP.Verify(ctx, req.OTP, uid, model.OTPPasswordReset)
	if err != nil {
		return respondError(c, h.Log, err, "Error comparing OTP")
	}
	if !valid {
		return c.JSON(http.StatusOK, echo.Map{"message": "Invalid OTP", "success": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Otp Match", "success": true})
}

// ConfirmReset sets a new password when the code is valid.
func (h *OTPHandler) ConfirmReset(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req confirmResetReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.OTP.ResetPassword(ctx, uid, req.OTP, req.NewPassword)
	if errors.Is(err, service.ErrInvalidOTP) {
		return c.JSON(http.StatusOK, echo.Map{"message": "Invalid OTP", "success": false})
	}
	if err != nil {
		return respondError(c, h.Log, err, "Error resetting password")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully", "success": true})
}
