package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

// PartnerHandler serves the authenticated delivery partner.  The partner id
// always comes from the session.
type PartnerHandler struct {
	Partners PartnerService
	Log      *zap.Logger
}

// NewPartnerHandler returns a PartnerHandler backed by s.
func NewPartnerHandler(s PartnerService, log *zap.Logger) *PartnerHandler {
	return &PartnerHandler{Partners: s, Log: log}
}

type updatePartnerReq struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email" validate:"omitempty,email"`
	VehicleType   string `json:"vehicle_type"`
	VehicleNumber string `json:"vehicle_number"`
	Pincode       string `json:"pincode"`
}

type updateStatusReq struct {
	AvailabilityStatus string `json:"availability_status" validate:"required,oneof=available 'not available'"`
}

// Get returns the authenticated partner.
func (h *PartnerHandler) Get(c echo.Context) error {
	pid, ok := middleware.PartnerID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Partners.Get(ctx, pid)
	if err != nil {
		return respondError(c, h.Log, err, "Error fetching delivery partner")
	}
	return c.JSON(http.StatusOK, p)
}

// Update merges profile fields into the authenticated partner.
func (h *PartnerHandler) Update(c echo.Context) error {
	pid, ok := middleware.PartnerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req updatePartnerReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Partners.UpdateProfile(ctx, pid, model.PartnerProfile{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		VehicleType:   req.VehicleType,
		VehicleNumber: req.VehicleNumber,
		Pincode:       req.Pincode,
	})
	if err != nil {
		return respondError(c, h.Log, err, "error updating delivery partner")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Partner updated successfully", "partner": p})
}

// UpdateStatus sets availability to "available" or "not available".
func (h *PartnerHandler) UpdateStatus(c echo.Context) error {
	pid, ok := middleware.PartnerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req updateStatusReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, "Status must be 'available' or 'not available'")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Partners.UpdateStatus(ctx, pid, model.AvailabilityStatus(req.AvailabilityStatus)); err != nil {
		return respondError(c, h.Log, err, "error updating delivery partner status")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Partner status updated successfully"})
}
