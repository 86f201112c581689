package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

// AddressHandler serves the authenticated customer's addresses.
type AddressHandler struct {
	Addresses AddressService
	Log       *zap.Logger
}

// NewAddressHandler returns an AddressHandler backed by s.
func NewAddressHandler(s AddressService, log *zap.Logger) *AddressHandler {
	return &AddressHandler{Addresses: s, Log: log}
}

type addressReq struct {
	FullName     string `json:"full_name" validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Country      string `json:"country" validate:"required"`
	Pincode      string `json:"pincode" validate:"required"`
}

func (r addressReq) input() model.AddressInput {
	return model.AddressInput{
		FullName:     r.FullName,
		MobileNumber: r.MobileNumber,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		Pincode:      r.Pincode,
	}
}

// Create geocodes and stores a new address.  Geocoding can take a while,
// so the deadline is longer than for plain store calls.
func (h *AddressHandler) Create(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req addressReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	a, err := h.Addresses.Create(ctx, uid, req.input())
	if err != nil {
		return respondError(c, h.Log, err, "Error creating address")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "address created successfully", "address": a})
}

// List returns the caller's addresses.
func (h *AddressHandler) List(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Addresses.List(ctx, uid)
	if err != nil {
		return respondError(c, h.Log, err, "error getting all addresses")
	}
	return c.JSON(http.StatusOK, list)
}

// Update rewrites one of the caller's addresses.
func (h *AddressHandler) Update(c echo.Context) error {
	uid, ok := middleware.CustomerID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return badRequest(c, "invalid address id")
	}
	var req addressReq
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Addresses.Update(ctx, uid, id, req.input())
	if err != nil {
		return respondError(c, h.Log, err, "Error updating address")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "address updated successfully", "address": a})
}
