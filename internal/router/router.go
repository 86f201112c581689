// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecomm-delivery-backend/internal/handler"
	"github.com/iliyamo/ecomm-delivery-backend/internal/metrics"
	"github.com/iliyamo/ecomm-delivery-backend/internal/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	OTP       *handler.OTPHandler
	Addresses *handler.AddressHandler
	Partners  *handler.PartnerHandler
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterCustomer registers the customer account, password reset and
// address routes.  limit guards the credential endpoints.
func RegisterCustomer(e *echo.Echo, h Handlers, tokens middleware.TokenVerifier, limit echo.MiddlewareFunc) {
	e.POST("/register", h.Auth.Register, limit)
	e.POST("/login", h.Auth.Login, limit)
	e.POST("/logout", h.Auth.Logout)

	// Routes share the root prefix with the partner routes, so middleware is
	// attached per route rather than through a Group.
	auth := middleware.CustomerAuth(tokens)
	e.GET("/getuser", h.Users.GetUser, auth)
	e.PUT("/updateuser", h.Users.UpdateUser, auth)
	e.DELETE("/deleteuser", h.Users.DeleteUser, auth)

	e.POST("/resetpassword", h.OTP.SendResetOTP, auth, limit)
	e.POST("/compareotp", h.OTP.CompareOTP, auth, limit)
	e.POST("/resetpassword/confirm", h.OTP.ConfirmReset, auth, limit)

	e.POST("/createAddress", h.Addresses.Create, auth)
	e.GET("/getaddresses", h.Addresses.List, auth)
	e.PUT("/updateaddress/:id", h.Addresses.Update, auth)
}

// RegisterPartner registers the delivery partner routes.
func RegisterPartner(e *echo.Echo, h Handlers, tokens middleware.TokenVerifier, limit echo.MiddlewareFunc) {
	e.POST("/createdeliverypartner", h.Auth.RegisterPartner, limit)
	e.POST("/partnerlogin", h.Auth.LoginPartner, limit)
	e.POST("/partnerlogout", h.Auth.LogoutPartner)

	auth := middleware.PartnerAuth(tokens)
	e.GET("/partner", h.Partners.Get, auth)
	e.PUT("/updatedeliverypartner", h.Partners.Update, auth)
	e.PUT("/updatestatus", h.Partners.UpdateStatus, auth)
}
