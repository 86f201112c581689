package middleware

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
	"github.com/iliyamo/ecomm-delivery-backend/internal/utils"
)

// Identity is the verified bearer of a session token.
type Identity = utils.Identity

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// ActorID returns the id of the authenticated actor of the given type, or
// false when the request carries no such identity.
func ActorID(c echo.Context, actor model.ActorType) (uint64, bool) {
	id, ok := IdentityFrom(c.Request().Context())
	if !ok || id.Actor != actor {
		return 0, false
	}
	return id.ID, true
}

// CustomerID is the id of the authenticated customer, if any.
func CustomerID(c echo.Context) (uint64, bool) { return ActorID(c, model.ActorCustomer) }

// PartnerID is the id of the authenticated delivery partner, if any.
func PartnerID(c echo.Context) (uint64, bool) { return ActorID(c, model.ActorPartner) }

// rateKeyUser identifies the caller for rate limiting: "customer:12",
// "partner:3" or "anon".
func rateKeyUser(c echo.Context) string {
	id, ok := IdentityFrom(c.Request().Context())
	if !ok {
		return "anon"
	}
	return string(id.Actor) + ":" + strconv.FormatUint(id.ID, 10)
}
