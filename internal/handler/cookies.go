package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
)

// sessionCookie builds the cookie carrying a session token.  Both actor
// types get identical attributes; the cookie lifetime only governs client
// retention, the token's own expiry governs trust.
func sessionCookie(cfg config.CookieConfig, name, token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(cfg.TTL),
		MaxAge:   int(cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: sameSite(cfg),
	}
}

// sameSite is None for cross-site clients.  Browsers reject SameSite=None
// without Secure, so plain-HTTP deployments get Lax.
func sameSite(cfg config.CookieConfig) http.SameSite {
	if cfg.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func setSessionCookie(c echo.Context, cfg config.CookieConfig, name, token string) {
	c.SetCookie(sessionCookie(cfg, name, token, time.Now()))
}

func clearSessionCookie(c echo.Context, cfg config.CookieConfig, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: sameSite(cfg),
	})
}
