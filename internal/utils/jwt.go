package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

// Verification failures.  The HTTP layer collapses all of them into a
// single 401 so callers never learn which check failed.
var (
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

const (
	claimEmail = "email"
	claimActor = "actor"
)

// AccessToken represents a signed JWT along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Identity is what a verified token proves about its bearer.
type Identity struct {
	ID    uint64
	Email string
	Actor model.ActorType
}

// namespace groups the secret and the id claim name of one actor type.
type namespace struct {
	claim  string
	secret []byte
}

// TokenService issues and verifies HS256 session tokens for customers and
// delivery partners.  The two namespaces use distinct claim names (and
// optionally distinct secrets) and every token carries its actor type, so a
// token minted for one namespace never verifies in the other.
type TokenService struct {
	namespaces map[model.ActorType]namespace
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenService builds both namespaces from cfg.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	partnerSecret := cfg.PartnerSecret
	if partnerSecret == "" {
		partnerSecret = cfg.CustomerSecret
	}
	return &TokenService{
		namespaces: map[model.ActorType]namespace{
			model.ActorCustomer: {claim: "userId", secret: []byte(cfg.CustomerSecret)},
			model.ActorPartner:  {claim: "partnerId", secret: []byte(partnerSecret)},
		},
		ttl: ttl,
		now: time.Now,
	}
}

// Issue signs a token for the given actor.
func (s *TokenService) Issue(actor model.ActorType, id uint64, email string) (AccessToken, error) {
	ns, ok := s.namespaces[actor]
	if !ok {
		return AccessToken{}, fmt.Errorf("unknown actor type %q", actor)
	}
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		ns.claim:   id,
		claimEmail: email,
		claimActor: string(actor),
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ns.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks signature, expiry and namespace of raw and returns the
// identity it carries.
func (s *TokenService) Verify(actor model.ActorType, raw string) (Identity, error) {
	ns, ok := s.namespaces[actor]
	if !ok {
		return Identity{}, fmt.Errorf("%w: unknown actor type %q", ErrTokenMalformed, actor)
	}
	tok, err := jwt.Parse(raw,
		func(*jwt.Token) (interface{}, error) { return ns.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, fmt.Errorf("%w: %w", ErrTokenSignature, err)
		default:
			return Identity{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Identity{}, ErrTokenMalformed
	}
	if a, _ := claims[claimActor].(string); a != string(actor) {
		return Identity{}, fmt.Errorf("%w: token belongs to another namespace", ErrTokenMalformed)
	}
	// JSON numbers decode as float64.
	idVal, ok := claims[ns.claim].(float64)
	if !ok || idVal <= 0 {
		return Identity{}, fmt.Errorf("%w: missing %s claim", ErrTokenMalformed, ns.claim)
	}
	email, _ := claims[claimEmail].(string)
	return Identity{ID: uint64(idVal), Email: email, Actor: actor}, nil
}
