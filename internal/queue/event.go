// Package queue defines the account events exchanged over RabbitMQ and the
// publisher and consumer that move them.
package queue

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/iliyamo/ecomm-delivery-backend/internal/model"
)

// Event types published on the account events queue.
const (
	EventUserRegistered       = "user.registered"
	EventUserDeleted          = "user.deleted"
	EventPartnerRegistered    = "partner.registered"
	EventPartnerStatusChanged = "partner.status_changed"
	EventOTPIssued            = "otp.issued"
)

// AccountEvent is emitted after an account change has been committed.  It
// never carries secrets: no password digests and no OTP codes.
type AccountEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Actor      model.ActorType `json:"actor"`
	ActorID    uint64          `json:"actor_id"`
	Email      string          `json:"email,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewAccountEvent stamps a new event with a ULID and the current UTC time.
func NewAccountEvent(typ string, actor model.ActorType, actorID uint64, email string) AccountEvent {
	now := time.Now().UTC()
	return AccountEvent{
		ID:         ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Type:       typ,
		Actor:      actor,
		ActorID:    actorID,
		Email:      email,
		OccurredAt: now,
	}
}

// DecodeEvent parses a message body and rejects events without a type.
func DecodeEvent(body []byte) (AccountEvent, error) {
	var ev AccountEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return AccountEvent{}, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return AccountEvent{}, fmt.Errorf("event %q has no type", ev.ID)
	}
	return ev, nil
}
