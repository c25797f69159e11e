package messaging

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrInvalidRecipient = errors.New("invalid recipient")
)

// Message is a persisted chat line between a patient and a doctor. Delivery
// over the socket is best-effort; the row is the source of truth.
type Message struct {
	ID           uuid.UUID `json:"id"`
	SenderID     uuid.UUID `json:"sender_id"`
	ReceiverID   uuid.UUID `json:"receiver_id"`
	SenderRole   string    `json:"sender_role"`
	ReceiverRole string    `json:"receiver_role"`
	Content      string    `json:"content"`
	Read         bool      `json:"read"`
	SentAt       time.Time `json:"sent_at"`
}

// Partner is an entry in a user's chat list: the counterpart of a live
// appointment, decorated with their current presence.
type Partner struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Image  string    `json:"image"`
	Role   string    `json:"role"`
	Online bool      `json:"online"`
	Unread int       `json:"unread"`
}
