package messaging

import (
	"context"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// History returns the conversation between two users in both directions,
	// newest last.
	History(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*Message, int, error)
	// MarkRead flags every unread message from senderID to readerID. Nothing
	// to mark is not an error.
	MarkRead(ctx context.Context, readerID, senderID uuid.UUID) error
	UnreadCount(ctx context.Context, readerID, senderID uuid.UUID) (int, error)
}

// PartnerSource lists who a user may chat with. Conversations piggyback on
// the appointment ledger: the counterpart of any non-cancelled appointment is
// a partner.
type PartnerSource interface {
	PartnersOfPatient(ctx context.Context, patientID uuid.UUID) ([]*Partner, error)
	PartnersOfDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Partner, error)
}
