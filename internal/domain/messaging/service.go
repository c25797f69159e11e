package messaging

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/presence"
	"github.com/TheSujay/Arogya-Backend/internal/platform/ws"
)

const maxMessageLen = 4096

// Pusher delivers real-time events; the hub implements it.
type Pusher interface {
	SendToUser(userID string, event ws.Event) bool
}

type Service struct {
	messages MessageRepository
	partners PartnerSource
	pusher   Pusher
	registry presence.Registry
	logger   zerolog.Logger
}

func NewService(messages MessageRepository, partners PartnerSource, pusher Pusher, registry presence.Registry, logger zerolog.Logger) *Service {
	return &Service{
		messages: messages,
		partners: partners,
		pusher:   pusher,
		registry: registry,
		logger:   logger,
	}
}

// Send persists the message, then pushes it to the recipient's open
// connections. Delivery is best-effort: an offline recipient reads it from
// history later.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, senderRole string, receiverID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxMessageLen {
		return nil, ErrEmptyMessage
	}
	if receiverID == uuid.Nil || receiverID == senderID {
		return nil, ErrInvalidRecipient
	}

	m := &Message{
		SenderID:     senderID,
		ReceiverID:   receiverID,
		SenderRole:   senderRole,
		ReceiverRole: counterpartRole(senderRole),
		Content:      content,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		data, err := json.Marshal(m)
		if err == nil {
			delivered := s.pusher.SendToUser(receiverID.String(), ws.Event{
				Type:      "message",
				From:      senderID.String(),
				To:        receiverID.String(),
				Timestamp: m.SentAt,
				Data:      data,
			})
			if !delivered {
				s.logger.Debug().Str("receiver_id", receiverID.String()).Msg("recipient offline, message stored only")
			}
		}
	}
	return m, nil
}

// History returns the conversation and marks the other side's messages as
// read, since fetching it means the user has seen them.
func (s *Service) History(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	items, total, err := s.messages.History(ctx, userID, otherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.messages.MarkRead(ctx, userID, otherID); err != nil {
		s.logger.Warn().Err(err).Msg("mark read failed")
	}
	return items, total, nil
}

// Partners lists the user's chat counterparts with presence and unread
// counts.
func (s *Service) Partners(ctx context.Context, userID uuid.UUID, role string) ([]*Partner, error) {
	var (
		items []*Partner
		err   error
	)
	if role == auth.RoleDoctor {
		items, err = s.partners.PartnersOfDoctor(ctx, userID)
	} else {
		items, err = s.partners.PartnersOfPatient(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	for _, p := range items {
		online, err := s.registry.IsOnline(ctx, p.ID.String())
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", p.ID.String()).Msg("presence lookup failed")
		}
		p.Online = online

		unread, err := s.messages.UnreadCount(ctx, userID, p.ID)
		if err != nil {
			return nil, err
		}
		p.Unread = unread
	}
	return items, nil
}

// IsOnline reports live presence for a single user.
func (s *Service) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.registry.IsOnline(ctx, userID.String())
}

// HandleInbound receives chat frames read off a WebSocket and routes them
// through the same path as the REST endpoint.
func (s *Service) HandleInbound(senderID uuid.UUID, senderRole string, msg ws.ClientMessage) {
	if msg.Action != "send_message" {
		return
	}
	receiverID, err := uuid.Parse(msg.To)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.Send(ctx, senderID, senderRole, receiverID, msg.Content); err != nil {
		s.logger.Warn().Err(err).
			Str("sender_id", senderID.String()).
			Msg("inbound message rejected")
	}
}

func counterpartRole(role string) string {
	if role == auth.RoleDoctor {
		return auth.RolePatient
	}
	return auth.RoleDoctor
}
