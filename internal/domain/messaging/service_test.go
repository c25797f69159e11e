package messaging

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/presence"
	"github.com/TheSujay/Arogya-Backend/internal/platform/ws"
)

// -- mocks --

type mockMessageRepo struct {
	mu       sync.Mutex
	messages []*Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = uuid.New()
	msg.SentAt = time.Now()
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *mockMessageRepo) History(_ context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Message
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.ReceiverID == otherID) ||
			(msg.SenderID == otherID && msg.ReceiverID == userID) {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockMessageRepo) MarkRead(_ context.Context, readerID, senderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ReceiverID == readerID && msg.SenderID == senderID {
			msg.Read = true
		}
	}
	return nil
}

func (m *mockMessageRepo) UnreadCount(_ context.Context, readerID, senderID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.messages {
		if msg.ReceiverID == readerID && msg.SenderID == senderID && !msg.Read {
			n++
		}
	}
	return n, nil
}

type mockPartnerSource struct {
	ofPatient []*Partner
	ofDoctor  []*Partner
}

func (m *mockPartnerSource) PartnersOfPatient(_ context.Context, _ uuid.UUID) ([]*Partner, error) {
	return m.ofPatient, nil
}

func (m *mockPartnerSource) PartnersOfDoctor(_ context.Context, _ uuid.UUID) ([]*Partner, error) {
	return m.ofDoctor, nil
}

type mockPusher struct {
	mu     sync.Mutex
	events map[string][]ws.Event
	online map[string]bool
}

func newMockPusher() *mockPusher {
	return &mockPusher{events: make(map[string][]ws.Event), online: make(map[string]bool)}
}

func (m *mockPusher) SendToUser(userID string, event ws.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[userID] = append(m.events[userID], event)
	return m.online[userID]
}

func (m *mockPusher) eventsFor(userID string) []ws.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ws.Event(nil), m.events[userID]...)
}

func newTestService(partners *mockPartnerSource) (*Service, *mockMessageRepo, *mockPusher, presence.Registry) {
	repo := &mockMessageRepo{}
	pusher := newMockPusher()
	registry := presence.NewMemoryRegistry()
	if partners == nil {
		partners = &mockPartnerSource{}
	}
	svc := NewService(repo, partners, pusher, registry, zerolog.Nop())
	return svc, repo, pusher, registry
}

// -- tests --

func TestSend_PersistsAndPushes(t *testing.T) {
	svc, repo, pusher, _ := newTestService(nil)
	ctx := context.Background()
	sender, receiver := uuid.New(), uuid.New()

	m, err := svc.Send(ctx, sender, auth.RolePatient, receiver, "hello doctor")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID == uuid.Nil || m.ReceiverRole != auth.RoleDoctor {
		t.Errorf("unexpected message: %+v", m)
	}

	repo.mu.Lock()
	stored := len(repo.messages)
	repo.mu.Unlock()
	if stored != 1 {
		t.Fatalf("expected 1 persisted message, got %d", stored)
	}

	events := pusher.eventsFor(receiver.String())
	if len(events) != 1 || events[0].Type != "message" {
		t.Fatalf("expected one pushed event, got %+v", events)
	}
}

func TestSend_OfflineRecipientStillPersists(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)

	// The mock pusher reports no delivery; the message must survive anyway.
	if _, err := svc.Send(context.Background(), uuid.New(), auth.RolePatient, uuid.New(), "are you there?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.messages) != 1 {
		t.Fatalf("expected the message persisted, got %d", len(repo.messages))
	}
}

func TestSend_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	ctx := context.Background()
	sender := uuid.New()

	if _, err := svc.Send(ctx, sender, auth.RolePatient, uuid.New(), "   "); err != ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage for whitespace, got %v", err)
	}
	if _, err := svc.Send(ctx, sender, auth.RolePatient, uuid.New(), strings.Repeat("x", maxMessageLen+1)); err != ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage for oversized content, got %v", err)
	}
	if _, err := svc.Send(ctx, sender, auth.RolePatient, sender, "note to self"); err != ErrInvalidRecipient {
		t.Fatalf("expected ErrInvalidRecipient for self-send, got %v", err)
	}
	if _, err := svc.Send(ctx, sender, auth.RolePatient, uuid.Nil, "hi"); err != ErrInvalidRecipient {
		t.Fatalf("expected ErrInvalidRecipient for nil recipient, got %v", err)
	}
}

func TestHistory_MarksRead(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)
	ctx := context.Background()
	patient, doctor := uuid.New(), uuid.New()

	svc.Send(ctx, patient, auth.RolePatient, doctor, "first")
	svc.Send(ctx, doctor, auth.RoleDoctor, patient, "second")

	items, total, err := svc.History(ctx, patient, doctor, 50, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected both directions, got %d/%d", len(items), total)
	}

	// Fetching history marks the doctor's messages to the patient as read.
	unread, _ := repo.UnreadCount(ctx, patient, doctor)
	if unread != 0 {
		t.Errorf("expected 0 unread after history fetch, got %d", unread)
	}
	// The patient's own outbound message is untouched.
	unread, _ = repo.UnreadCount(ctx, doctor, patient)
	if unread != 1 {
		t.Errorf("expected doctor to still have 1 unread, got %d", unread)
	}
}

func TestPartners_PresenceAndUnread(t *testing.T) {
	doctorID := uuid.New()
	partners := &mockPartnerSource{
		ofPatient: []*Partner{{ID: doctorID, Name: "Dr. Verma", Role: auth.RoleDoctor}},
	}
	svc, _, _, registry := newTestService(partners)
	ctx := context.Background()
	patient := uuid.New()

	svc.Send(ctx, doctorID, auth.RoleDoctor, patient, "your reports are ready")
	if _, err := registry.Connect(ctx, doctorID.String()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	got, err := svc.Partners(ctx, patient, auth.RolePatient)
	if err != nil {
		t.Fatalf("partners: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 partner, got %d", len(got))
	}
	if !got[0].Online {
		t.Error("expected partner online")
	}
	if got[0].Unread != 1 {
		t.Errorf("expected 1 unread, got %d", got[0].Unread)
	}
}

func TestHandleInbound(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)
	sender, receiver := uuid.New(), uuid.New()

	svc.HandleInbound(sender, auth.RolePatient, ws.ClientMessage{
		Action:  "send_message",
		To:      receiver.String(),
		Content: "hello",
	})
	repo.mu.Lock()
	stored := len(repo.messages)
	repo.mu.Unlock()
	if stored != 1 {
		t.Fatalf("expected 1 message, got %d", stored)
	}

	// Unknown actions and malformed recipients are dropped silently.
	svc.HandleInbound(sender, auth.RolePatient, ws.ClientMessage{Action: "typing", To: receiver.String()})
	svc.HandleInbound(sender, auth.RolePatient, ws.ClientMessage{Action: "send_message", To: "not-a-uuid", Content: "x"})
	repo.mu.Lock()
	stored = len(repo.messages)
	repo.mu.Unlock()
	if stored != 1 {
		t.Fatalf("expected still 1 message, got %d", stored)
	}
}
