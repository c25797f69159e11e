package identity

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/notification"
)

// -- mock repositories --

type mockPatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return ErrEmailTaken
		}
	}
	p.ID = uuid.New()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

type mockDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.doctors {
		if existing.Email == d.Email {
			return ErrEmailTaken
		}
	}
	d.ID = uuid.New()
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDoctorRepo) GetByEmail(_ context.Context, email string) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrDoctorNotFound
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) SetAvailability(_ context.Context, id uuid.UUID, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return ErrDoctorNotFound
	}
	d.Available = available
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, speciality string, limit, offset int) ([]*Doctor, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Doctor
	for _, d := range m.doctors {
		if speciality == "" || d.Speciality == speciality {
			cp := *d
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func newTestService() (*Service, *mockPatientRepo, *mockDoctorRepo, *notification.MockEmailSender) {
	patients := newMockPatientRepo()
	doctors := newMockDoctorRepo()
	sender := &notification.MockEmailSender{}
	mailer := notification.NewMailer(sender, notification.NewTemplateEngine())
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(patients, doctors, tokens, mailer, zerolog.Nop())
	return svc, patients, doctors, sender
}

// -- patients --

func TestRegisterPatient(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	p, token, err := svc.RegisterPatient(ctx, "Asha", "asha@example.com", "supersecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected patient id to be set")
	}
	if token == "" {
		t.Error("expected a token")
	}
	if p.PasswordHash == "supersecret" {
		t.Error("password must not be stored in plain text")
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@example.com", "supersecret"},
		{"bad email", "Asha", "not-an-email", "supersecret"},
		{"short password", "Asha", "a@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.RegisterPatient(ctx, tc.userName, tc.email, tc.password); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegisterPatient_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.RegisterPatient(ctx, "Asha", "asha@example.com", "supersecret"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := svc.RegisterPatient(ctx, "Other", "asha@example.com", "supersecret")
	if err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginPatient(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	registered, _, err := svc.RegisterPatient(ctx, "Asha", "asha@example.com", "supersecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	p, token, err := svc.LoginPatient(ctx, "asha@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if p.ID != registered.ID || token == "" {
		t.Error("expected matching patient and a token")
	}

	if _, _, err := svc.LoginPatient(ctx, "asha@example.com", "wrongpassword"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.LoginPatient(ctx, "nobody@example.com", "supersecret"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestUpdatePatientProfile(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	p, _, _ := svc.RegisterPatient(ctx, "Asha", "asha@example.com", "supersecret")
	p.Phone = "9999999999"
	p.Address = Address{Line1: "12 MG Road", Line2: "Pune"}
	if err := svc.UpdatePatientProfile(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := svc.GetPatient(ctx, p.ID)
	if got.Phone != "9999999999" || got.Address.Line1 != "12 MG Road" {
		t.Errorf("profile not persisted: %+v", got)
	}

	missing := &Patient{ID: uuid.New(), Name: "Ghost"}
	if err := svc.UpdatePatientProfile(ctx, missing); err != ErrPatientNotFound {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

// -- doctors --

func testDoctor() *Doctor {
	return &Doctor{
		Name:       "Dr. Verma",
		Email:      "verma@example.com",
		Speciality: "Cardiologist",
		Degree:     "MBBS, MD",
		Experience: "8 Years",
		Fees:       500,
	}
}

func TestRegisterDoctor(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	d, err := svc.RegisterDoctor(ctx, testDoctor(), "supersecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !d.Available {
		t.Error("new doctors should start available")
	}
	if d.StartHour != 9 || d.EndHour != 23 {
		t.Errorf("expected default hours 9-23, got %d-%d", d.StartHour, d.EndHour)
	}
}

func TestRegisterDoctor_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	noFee := testDoctor()
	noFee.Fees = 0
	if _, err := svc.RegisterDoctor(ctx, noFee, "supersecret"); err == nil {
		t.Error("expected error for zero fees")
	}

	badHours := testDoctor()
	badHours.StartHour = 20
	badHours.EndHour = 8
	if _, err := svc.RegisterDoctor(ctx, badHours, "supersecret"); err == nil {
		t.Error("expected error for inverted hours")
	}
}

func TestLoginDoctor(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterDoctor(ctx, testDoctor(), "supersecret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.LoginDoctor(ctx, "verma@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
}

func TestSetAvailability(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	d, _ := svc.RegisterDoctor(ctx, testDoctor(), "supersecret")
	if err := svc.SetAvailability(ctx, d.ID, false); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	got, _ := svc.GetDoctor(ctx, d.ID)
	if got.Available {
		t.Error("expected doctor to be unavailable")
	}

	if err := svc.SetAvailability(ctx, uuid.New(), false); err != ErrDoctorNotFound {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestListDoctors_PublicViewHidesEmail(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	svc.RegisterDoctor(ctx, testDoctor(), "supersecret")
	second := testDoctor()
	second.Email = "rao@example.com"
	second.Speciality = "Dermatologist"
	svc.RegisterDoctor(ctx, second, "supersecret")

	items, total, err := svc.ListDoctors(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 doctors, got %d/%d", len(items), total)
	}

	filtered, total, err := svc.ListDoctors(ctx, "Dermatologist", 10, 0)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if total != 1 || filtered[0].Speciality != "Dermatologist" {
		t.Fatalf("speciality filter broken: %+v", filtered)
	}
}

func TestRegisterPatient_SendsWelcomeEmail(t *testing.T) {
	svc, _, _, sender := newTestService()
	ctx := context.Background()

	if _, _, err := svc.RegisterPatient(ctx, "Asha", "asha@example.com", "supersecret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// The welcome email is sent in the background.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sender.Calls()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	calls := sender.Calls()
	if len(calls) != 1 || calls[0].To != "asha@example.com" {
		t.Fatalf("expected welcome email to asha@example.com, got %+v", calls)
	}
	if !strings.Contains(calls[0].Body, "Asha") {
		t.Errorf("expected rendered name in body: %q", calls[0].Body)
	}
}
