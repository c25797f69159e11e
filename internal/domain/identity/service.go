package identity

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/notification"
)

const minPasswordLen = 8

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
	tokens   *auth.TokenIssuer
	mailer   *notification.Mailer
	logger   zerolog.Logger
}

func NewService(patients PatientRepository, doctors DoctorRepository, tokens *auth.TokenIssuer, mailer *notification.Mailer, logger zerolog.Logger) *Service {
	return &Service{patients: patients, doctors: doctors, tokens: tokens, mailer: mailer, logger: logger}
}

func validateCredentials(name, email, password string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// -- Patients --

func (s *Service) RegisterPatient(ctx context.Context, name, email, password string) (*Patient, string, error) {
	if err := validateCredentials(name, email, password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	p := &Patient{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(p.ID, auth.RolePatient)
	if err != nil {
		return nil, "", err
	}

	s.sendWelcome(p.Name, p.Email)
	return p, token, nil
}

func (s *Service) LoginPatient(ctx context.Context, email, password string) (*Patient, string, error) {
	p, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(p.ID, auth.RolePatient)
	if err != nil {
		return nil, "", err
	}
	return p, token, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatientProfile(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	// Ensure the row exists before the blind update.
	if _, err := s.patients.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

// -- Doctors --

func (s *Service) RegisterDoctor(ctx context.Context, d *Doctor, password string) (*Doctor, error) {
	if err := validateCredentials(d.Name, d.Email, password); err != nil {
		return nil, err
	}
	if d.Speciality == "" {
		return nil, fmt.Errorf("speciality is required")
	}
	if d.Fees <= 0 {
		return nil, fmt.Errorf("fees must be positive")
	}
	if d.StartHour == 0 && d.EndHour == 0 {
		d.StartHour, d.EndHour = 9, 23
	}
	if d.StartHour < 0 || d.EndHour > 24 || d.StartHour >= d.EndHour {
		return nil, fmt.Errorf("invalid consulting hours")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	d.PasswordHash = string(hash)
	d.Available = true

	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}

	s.sendWelcome(d.Name, d.Email)
	return d, nil
}

func (s *Service) LoginDoctor(ctx context.Context, email, password string) (*Doctor, string, error) {
	d, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(d.ID, auth.RoleDoctor)
	if err != nil {
		return nil, "", err
	}
	return d, token, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctorProfile(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Fees <= 0 {
		return fmt.Errorf("fees must be positive")
	}
	if _, err := s.doctors.GetByID(ctx, d.ID); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

// SetAvailability toggles whether the doctor accepts new bookings.
func (s *Service) SetAvailability(ctx context.Context, doctorID uuid.UUID, available bool) error {
	return s.doctors.SetAvailability(ctx, doctorID, available)
}

// ListDoctors returns the public directory, optionally filtered by speciality.
func (s *Service) ListDoctors(ctx context.Context, speciality string, limit, offset int) ([]*PublicDoctor, int, error) {
	doctors, total, err := s.doctors.List(ctx, speciality, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	public := make([]*PublicDoctor, len(doctors))
	for i, d := range doctors {
		public[i] = d.Public()
	}
	return public, total, nil
}

// sendWelcome fires the welcome email in the background. Registration never
// fails on a mail error.
func (s *Service) sendWelcome(name, email string) {
	if s.mailer == nil {
		return
	}
	go func() {
		data := map[string]string{"name": name}
		if err := s.mailer.SendFromTemplate(context.Background(), "welcome", data, email); err != nil {
			s.logger.Warn().Err(err).Str("email", email).Msg("welcome email failed")
		}
	}()
}
