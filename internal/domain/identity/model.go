package identity

import (
	"time"

	"github.com/google/uuid"
)

// Address is stored as jsonb; the frontend edits both lines independently.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

type Patient struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Image        string    `json:"image"`
	Phone        string    `json:"phone"`
	Address      Address   `json:"address"`
	Gender       string    `json:"gender"`
	DOB          string    `json:"dob"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Doctor struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Image        string    `json:"image"`
	Speciality   string    `json:"speciality"`
	Degree       string    `json:"degree"`
	Experience   string    `json:"experience"`
	About        string    `json:"about"`
	Available    bool      `json:"available"`
	Fees         int       `json:"fees"`
	StartHour    int       `json:"start_hour"`
	EndHour      int       `json:"end_hour"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicDoctor is the directory view exposed without authentication. Email
// stays private.
type PublicDoctor struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Speciality string    `json:"speciality"`
	Degree     string    `json:"degree"`
	Experience string    `json:"experience"`
	About      string    `json:"about"`
	Available  bool      `json:"available"`
	Fees       int       `json:"fees"`
	Address    Address   `json:"address"`
}

func (d *Doctor) Public() *PublicDoctor {
	return &PublicDoctor{
		ID:         d.ID,
		Name:       d.Name,
		Image:      d.Image,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Experience: d.Experience,
		About:      d.About,
		Available:  d.Available,
		Fees:       d.Fees,
		Address:    d.Address,
	}
}
