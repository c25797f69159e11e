package booking

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/TheSujay/Arogya-Backend/internal/domain/identity"
)

// Slot dates travel as DD_MM_YYYY strings and slot times as display labels
// ("09:30 AM"); both are opaque keys, never parsed into calendar types.
var slotDatePattern = regexp.MustCompile(`^\d{1,2}_\d{1,2}_\d{4}$`)

func validSlot(date, timeLabel string) bool {
	return slotDatePattern.MatchString(date) && timeLabel != ""
}

// PatientSnapshot is the display copy of the patient embedded in the ledger
// entry at booking time. Later profile edits do not rewrite history.
type PatientSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
	Phone string `json:"phone"`
	DOB   string `json:"dob"`
}

// DoctorSnapshot is the display copy of the doctor embedded at booking time.
type DoctorSnapshot struct {
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Image      string           `json:"image"`
	Speciality string           `json:"speciality"`
	Degree     string           `json:"degree"`
	Fees       int              `json:"fees"`
	Address    identity.Address `json:"address"`
}

// Appointment is a ledger entry. Rows are never deleted; cancellation and
// completion only flip flags, so the history stays auditable.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	SlotDate  string    `json:"slot_date"`
	SlotTime  string    `json:"slot_time"`

	// Amount is the doctor's fee captured at booking time.
	Amount int `json:"amount"`

	Cancelled   bool `json:"cancelled"`
	Confirmed   bool `json:"confirmed"`
	IsCompleted bool `json:"is_completed"`
	Payment     bool `json:"payment"`

	UserData PatientSnapshot `json:"user_data"`
	DocData  DoctorSnapshot  `json:"doc_data"`

	Diagnosis    string `json:"diagnosis,omitempty"`
	Prescription string `json:"prescription,omitempty"`
	ReportURL    string `json:"report_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DoctorStats backs the doctor dashboard.
type DoctorStats struct {
	Earnings     int            `json:"earnings"`
	Patients     int            `json:"patients"`
	Appointments int            `json:"appointments"`
	Latest       []*Appointment `json:"latest"`
}

func snapshotPatient(p *identity.Patient) PatientSnapshot {
	return PatientSnapshot{
		Name:  p.Name,
		Email: p.Email,
		Image: p.Image,
		Phone: p.Phone,
		DOB:   p.DOB,
	}
}

func snapshotDoctor(d *identity.Doctor) DoctorSnapshot {
	return DoctorSnapshot{
		Name:       d.Name,
		Email:      d.Email,
		Image:      d.Image,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Fees:       d.Fees,
		Address:    d.Address,
	}
}
