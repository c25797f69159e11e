package booking

import (
	"context"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	// Create inserts a new ledger entry. A unique-index conflict on the
	// live-slot index is returned as ErrSlotTaken.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Update persists the mutable fields: status flags and the post-visit
	// record.
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// DoctorStats aggregates the dashboard numbers: earnings from completed
	// or paid appointments, distinct patients, and the latest entries.
	DoctorStats(ctx context.Context, doctorID uuid.UUID) (*DoctorStats, error)
}
