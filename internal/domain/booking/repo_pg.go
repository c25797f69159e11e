package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheSujay/Arogya-Backend/internal/platform/db"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, slot_date, slot_time, amount,
	cancelled, confirmed, is_completed, payment, user_data, doc_data,
	diagnosis, prescription, report_url, created_at, updated_at`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.SlotDate, &a.SlotTime, &a.Amount,
		&a.Cancelled, &a.Confirmed, &a.IsCompleted, &a.Payment, &a.UserData, &a.DocData,
		&a.Diagnosis, &a.Prescription, &a.ReportURL, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, slot_date, slot_time, amount,
			cancelled, confirmed, is_completed, payment, user_data, doc_data,
			diagnosis, prescription, report_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		a.ID, a.PatientID, a.DoctorID, a.SlotDate, a.SlotTime, a.Amount,
		a.Cancelled, a.Confirmed, a.IsCompleted, a.Payment, a.UserData, a.DocData,
		a.Diagnosis, a.Prescription, a.ReportURL)
	if isUniqueViolation(err) {
		// The partial unique index only covers live rows, so this is a
		// concurrent booking of the same slot.
		return ErrSlotTaken
	}
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET cancelled=$2, confirmed=$3, is_completed=$4, payment=$5,
			diagnosis=$6, prescription=$7, report_url=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Cancelled, a.Confirmed, a.IsCompleted, a.Payment,
		a.Diagnosis, a.Prescription, a.ReportURL)
	return err
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE doctor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

func (r *appointmentRepoPG) DoctorStats(ctx context.Context, doctorID uuid.UUID) (*DoctorStats, error) {
	stats := &DoctorStats{}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE NOT cancelled AND (is_completed OR payment)), 0),
			COUNT(DISTINCT patient_id),
			COUNT(*)
		FROM appointment WHERE doctor_id = $1`, doctorID).
		Scan(&stats.Earnings, &stats.Patients, &stats.Appointments)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE doctor_id = $1 ORDER BY created_at DESC LIMIT 5`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		stats.Latest = append(stats.Latest, a)
	}
	return stats, nil
}

// =========== Slot Calendar (PostgreSQL) ===========

type slotCalendarPG struct{ pool *pgxpool.Pool }

func NewSlotCalendarPG(pool *pgxpool.Pool) SlotCalendar { return &slotCalendarPG{pool: pool} }

func (c *slotCalendarPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return c.pool
}

func (c *slotCalendarPG) Reserve(ctx context.Context, doctorID uuid.UUID, date, timeLabel string) error {
	_, err := c.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_slot (doctor_id, slot_date, slot_time)
		VALUES ($1,$2,$3)`, doctorID, date, timeLabel)
	if isUniqueViolation(err) {
		return ErrSlotTaken
	}
	return err
}

func (c *slotCalendarPG) Release(ctx context.Context, doctorID uuid.UUID, date, timeLabel string) error {
	// Deleting an absent row is fine; the slot is simply not booked.
	_, err := c.conn(ctx).Exec(ctx, `
		DELETE FROM doctor_slot WHERE doctor_id=$1 AND slot_date=$2 AND slot_time=$3`,
		doctorID, date, timeLabel)
	return err
}

func (c *slotCalendarPG) IsBooked(ctx context.Context, doctorID uuid.UUID, date, timeLabel string) (bool, error) {
	var exists bool
	err := c.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM doctor_slot WHERE doctor_id=$1 AND slot_date=$2 AND slot_time=$3)`,
		doctorID, date, timeLabel).Scan(&exists)
	return exists, err
}

func (c *slotCalendarPG) BookedSlots(ctx context.Context, doctorID uuid.UUID) (map[string][]string, error) {
	rows, err := c.conn(ctx).Query(ctx, `
		SELECT slot_date, slot_time FROM doctor_slot WHERE doctor_id = $1 ORDER BY slot_date, slot_time`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var date, timeLabel string
		if err := rows.Scan(&date, &timeLabel); err != nil {
			return nil, err
		}
		out[date] = append(out[date], timeLabel)
	}
	return out, rows.Err()
}
