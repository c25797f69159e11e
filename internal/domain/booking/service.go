package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TheSujay/Arogya-Backend/internal/domain/identity"
	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/notification"
	"github.com/TheSujay/Arogya-Backend/internal/platform/payment"
)

// TxRunner runs fn atomically. In production it wraps the pgx pool via
// db.WithTx; tests pass a plain function call.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a transaction.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	appointments AppointmentRepository
	slots        SlotCalendar
	patients     identity.PatientRepository
	doctors      identity.DoctorRepository
	gateway      payment.Gateway
	mailer       *notification.Mailer
	inTx         TxRunner
	currency     string
	logger       zerolog.Logger
}

func NewService(
	appointments AppointmentRepository,
	slots SlotCalendar,
	patients identity.PatientRepository,
	doctors identity.DoctorRepository,
	gateway payment.Gateway,
	mailer *notification.Mailer,
	inTx TxRunner,
	currency string,
	logger zerolog.Logger,
) *Service {
	if inTx == nil {
		inTx = PassthroughTx
	}
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		appointments: appointments,
		slots:        slots,
		patients:     patients,
		doctors:      doctors,
		gateway:      gateway,
		mailer:       mailer,
		inTx:         inTx,
		currency:     currency,
		logger:       logger,
	}
}

// Book reserves the slot and writes the ledger entry in one transaction.
// The doctor's fee and both display snapshots are captured at this moment.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, date, timeLabel string) (*Appointment, error) {
	if !validSlot(date, timeLabel) {
		return nil, ErrInvalidSlot
	}

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Available {
		return nil, ErrDoctorUnavailable
	}

	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		SlotDate:  date,
		SlotTime:  timeLabel,
		Amount:    doctor.Fees,
		UserData:  snapshotPatient(patient),
		DocData:   snapshotDoctor(doctor),
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.slots.Reserve(ctx, doctorID, date, timeLabel); err != nil {
			return err
		}
		return s.appointments.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.sendMail(a, "appointment-booked")
	return a, nil
}

// Cancel flips the cancelled flag and frees the slot. Cancelling an already
// cancelled appointment is a no-op success; the slot release tolerates a
// missing reservation the same way.
func (s *Service) Cancel(ctx context.Context, appointmentID, callerID uuid.UUID, role string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(a, callerID, role); err != nil {
		return nil, err
	}
	if a.Cancelled {
		return a, nil
	}

	a.Cancelled = true
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.appointments.Update(ctx, a); err != nil {
			return err
		}
		return s.slots.Release(ctx, a.DoctorID, a.SlotDate, a.SlotTime)
	})
	if err != nil {
		return nil, err
	}

	s.sendMail(a, "appointment-cancelled")
	return a, nil
}

// Confirm marks the appointment confirmed by its doctor and emails the
// patient. The returned bool reports whether the notification went out; a
// mail failure never undoes the confirmation. Confirming twice is a no-op.
func (s *Service) Confirm(ctx context.Context, appointmentID, doctorID uuid.UUID) (*Appointment, bool, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, false, err
	}
	if a.DoctorID != doctorID {
		return nil, false, ErrNotOwner
	}
	if a.Cancelled {
		return nil, false, ErrCancelled
	}
	if a.Confirmed {
		return a, true, nil
	}

	a.Confirmed = true
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, false, err
	}

	notified := true
	if s.mailer != nil {
		mailCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendFromTemplate(mailCtx, "appointment-confirmed", mailData(a), a.UserData.Email); err != nil {
			s.logger.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("confirmation email failed")
			notified = false
		}
	}
	return a, notified, nil
}

// Complete marks the visit as done. Monotonic: completing twice is a no-op.
func (s *Service) Complete(ctx context.Context, appointmentID, doctorID uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, ErrNotOwner
	}
	if a.Cancelled {
		return nil, ErrCancelled
	}
	if a.IsCompleted {
		return a, nil
	}

	a.IsCompleted = true
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AttachRecord lets the treating doctor attach diagnosis, prescription and a
// report link to a completed visit.
func (s *Service) AttachRecord(ctx context.Context, appointmentID, doctorID uuid.UUID, diagnosis, prescription, reportURL string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, ErrNotOwner
	}
	if !a.IsCompleted {
		return nil, ErrNotCompleted
	}

	a.Diagnosis = diagnosis
	a.Prescription = prescription
	a.ReportURL = reportURL
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) DoctorDashboard(ctx context.Context, doctorID uuid.UUID) (*DoctorStats, error) {
	return s.appointments.DoctorStats(ctx, doctorID)
}

// BookedSlots returns the doctor's reserved slots so the frontend can grey
// them out.
func (s *Service) BookedSlots(ctx context.Context, doctorID uuid.UUID) (map[string][]string, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.slots.BookedSlots(ctx, doctorID)
}

// -- payments --

// CreateOrder opens a payment order for the appointment's fee. The gateway
// amount is in the smallest currency unit and the receipt carries the
// appointment id, which ConfirmPayment later uses to find its way back.
// Nothing is persisted here; a gateway failure leaves no state behind.
func (s *Service) CreateOrder(ctx context.Context, appointmentID, callerID uuid.UUID) (*payment.Order, error) {
	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.PatientID != callerID {
		return nil, ErrNotOwner
	}
	if a.Cancelled {
		return nil, ErrCancelled
	}

	order, err := s.gateway.CreateOrder(ctx, int64(a.Amount)*100, s.currency, a.ID.String())
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmPayment verifies the order with the provider and marks the
// appointment paid. A callback for an already-paid appointment is a no-op
// success, so provider retries are harmless.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) (*Appointment, error) {
	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != payment.StatusPaid {
		return nil, ErrPaymentPending
	}

	appointmentID, err := uuid.Parse(order.Receipt)
	if err != nil {
		return nil, fmt.Errorf("order %s has malformed receipt %q", orderID, order.Receipt)
	}

	a, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.Payment {
		return a, nil
	}

	a.Payment = true
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// -- helpers --

func (s *Service) authorize(a *Appointment, callerID uuid.UUID, role string) error {
	switch role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleDoctor:
		if a.DoctorID != callerID {
			return ErrNotOwner
		}
	default:
		if a.PatientID != callerID {
			return ErrNotOwner
		}
	}
	return nil
}

func mailData(a *Appointment) map[string]string {
	return map[string]string{
		"patient_name": a.UserData.Name,
		"doctor_name":  a.DocData.Name,
		"date":         a.SlotDate,
		"time":         a.SlotTime,
	}
}

// sendMail fires a booking-lifecycle email in the background; failures are
// logged and never surfaced.
func (s *Service) sendMail(a *Appointment, templateID string) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendFromTemplate(ctx, templateID, mailData(a), a.UserData.Email); err != nil {
			s.logger.Warn().Err(err).
				Str("appointment_id", a.ID.String()).
				Str("template", templateID).
				Msg("booking email failed")
		}
	}()
}
