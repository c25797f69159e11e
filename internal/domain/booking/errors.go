package booking

import "errors"

var (
	// ErrSlotTaken is returned when the (doctor, date, time) triple already
	// has a live reservation. The storage layer translates unique-index
	// violations into it, so concurrent bookings lose cleanly.
	ErrSlotTaken = errors.New("slot already booked")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorUnavailable   = errors.New("doctor is not accepting appointments")
	ErrNotOwner            = errors.New("appointment belongs to another user")
	ErrCancelled           = errors.New("appointment is cancelled")
	ErrNotCompleted        = errors.New("appointment is not completed yet")
	ErrPaymentPending      = errors.New("payment has not been completed")
	ErrInvalidSlot         = errors.New("invalid slot date or time")
)
