package identity

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPatientNotFound    = errors.New("patient not found")
	ErrDoctorNotFound     = errors.New("doctor not found")
)
