package auth

import "errors"

var (
	// ErrValidation: credenciales mal formadas (ninguna o ambas formas,
	// campos vacíos, separador en el identificador).
	ErrValidation = errors.New("auth: invalid credentials payload")
	// ErrUnauthorized: identidad inexistente o secreto incorrecto. El caller
	// no puede distinguir un caso del otro.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrConflict: el identificador ya está registrado.
	ErrConflict = errors.New("auth: identifier already registered")
	// ErrNotFound: recurso inexistente o de otro dueño.
	ErrNotFound = errors.New("auth: not found")
	// ErrSignupDisabled: el registro está deshabilitado por config.
	ErrSignupDisabled = errors.New("auth: signup disabled")
)

// ValidationError lleva el motivo concreto; errors.Is(err, ErrValidation).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "auth: invalid credentials payload: " + e.Reason
	}
	return "auth: invalid " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }
