package scheduling

import "errors"

var (
	// ErrAppointmentNotFound is returned when no appointment exists with the
	// given ID.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned when a lifecycle move is not allowed,
	// e.g. scheduling or re-cancelling a cancelled appointment.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownDoctor is returned when a request names a physician who is
	// not on the roster.
	ErrUnknownDoctor = errors.New("unknown doctor")

	// ErrScheduleRequired is returned when a request or confirmation has no
	// appointment time.
	ErrScheduleRequired = errors.New("appointment time is required")

	// ErrReasonRequired is returned when a cancellation has no reason.
	ErrReasonRequired = errors.New("cancellation reason is required")
)
