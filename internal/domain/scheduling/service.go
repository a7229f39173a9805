package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/intake/internal/domain/identity"
)

// PatientDirectory looks up registered patients. Satisfied by
// *identity.Service.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

// Service coordinates the appointment lifecycle.
type Service struct {
	appointments AppointmentRepository
	patients     PatientDirectory
	logger       zerolog.Logger
}

func NewService(appointments AppointmentRepository, patients PatientDirectory, logger zerolog.Logger) *Service {
	return &Service{
		appointments: appointments,
		patients:     patients,
		logger:       logger,
	}
}

// RequestAppointmentInput is a patient's visit request.
type RequestAppointmentInput struct {
	PatientID        uuid.UUID
	PrimaryPhysician string
	Schedule         time.Time
	Reason           string
	Note             string
}

// RequestAppointment records a new visit request in the pending state. The
// patient must be registered and the requested doctor must be on the roster.
func (s *Service) RequestAppointment(ctx context.Context, in RequestAppointmentInput) (*Appointment, error) {
	if in.Schedule.IsZero() {
		return nil, ErrScheduleRequired
	}
	if !KnownDoctor(in.PrimaryPhysician) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDoctor, in.PrimaryPhysician)
	}

	patient, err := s.patients.GetPatient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID:        patient.ID,
		UserID:           patient.UserID,
		Status:           StatusPending,
		PrimaryPhysician: in.PrimaryPhysician,
		Schedule:         in.Schedule,
		Reason:           strings.TrimSpace(in.Reason),
		Note:             strings.TrimSpace(in.Note),
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("patient_id", a.PatientID.String()).
		Str("physician", a.PrimaryPhysician).
		Msg("appointment requested")

	return a, nil
}

// ScheduleAppointmentInput is the staff confirmation of a pending request.
// Staff may move the appointment to a different doctor or time than the
// patient asked for.
type ScheduleAppointmentInput struct {
	PrimaryPhysician string
	Schedule         time.Time
}

// ScheduleAppointment confirms a pending appointment.
func (s *Service) ScheduleAppointment(ctx context.Context, id uuid.UUID, in ScheduleAppointmentInput) (*Appointment, error) {
	if in.Schedule.IsZero() {
		return nil, ErrScheduleRequired
	}
	if !KnownDoctor(in.PrimaryPhysician) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDoctor, in.PrimaryPhysician)
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := a.MarkScheduled(in.PrimaryPhysician, in.Schedule); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("physician", a.PrimaryPhysician).
		Time("schedule", a.Schedule).
		Msg("appointment scheduled")

	return a, nil
}

// CancelAppointment moves an appointment to its terminal cancelled state.
// Cancelling an already-cancelled appointment with the same reason is a
// no-op that returns the current record; any other move out of cancelled is
// rejected.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Status == StatusCancelled {
		if a.CancellationReason == reason {
			return a, nil
		}
		return nil, ErrInvalidTransition
	}

	if err := a.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("reason", reason).
		Msg("appointment cancelled")

	return a, nil
}

// GetAppointment returns an appointment by ID.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// ListByPatient returns a patient's appointments, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

// ListRecent returns all appointments, newest first. Used by the staff
// dashboard.
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListRecent(ctx, limit, offset)
}

// CountByStatus returns the dashboard counters.
func (s *Service) CountByStatus(ctx context.Context) (StatusCounts, error) {
	return s.appointments.CountByStatus(ctx)
}

// IsNotFound reports whether err means the appointment or patient does not
// exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAppointmentNotFound) || errors.Is(err, identity.ErrPatientNotFound)
}
