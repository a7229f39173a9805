// Package scheduling manages the appointment lifecycle: a patient requests a
// visit, staff confirm it with a doctor and time, or cancel it with a reason.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

// canTransitionTo encodes the allowed lifecycle moves. Cancelled is terminal.
var canTransitionTo = map[Status][]Status{
	StatusPending:   {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusCancelled},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to
// target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range canTransitionTo[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCancelled:
		return true
	}
	return false
}

// Doctors is the clinic's physician roster. Appointment requests must name
// one of these.
var Doctors = []string{
	"Dr. Adams",
	"Dr. Cruz",
	"Dr. Green",
	"Dr. Lee",
	"Dr. Livingston",
	"Dr. Peter",
	"Dr. Powell",
	"Dr. Remirez",
	"Dr. Sharma",
}

// KnownDoctor reports whether name is on the roster.
func KnownDoctor(name string) bool {
	for _, d := range Doctors {
		if d == name {
			return true
		}
	}
	return false
}

// Appointment is a visit request and its lifecycle state. While pending or
// scheduled it carries the visit details; once cancelled it carries only the
// cancellation reason.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	UserID    uuid.UUID `json:"user_id"`

	Status Status `json:"status"`

	PrimaryPhysician string    `json:"primary_physician,omitempty"`
	Schedule         time.Time `json:"schedule,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	Note             string    `json:"note,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkScheduled confirms the appointment with a doctor and time. Staff may
// adjust the doctor and time from what the patient requested.
func (a *Appointment) MarkScheduled(physician string, schedule time.Time) error {
	if !a.Status.CanTransitionTo(StatusScheduled) {
		return ErrInvalidTransition
	}
	a.Status = StatusScheduled
	a.PrimaryPhysician = physician
	a.Schedule = schedule
	return nil
}

// Cancel moves the appointment to its terminal state. The visit details are
// cleared so a cancelled record carries only the reason it was cancelled.
func (a *Appointment) Cancel(reason string) error {
	if !a.Status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	a.Status = StatusCancelled
	a.CancellationReason = reason
	a.PrimaryPhysician = ""
	a.Schedule = time.Time{}
	a.Reason = ""
	a.Note = ""
	return nil
}

// StatusCounts summarises how many appointments sit in each lifecycle state.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Scheduled int `json:"scheduled"`
	Cancelled int `json:"cancelled"`
}
