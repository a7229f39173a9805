package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/intake/internal/domain/identity"
	"github.com/clinic/intake/internal/domain/scheduling"
)

// Backend routes accepted submissions to the identity and scheduling
// services. It assumes the values have already passed the form's schema, so
// references parse and timestamps are canonical RFC3339.
type Backend struct {
	identity   *identity.Service
	scheduling *scheduling.Service
}

func NewBackend(identitySvc *identity.Service, schedulingSvc *scheduling.Service) *Backend {
	return &Backend{identity: identitySvc, scheduling: schedulingSvc}
}

func (b *Backend) Submit(ctx context.Context, form string, values map[string]string) (string, error) {
	switch form {
	case "patient":
		user, _, err := b.identity.CreateUser(ctx, identity.NewUserInput{
			Name:  values["name"],
			Email: values["email"],
			Phone: values["phone"],
		})
		if err != nil {
			return "", err
		}
		return user.ID.String(), nil

	case "register":
		userID := uuid.MustParse(values["user_id"])
		birthDate, err := time.Parse("2006-01-02", values["birth_date"])
		if err != nil {
			return "", fmt.Errorf("parse birth date: %w", err)
		}

		patient, err := b.identity.RegisterPatient(ctx, identity.RegisterPatientInput{
			UserID: userID,
			Patient: identity.Patient{
				Name:                     values["name"],
				Email:                    values["email"],
				Phone:                    values["phone"],
				BirthDate:                birthDate,
				Gender:                   values["gender"],
				Address:                  values["address"],
				Occupation:               values["occupation"],
				EmergencyContactName:     values["emergency_contact_name"],
				EmergencyContactNumber:   values["emergency_contact_number"],
				PrimaryPhysician:         values["primary_physician"],
				InsuranceProvider:        values["insurance_provider"],
				InsurancePolicyNumber:    values["insurance_policy_number"],
				Allergies:                values["allergies"],
				CurrentMedication:        values["current_medication"],
				FamilyMedicalHistory:     values["family_medical_history"],
				PastMedicalHistory:       values["past_medical_history"],
				IdentificationType:       values["identification_type"],
				IdentificationNumber:     values["identification_number"],
				IdentificationDocumentID: values["identification_document_id"],
				TreatmentConsent:         values["treatment_consent"] == "true",
				DisclosureConsent:        values["disclosure_consent"] == "true",
				PrivacyConsent:           values["privacy_consent"] == "true",
			},
		})
		if err != nil {
			return "", err
		}
		return patient.ID.String(), nil

	case "appointment-create":
		schedule, err := time.Parse(time.RFC3339, values["schedule"])
		if err != nil {
			return "", fmt.Errorf("parse schedule: %w", err)
		}

		appt, err := b.scheduling.RequestAppointment(ctx, scheduling.RequestAppointmentInput{
			PatientID:        uuid.MustParse(values["patient_id"]),
			PrimaryPhysician: values["primary_physician"],
			Schedule:         schedule,
			Reason:           values["reason"],
			Note:             values["note"],
		})
		if err != nil {
			return "", err
		}
		return appt.ID.String(), nil

	case "appointment-schedule":
		schedule, err := time.Parse(time.RFC3339, values["schedule"])
		if err != nil {
			return "", fmt.Errorf("parse schedule: %w", err)
		}

		appt, err := b.scheduling.ScheduleAppointment(ctx,
			uuid.MustParse(values["appointment_id"]),
			scheduling.ScheduleAppointmentInput{
				PrimaryPhysician: values["primary_physician"],
				Schedule:         schedule,
			})
		if err != nil {
			return "", err
		}
		return appt.ID.String(), nil

	case "appointment-cancel":
		appt, err := b.scheduling.CancelAppointment(ctx,
			uuid.MustParse(values["appointment_id"]),
			values["cancellation_reason"])
		if err != nil {
			return "", err
		}
		return appt.ID.String(), nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownForm, form)
	}
}
