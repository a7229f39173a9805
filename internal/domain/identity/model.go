// Package identity manages the people who pass through intake: the user
// account created on first contact and the full patient profile captured
// during registration.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted on a patient profile.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User is the minimal account created when someone first submits the intake
// form. A user may or may not go on to complete patient registration.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Patient is the full profile captured during registration. Every patient
// belongs to exactly one user.
type Patient struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender"`

	Address    string `json:"address"`
	Occupation string `json:"occupation"`

	EmergencyContactName   string `json:"emergency_contact_name"`
	EmergencyContactNumber string `json:"emergency_contact_number"`

	PrimaryPhysician      string `json:"primary_physician"`
	InsuranceProvider     string `json:"insurance_provider"`
	InsurancePolicyNumber string `json:"insurance_policy_number"`

	Allergies            string `json:"allergies,omitempty"`
	CurrentMedication    string `json:"current_medication,omitempty"`
	FamilyMedicalHistory string `json:"family_medical_history,omitempty"`
	PastMedicalHistory   string `json:"past_medical_history,omitempty"`

	IdentificationType       string `json:"identification_type,omitempty"`
	IdentificationNumber     string `json:"identification_number,omitempty"`
	IdentificationDocumentID string `json:"identification_document_id,omitempty"`

	TreatmentConsent  bool `json:"treatment_consent"`
	DisclosureConsent bool `json:"disclosure_consent"`
	PrivacyConsent    bool `json:"privacy_consent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
