package intake

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/clinic/intake/internal/domain/scheduling"
	"github.com/clinic/intake/internal/platform/blobstore"
)

// FieldErrors maps a field name to a human-readable message. Independent
// fields fail independently in a single Validate call.
type FieldErrors map[string]string

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+\d{1,2}\s)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}$`)
)

// Accepted timestamp layouts for appointment times, tried in order.
var scheduleLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

// rule validates one field. check returns a message for a rejected value and
// "" for an accepted one; normalize canonicalizes an accepted value.
type rule struct {
	field       string
	required    bool
	requiredMsg string
	check       func(string) string
	normalize   func(string) string
}

// Schema is an ordered list of field rules. Validation is pure and
// deterministic; it never touches the backing services.
type Schema struct {
	rules []rule
}

// Validate checks values against the schema. It returns the normalized value
// set on success, or the per-field errors. Optional fields that are absent
// normalize to the empty string; fields the schema does not know are dropped.
func (s Schema) Validate(values map[string]string) (map[string]string, FieldErrors) {
	normalized := make(map[string]string, len(s.rules))
	errs := make(FieldErrors)

	for _, r := range s.rules {
		v := strings.TrimSpace(values[r.field])

		if v == "" {
			if r.required {
				errs[r.field] = r.requiredMsg
			} else {
				normalized[r.field] = ""
			}
			continue
		}

		if r.check != nil {
			if msg := r.check(v); msg != "" {
				errs[r.field] = msg
				continue
			}
		}

		if r.normalize != nil {
			v = r.normalize(v)
		}
		normalized[r.field] = v
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return normalized, nil
}

func checkName(v string) string {
	if utf8.RuneCountInString(v) < 2 {
		return "Name must be at least 2 characters."
	}
	if utf8.RuneCountInString(v) > 50 {
		return "Name must be at most 50 characters."
	}
	return ""
}

func checkEmail(v string) string {
	if !emailPattern.MatchString(v) {
		return "Invalid email address."
	}
	return ""
}

func checkPhone(v string) string {
	if !phonePattern.MatchString(v) {
		return "Invalid phone number."
	}
	return ""
}

func checkDoctor(v string) string {
	if !scheduling.KnownDoctor(v) {
		return "Select a physician from the roster."
	}
	return ""
}

func checkSchedule(v string) string {
	for _, layout := range scheduleLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return ""
		}
	}
	return "Invalid appointment time."
}

func normalizeSchedule(v string) string {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return v
}

func checkBirthDate(v string) string {
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return "Birth date must be YYYY-MM-DD."
	}
	return ""
}

func checkGender(v string) string {
	switch v {
	case "male", "female", "other":
		return ""
	}
	return "Gender must be male, female, or other."
}

func checkIdentificationType(v string) string {
	if !blobstore.IdentificationKinds[v] {
		return "Unknown identification type."
	}
	return ""
}

func checkUUID(label string) func(string) string {
	return func(v string) string {
		if _, err := uuid.Parse(v); err != nil {
			return fmt.Sprintf("Invalid %s.", label)
		}
		return ""
	}
}

// checkboxTrue accepts the usual truthy checkbox encodings.
func checkboxTrue(v string) bool {
	switch strings.ToLower(v) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func normalizeCheckbox(v string) string {
	if checkboxTrue(v) {
		return "true"
	}
	return "false"
}

func checkConsentGiven(v string) string {
	if !checkboxTrue(v) {
		return "You must consent to the privacy policy to proceed."
	}
	return ""
}

// UserSchema validates the first-contact form: name, email, phone.
func UserSchema() Schema {
	return Schema{rules: []rule{
		{field: "name", required: true, requiredMsg: "Name is required.", check: checkName},
		{field: "email", required: true, requiredMsg: "Email is required.", check: checkEmail},
		{field: "phone", required: true, requiredMsg: "Phone number is required.", check: checkPhone},
	}}
}

// PatientSchema validates the full registration form.
func PatientSchema() Schema {
	return Schema{rules: []rule{
		{field: "user_id", required: true, requiredMsg: "User reference is required.", check: checkUUID("user reference")},
		{field: "name", required: true, requiredMsg: "Name is required.", check: checkName},
		{field: "email", required: true, requiredMsg: "Email is required.", check: checkEmail},
		{field: "phone", required: true, requiredMsg: "Phone number is required.", check: checkPhone},
		{field: "birth_date", required: true, requiredMsg: "Birth date is required.", check: checkBirthDate},
		{field: "gender", required: true, requiredMsg: "Gender is required.", check: checkGender},
		{field: "address", required: true, requiredMsg: "Address is required."},
		{field: "occupation", required: true, requiredMsg: "Occupation is required."},
		{field: "emergency_contact_name", required: true, requiredMsg: "Emergency contact name is required.", check: checkName},
		{field: "emergency_contact_number", required: true, requiredMsg: "Emergency contact number is required.", check: checkPhone},
		{field: "primary_physician", required: true, requiredMsg: "Primary physician is required.", check: checkDoctor},
		{field: "insurance_provider", required: true, requiredMsg: "Insurance provider is required."},
		{field: "insurance_policy_number", required: true, requiredMsg: "Insurance policy number is required."},
		{field: "allergies"},
		{field: "current_medication"},
		{field: "family_medical_history"},
		{field: "past_medical_history"},
		{field: "identification_type", check: checkIdentificationType},
		{field: "identification_number"},
		{field: "identification_document_id", check: checkUUID("identification document reference")},
		{field: "treatment_consent", normalize: normalizeCheckbox},
		{field: "disclosure_consent", normalize: normalizeCheckbox},
		{field: "privacy_consent", required: true, requiredMsg: "You must consent to the privacy policy to proceed.",
			check: checkConsentGiven, normalize: normalizeCheckbox},
	}}
}

// Mode selects which appointment operation a schema guards.
type Mode string

const (
	ModeCreate   Mode = "create"
	ModeSchedule Mode = "schedule"
	ModeCancel   Mode = "cancel"
)

// AppointmentSchema returns the schema for one appointment operation.
// Create and schedule require the full visit details; cancel requires only
// the cancellation reason and ignores the rest.
func AppointmentSchema(mode Mode) Schema {
	if mode == ModeCancel {
		return Schema{rules: []rule{
			{field: "appointment_id", required: true, requiredMsg: "Appointment reference is required.", check: checkUUID("appointment reference")},
			{field: "cancellation_reason", required: true, requiredMsg: "Cancellation reason is required."},
		}}
	}

	rules := []rule{
		{field: "primary_physician", required: true, requiredMsg: "Primary physician is required.", check: checkDoctor},
		{field: "schedule", required: true, requiredMsg: "Appointment time is required.", check: checkSchedule, normalize: normalizeSchedule},
	}
	if mode == ModeSchedule {
		rules = append([]rule{
			{field: "appointment_id", required: true, requiredMsg: "Appointment reference is required.", check: checkUUID("appointment reference")},
		}, rules...)
	} else {
		rules = append([]rule{
			{field: "patient_id", required: true, requiredMsg: "Patient reference is required.", check: checkUUID("patient reference")},
		}, rules...)
		rules = append(rules,
			rule{field: "reason", required: true, requiredMsg: "Reason is required."},
			rule{field: "note"},
		)
	}
	return Schema{rules: rules}
}
