package intake

import "github.com/clinic/intake/internal/domain/scheduling"

// Form binds a named field set to its validation schema, submit target, and
// the route a client should visit after a successful submission. The route
// template carries the identifier of the record the submission produced.
type Form struct {
	Name         string
	Title        string
	Fields       []Field
	Schema       Schema
	SuccessRoute string // fmt template with one %s for the new record ID

	// Staff forms are only served and accepted behind the admin gate.
	Staff bool
}

func doctorOptions() []Option {
	opts := make([]Option, 0, len(scheduling.Doctors))
	for _, d := range scheduling.Doctors {
		opts = append(opts, Option{Value: d, Label: d})
	}
	return opts
}

func identificationOptions() []Option {
	return []Option{
		{Value: "birth-certificate", Label: "Birth Certificate"},
		{Value: "drivers-license", Label: "Driver's License"},
		{Value: "medical-insurance-card", Label: "Medical Insurance Card/Policy"},
		{Value: "military-id", Label: "Military ID Card"},
		{Value: "national-id", Label: "National Identity Card"},
		{Value: "passport", Label: "Passport"},
		{Value: "social-security-card", Label: "Social Security Card"},
		{Value: "state-id", Label: "State ID Card"},
		{Value: "student-id", Label: "Student ID Card"},
		{Value: "voter-id", Label: "Voter ID Card"},
		{Value: "other", Label: "Other"},
	}
}

// radioGroup renders as a composite widget outside the fixed kinds.
func radioGroup(options []Option) func(Field) (Widget, error) {
	return func(f Field) (Widget, error) {
		return Widget{
			Control: "radio-group",
			Name:    f.Name,
			Label:   f.Label,
			Options: options,
		}, nil
	}
}

// fileUpload renders the identification document drop zone.
func fileUpload(f Field) (Widget, error) {
	return Widget{
		Control:     "file-upload",
		Name:        f.Name,
		Label:       f.Label,
		Placeholder: "PNG, JPEG or PDF up to 10 MB",
	}, nil
}

// DefaultForms returns the intake forms the clinic serves.
func DefaultForms() map[string]*Form {
	return map[string]*Form{
		"patient": {
			Name:   "patient",
			Title:  "Let us know more about yourself",
			Schema: UserSchema(),
			Fields: []Field{
				{Name: "submission_id", Kind: KindInput, Hidden: true},
				{Name: "name", Label: "Full name", Kind: KindInput, Placeholder: "John Doe", Icon: "user"},
				{Name: "email", Label: "Email address", Kind: KindInput, Placeholder: "johndoe@example.com", Icon: "email"},
				{Name: "phone", Label: "Phone number", Kind: KindPhone, Placeholder: "(555) 123-4567"},
			},
			SuccessRoute: "/patients/%s/register",
		},
		"register": {
			Name:   "register",
			Title:  "Welcome, tell us more about yourself",
			Schema: PatientSchema(),
			Fields: []Field{
				{Name: "submission_id", Kind: KindInput, Hidden: true},
				{Name: "user_id", Kind: KindInput, Hidden: true},
				{Name: "name", Label: "Full name", Kind: KindInput, Placeholder: "John Doe", Icon: "user"},
				{Name: "email", Label: "Email address", Kind: KindInput, Placeholder: "johndoe@example.com", Icon: "email"},
				{Name: "phone", Label: "Phone number", Kind: KindPhone, Placeholder: "(555) 123-4567"},
				{Name: "birth_date", Label: "Date of birth", Kind: KindDate, DateFormat: "2006-01-02"},
				{Name: "gender", Label: "Gender", Kind: KindSkeleton, Skeleton: radioGroup([]Option{
					{Value: "male", Label: "Male"},
					{Value: "female", Label: "Female"},
					{Value: "other", Label: "Other"},
				})},
				{Name: "address", Label: "Address", Kind: KindInput, Placeholder: "14th Street, New York"},
				{Name: "occupation", Label: "Occupation", Kind: KindInput, Placeholder: "Software Engineer"},
				{Name: "emergency_contact_name", Label: "Emergency contact name", Kind: KindInput, Placeholder: "Guardian's name"},
				{Name: "emergency_contact_number", Label: "Emergency contact number", Kind: KindPhone, Placeholder: "(555) 123-4567"},
				{Name: "primary_physician", Label: "Primary care physician", Kind: KindSelect, Options: doctorOptions()},
				{Name: "insurance_provider", Label: "Insurance provider", Kind: KindInput, Placeholder: "BlueCross BlueShield"},
				{Name: "insurance_policy_number", Label: "Insurance policy number", Kind: KindInput, Placeholder: "ABC123456789"},
				{Name: "allergies", Label: "Allergies (if any)", Kind: KindTextarea, Placeholder: "Peanuts, Penicillin, Pollen"},
				{Name: "current_medication", Label: "Current medication (if any)", Kind: KindTextarea, Placeholder: "Ibuprofen 200mg, Paracetamol 500mg"},
				{Name: "family_medical_history", Label: "Family medical history", Kind: KindTextarea},
				{Name: "past_medical_history", Label: "Past medical history", Kind: KindTextarea},
				{Name: "identification_type", Label: "Identification type", Kind: KindSelect, Options: identificationOptions()},
				{Name: "identification_number", Label: "Identification number", Kind: KindInput, Placeholder: "123456789"},
				{Name: "identification_document_id", Label: "Scanned copy of identification document", Kind: KindSkeleton, Skeleton: fileUpload},
				{Name: "treatment_consent", Label: "I consent to receive treatment for my health condition.", Kind: KindCheckbox},
				{Name: "disclosure_consent", Label: "I consent to the use and disclosure of my health information for treatment purposes.", Kind: KindCheckbox},
				{Name: "privacy_consent", Label: "I acknowledge that I have reviewed and agree to the privacy policy.", Kind: KindCheckbox},
			},
			SuccessRoute: "/patients/%s/new-appointment",
		},
		"appointment-create": {
			Name:   "appointment-create",
			Title:  "Request a new appointment",
			Schema: AppointmentSchema(ModeCreate),
			Fields: []Field{
				{Name: "submission_id", Kind: KindInput, Hidden: true},
				{Name: "patient_id", Kind: KindInput, Hidden: true},
				{Name: "primary_physician", Label: "Doctor", Kind: KindSelect, Options: doctorOptions()},
				{Name: "schedule", Label: "Expected appointment date", Kind: KindDate, DateFormat: "2006-01-02T15:04", WithTime: true},
				{Name: "reason", Label: "Reason for appointment", Kind: KindTextarea, Placeholder: "Annual monthly check-up"},
				{Name: "note", Label: "Additional comments/notes", Kind: KindTextarea, Placeholder: "Prefer afternoon appointments, if possible"},
			},
			SuccessRoute: "/appointments/%s/success",
		},
		"appointment-schedule": {
			Name:   "appointment-schedule",
			Title:  "Confirm appointment details",
			Staff:  true,
			Schema: AppointmentSchema(ModeSchedule),
			Fields: []Field{
				{Name: "submission_id", Kind: KindInput, Hidden: true},
				{Name: "appointment_id", Kind: KindInput, Hidden: true},
				{Name: "primary_physician", Label: "Doctor", Kind: KindSelect, Options: doctorOptions()},
				{Name: "schedule", Label: "Appointment date", Kind: KindDate, DateFormat: "2006-01-02T15:04", WithTime: true},
			},
			SuccessRoute: "/admin/appointments/%s",
		},
		"appointment-cancel": {
			Name:   "appointment-cancel",
			Title:  "Cancel appointment",
			Staff:  true,
			Schema: AppointmentSchema(ModeCancel),
			Fields: []Field{
				{Name: "submission_id", Kind: KindInput, Hidden: true},
				{Name: "appointment_id", Kind: KindInput, Hidden: true},
				{Name: "cancellation_reason", Label: "Reason for cancellation", Kind: KindTextarea, Placeholder: "Urgent meeting came up"},
			},
			SuccessRoute: "/admin/appointments/%s",
		},
	}
}
