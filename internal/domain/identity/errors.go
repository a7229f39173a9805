package identity

import "errors"

var (
	// ErrUserNotFound is returned when no user exists with the given ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrPatientNotFound is returned when no patient exists with the given ID
	// or user.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrEmailTaken is returned by the repository when the email unique
	// constraint fires. The service treats this as "user already exists" and
	// returns the existing account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrAlreadyRegistered is returned when a user already has a patient
	// profile.
	ErrAlreadyRegistered = errors.New("patient already registered for user")

	// ErrPrivacyConsentRequired is returned when a registration is submitted
	// without the privacy consent checkbox.
	ErrPrivacyConsentRequired = errors.New("privacy consent is required")

	// ErrDocumentNotFound is returned when a registration references an
	// identification document that was never uploaded.
	ErrDocumentNotFound = errors.New("identification document not found")
)
