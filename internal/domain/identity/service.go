package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/intake/internal/platform/blobstore"
)

// Service coordinates user creation and patient registration.
type Service struct {
	users     UserRepository
	patients  PatientRepository
	documents blobstore.Store
	logger    zerolog.Logger
}

func NewService(users UserRepository, patients PatientRepository, documents blobstore.Store, logger zerolog.Logger) *Service {
	return &Service{
		users:     users,
		patients:  patients,
		documents: documents,
		logger:    logger,
	}
}

// NewUserInput carries the three fields collected on first contact.
type NewUserInput struct {
	Name  string
	Email string
	Phone string
}

// CreateUser creates a user account, or returns the existing account when the
// email is already registered. Submitting the intake form twice with the same
// email must not create a duplicate. The boolean reports whether a new
// account was created.
func (s *Service) CreateUser(ctx context.Context, in NewUserInput) (*User, bool, error) {
	u := &User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Phone: strings.TrimSpace(in.Phone),
	}

	err := s.users.Create(ctx, u)
	if err == nil {
		s.logger.Info().Str("user_id", u.ID.String()).Msg("user created")
		return u, true, nil
	}
	if errors.Is(err, ErrEmailTaken) {
		existing, getErr := s.users.GetByEmail(ctx, u.Email)
		if getErr != nil {
			return nil, false, fmt.Errorf("fetch existing user: %w", getErr)
		}
		s.logger.Info().Str("user_id", existing.ID.String()).Msg("existing user returned")
		return existing, false, nil
	}
	return nil, false, fmt.Errorf("create user: %w", err)
}

// GetUser returns a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// DocumentUpload is an identification document attached to a registration.
type DocumentUpload struct {
	FileName    string
	ContentType string
	Kind        string
	Content     io.Reader
}

// RegisterPatientInput carries the full registration form.
type RegisterPatientInput struct {
	UserID uuid.UUID

	Patient Patient

	// Document is an optional identification document to store alongside the
	// profile. Mutually exclusive with Patient.IdentificationDocumentID,
	// which references a document uploaded earlier.
	Document *DocumentUpload
}

// RegisterPatient creates the patient profile for a user. The user must
// exist, must not already have a profile, and must have granted privacy
// consent. When a document upload is attached it is stored first; a failed
// upload fails the whole registration.
func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Patient, error) {
	if !in.Patient.PrivacyConsent {
		return nil, ErrPrivacyConsentRequired
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.patients.GetByUserID(ctx, in.UserID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, ErrPatientNotFound) {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}

	p := in.Patient
	p.UserID = user.ID
	if p.Name == "" {
		p.Name = user.Name
	}
	if p.Email == "" {
		p.Email = user.Email
	}
	if p.Phone == "" {
		p.Phone = user.Phone
	}

	if in.Document != nil {
		meta, err := s.documents.Upload(ctx, blobstore.DocumentMetadata{
			FileName:    in.Document.FileName,
			ContentType: in.Document.ContentType,
			PatientID:   user.ID.String(),
			Kind:        in.Document.Kind,
		}, in.Document.Content)
		if err != nil {
			return nil, fmt.Errorf("store identification document: %w", err)
		}
		p.IdentificationDocumentID = meta.ID
	} else if p.IdentificationDocumentID != "" {
		if _, err := s.documents.GetMetadata(ctx, p.IdentificationDocumentID); err != nil {
			if errors.Is(err, blobstore.ErrDocumentNotFound) {
				return nil, ErrDocumentNotFound
			}
			return nil, fmt.Errorf("check identification document: %w", err)
		}
	}

	if err := s.patients.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().
		Str("patient_id", p.ID.String()).
		Str("user_id", user.ID.String()).
		Msg("patient registered")

	return &p, nil
}

// GetPatient returns a patient by ID.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// GetPatientByUser returns the patient profile registered for a user, if any.
func (s *Service) GetPatientByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.patients.GetByUserID(ctx, userID)
}

// ListPatients returns a page of patients.
func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
