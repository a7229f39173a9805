package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/intake/internal/platform/blobstore"
)

type fakeUserRepo struct {
	byID    map[uuid.UUID]*User
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]*User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	stored := *u
	r.byID[u.ID] = &stored
	r.byEmail[u.Email] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var users []*User
	for _, u := range r.byID {
		out := *u
		users = append(users, &out)
	}
	return users, len(users), nil
}

type fakePatientRepo struct {
	byID     map[uuid.UUID]*Patient
	byUserID map[uuid.UUID]*Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{
		byID:     make(map[uuid.UUID]*Patient),
		byUserID: make(map[uuid.UUID]*Patient),
	}
}

func (r *fakePatientRepo) Create(_ context.Context, p *Patient) error {
	if _, ok := r.byUserID[p.UserID]; ok {
		return ErrAlreadyRegistered
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	r.byID[p.ID] = &stored
	r.byUserID[p.UserID] = &stored
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	out := *p
	return &out, nil
}

func (r *fakePatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	p, ok := r.byUserID[userID]
	if !ok {
		return nil, ErrPatientNotFound
	}
	out := *p
	return &out, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrPatientNotFound
	}
	stored := *p
	r.byID[p.ID] = &stored
	r.byUserID[p.UserID] = &stored
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var patients []*Patient
	for _, p := range r.byID {
		out := *p
		patients = append(patients, &out)
	}
	return patients, len(patients), nil
}

func newTestService() (*Service, *fakeUserRepo, *fakePatientRepo, *blobstore.InMemoryStore) {
	users := newFakeUserRepo()
	patients := newFakePatientRepo()
	docs := blobstore.NewInMemoryStore()
	svc := NewService(users, patients, docs, zerolog.Nop())
	return svc, users, patients, docs
}

func validRegistration(userID uuid.UUID) RegisterPatientInput {
	return RegisterPatientInput{
		UserID: userID,
		Patient: Patient{
			BirthDate:              time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
			Gender:                 GenderFemale,
			Address:                "14 Oak Street",
			Occupation:             "Teacher",
			EmergencyContactName:   "Jordan Smith",
			EmergencyContactNumber: "(555) 123-4567",
			PrimaryPhysician:       "Dr. Lee",
			InsuranceProvider:      "BlueCross",
			InsurancePolicyNumber:  "ABC123456",
			TreatmentConsent:       true,
			DisclosureConsent:      true,
			PrivacyConsent:         true,
		},
	}
}

func TestCreateUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	user, created, err := svc.CreateUser(context.Background(), NewUserInput{
		Name:  "Ada Chen",
		Email: "Ada@Example.com",
		Phone: "(555) 123-4567",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !created {
		t.Error("expected created = true for a new user")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.ID == uuid.Nil {
		t.Error("expected assigned user ID")
	}
}

func TestCreateUserIdempotentByEmail(t *testing.T) {
	svc, _, _, _ := newTestService()

	first, _, err := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada Chen", Email: "ada@example.com", Phone: "(555) 123-4567",
	})
	if err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}

	second, created, err := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada C.", Email: "ada@example.com", Phone: "(555) 999-0000",
	})
	if err != nil {
		t.Fatalf("second CreateUser: %v", err)
	}
	if created {
		t.Error("expected created = false for an existing email")
	}
	if second.ID != first.ID {
		t.Errorf("second submit returned a different user: %s vs %s", second.ID, first.ID)
	}
}

func TestRegisterPatient(t *testing.T) {
	svc, _, _, _ := newTestService()

	user, _, err := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada Chen", Email: "ada@example.com", Phone: "(555) 123-4567",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	patient, err := svc.RegisterPatient(context.Background(), validRegistration(user.ID))
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
	if patient.UserID != user.ID {
		t.Errorf("patient.UserID = %s, want %s", patient.UserID, user.ID)
	}
	// Contact fields default to the user account when not supplied.
	if patient.Name != "Ada Chen" || patient.Email != "ada@example.com" {
		t.Errorf("contact fields not inherited from user: %+v", patient)
	}

	got, err := svc.GetPatientByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetPatientByUser: %v", err)
	}
	if got.ID != patient.ID {
		t.Errorf("lookup by user returned wrong patient")
	}
}

func TestRegisterPatientRequiresPrivacyConsent(t *testing.T) {
	svc, _, _, _ := newTestService()

	user, _, _ := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada Chen", Email: "ada@example.com", Phone: "(555) 123-4567",
	})

	in := validRegistration(user.ID)
	in.Patient.PrivacyConsent = false
	if _, err := svc.RegisterPatient(context.Background(), in); !errors.Is(err, ErrPrivacyConsentRequired) {
		t.Errorf("got %v, want ErrPrivacyConsentRequired", err)
	}
}

func TestRegisterPatientUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.RegisterPatient(context.Background(), validRegistration(uuid.New())); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestRegisterPatientTwiceConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()

	user, _, _ := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada Chen", Email: "ada@example.com", Phone: "(555) 123-4567",
	})

	if _, err := svc.RegisterPatient(context.Background(), validRegistration(user.ID)); err != nil {
		t.Fatalf("first RegisterPatient: %v", err)
	}
	if _, err := svc.RegisterPatient(context.Background(), validRegistration(user.ID)); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("got %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegisterPatientStoresDocument(t *testing.T) {
	svc, _, _, docs := newTestService()

	user, _, _ := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada Chen", Email: "ada@example.com", Phone: "(555) 123-4567",
	})

	in := validRegistration(user.ID)
	in.Patient.IdentificationType = "passport"
	in.Patient.IdentificationNumber = "P1234567"
	in.Document = &DocumentUpload{
		FileName:    "passport.pdf",
		ContentType: "application/pdf",
		Kind:        "passport",
		Content:     strings.NewReader("scanned bytes"),
	}

	patient, err := svc.RegisterPatient(context.Background(), in)
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
	if patient.IdentificationDocumentID == "" {
		t.Fatal("expected stored document ID on patient")
	}

	meta, err := docs.GetMetadata(context.Background(), patient.IdentificationDocumentID)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta.PatientID != user.ID.String() {
		t.Errorf("document patient_id = %q, want user id", meta.PatientID)
	}
}

func TestRegisterPatientFailedUploadFailsRegistration(t *testing.T) {
	svc, _, patients, _ := newTestService()

	user, _, _ := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada Chen", Email: "ada@example.com", Phone: "(555) 123-4567",
	})

	in := validRegistration(user.ID)
	in.Document = &DocumentUpload{
		FileName:    "notes.txt",
		ContentType: "text/plain", // not an accepted document type
		Kind:        "passport",
		Content:     strings.NewReader("x"),
	}

	if _, err := svc.RegisterPatient(context.Background(), in); err == nil {
		t.Fatal("expected registration to fail when the upload fails")
	}
	if len(patients.byID) != 0 {
		t.Error("no patient should be created when the upload fails")
	}
}

func TestRegisterPatientRejectsDanglingDocumentReference(t *testing.T) {
	svc, _, _, _ := newTestService()

	user, _, _ := svc.CreateUser(context.Background(), NewUserInput{
		Name: "Ada Chen", Email: "ada@example.com", Phone: "(555) 123-4567",
	})

	in := validRegistration(user.ID)
	in.Patient.IdentificationDocumentID = uuid.NewString()
	if _, err := svc.RegisterPatient(context.Background(), in); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("got %v, want ErrDocumentNotFound", err)
	}
}
