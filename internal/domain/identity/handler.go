package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/intake/pkg/pagination"
)

// Handler exposes user and patient endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers public identity routes on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/users", h.CreateUser)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/patient", h.GetPatientByUser)
	g.POST("/patients", h.RegisterPatient)
	g.GET("/patients/:id", h.GetPatient)
}

// RegisterAdminRoutes registers staff-only identity routes.
func (h *Handler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.GET("/patients", h.ListPatients)
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, created, err := h.svc.CreateUser(c.Request().Context(), NewUserInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	return c.JSON(status, user)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c echo.Context) error {
	params := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, params.Limit, params.Offset))
}

type registerPatientRequest struct {
	UserID string `json:"user_id"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender"`

	Address    string `json:"address"`
	Occupation string `json:"occupation"`

	EmergencyContactName   string `json:"emergency_contact_name"`
	EmergencyContactNumber string `json:"emergency_contact_number"`

	PrimaryPhysician      string `json:"primary_physician"`
	InsuranceProvider     string `json:"insurance_provider"`
	InsurancePolicyNumber string `json:"insurance_policy_number"`

	Allergies            string `json:"allergies"`
	CurrentMedication    string `json:"current_medication"`
	FamilyMedicalHistory string `json:"family_medical_history"`
	PastMedicalHistory   string `json:"past_medical_history"`

	IdentificationType       string `json:"identification_type"`
	IdentificationNumber     string `json:"identification_number"`
	IdentificationDocumentID string `json:"identification_document_id"`

	TreatmentConsent  bool `json:"treatment_consent"`
	DisclosureConsent bool `json:"disclosure_consent"`
	PrivacyConsent    bool `json:"privacy_consent"`
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req registerPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}

	var birthDate time.Time
	if req.BirthDate != "" {
		birthDate, err = time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
		}
	}

	if req.Gender != "" && !ValidGender(req.Gender) {
		return echo.NewHTTPError(http.StatusBadRequest, "gender must be male, female, or other")
	}

	patient, err := h.svc.RegisterPatient(c.Request().Context(), RegisterPatientInput{
		UserID: userID,
		Patient: Patient{
			Name:                     req.Name,
			Email:                    req.Email,
			Phone:                    req.Phone,
			BirthDate:                birthDate,
			Gender:                   req.Gender,
			Address:                  req.Address,
			Occupation:               req.Occupation,
			EmergencyContactName:     req.EmergencyContactName,
			EmergencyContactNumber:   req.EmergencyContactNumber,
			PrimaryPhysician:         req.PrimaryPhysician,
			InsuranceProvider:        req.InsuranceProvider,
			InsurancePolicyNumber:    req.InsurancePolicyNumber,
			Allergies:                req.Allergies,
			CurrentMedication:        req.CurrentMedication,
			FamilyMedicalHistory:     req.FamilyMedicalHistory,
			PastMedicalHistory:       req.PastMedicalHistory,
			IdentificationType:       req.IdentificationType,
			IdentificationNumber:     req.IdentificationNumber,
			IdentificationDocumentID: req.IdentificationDocumentID,
			TreatmentConsent:         req.TreatmentConsent,
			DisclosureConsent:        req.DisclosureConsent,
			PrivacyConsent:           req.PrivacyConsent,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case errors.Is(err, ErrAlreadyRegistered):
			return echo.NewHTTPError(http.StatusConflict, "patient already registered for user")
		case errors.Is(err, ErrPrivacyConsentRequired):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "privacy consent is required")
		case errors.Is(err, ErrDocumentNotFound):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "identification document not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, patient)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	patient, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, patient)
}

func (h *Handler) GetPatientByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	patient, err := h.svc.GetPatientByUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, patient)
}

func (h *Handler) ListPatients(c echo.Context) error {
	params := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, params.Limit, params.Offset))
}
