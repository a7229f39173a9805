package intake

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newIntakeHandler(sub Submitter) (*echo.Echo, *Handler) {
	orch := NewOrchestrator(DefaultForms(), sub, zerolog.Nop())
	return echo.New(), NewHandler(orch)
}

func getForm(e *echo.Echo, h *Handler, name string, staff bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/"+name, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues(name)
	if err := h.getForm(staff)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func submitForm(e *echo.Echo, h *Handler, name, body string, staff bool) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/"+name, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues(name)
	return rec, h.submitForm(staff)(c)
}

func TestGetFormDefinition(t *testing.T) {
	e, h := newIntakeHandler(&fakeSubmitter{})

	rec := getForm(e, h, "appointment-create", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var def struct {
		Name   string   `json:"name"`
		Fields []Widget `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if def.Name != "appointment-create" {
		t.Errorf("name = %q", def.Name)
	}
	if len(def.Fields) == 0 {
		t.Fatal("expected rendered fields")
	}
}

func TestGetFormNotFound(t *testing.T) {
	e, h := newIntakeHandler(&fakeSubmitter{})

	rec := getForm(e, h, "no-such-form", false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitFormSuccess(t *testing.T) {
	e, h := newIntakeHandler(&fakeSubmitter{id: "appt-7"})

	rec, err := submitForm(e, h, "appointment-create", `{
		"patient_id": "33333333-3333-3333-3333-333333333333",
		"primary_physician": "Dr. Lee",
		"schedule": "2024-06-01T10:00",
		"reason": "checkup"
	}`, false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result SubmitResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.RecordID != "appt-7" || !strings.Contains(result.Redirect, "appt-7") {
		t.Errorf("result = %+v", result)
	}
}

func TestSubmitFormFieldErrors(t *testing.T) {
	sub := &fakeSubmitter{}
	e, h := newIntakeHandler(sub)

	rec, err := submitForm(e, h, "appointment-create", `{
		"patient_id": "33333333-3333-3333-3333-333333333333",
		"primary_physician": "Dr. Lee",
		"schedule": "2024-06-01T10:00"
	}`, false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "reason") {
		t.Errorf("response does not name the failing field: %s", rec.Body.String())
	}
	if sub.callCount() != 0 {
		t.Error("submitter must not be called for invalid input")
	}
}

func TestSubmitFormBackendFailure(t *testing.T) {
	e, h := newIntakeHandler(&fakeSubmitter{err: errors.New("backend down")})

	_, err := submitForm(e, h, "appointment-create", `{
		"patient_id": "33333333-3333-3333-3333-333333333333",
		"primary_physician": "Dr. Lee",
		"schedule": "2024-06-01T10:00",
		"reason": "checkup"
	}`, false)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
}

func TestSubmitFormUnknownForm(t *testing.T) {
	e, h := newIntakeHandler(&fakeSubmitter{})

	_, err := submitForm(e, h, "no-such-form", `{}`, false)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestStaffFormsHiddenFromPatientSurface(t *testing.T) {
	sub := &fakeSubmitter{}
	e, h := newIntakeHandler(sub)

	for _, name := range []string{"appointment-schedule", "appointment-cancel"} {
		rec := getForm(e, h, name, false)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want 404", name, rec.Code)
		}
	}

	_, err := submitForm(e, h, "appointment-cancel", `{
		"appointment_id": "44444444-4444-4444-4444-444444444444",
		"cancellation_reason": "no longer needed"
	}`, false)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("ungated cancel: expected 404, got %v", err)
	}
	if sub.callCount() != 0 {
		t.Error("ungated staff submission must never reach the submitter")
	}
}

func TestStaffFormsServedBehindGate(t *testing.T) {
	e, h := newIntakeHandler(&fakeSubmitter{id: "appt-9"})

	rec := getForm(e, h, "appointment-cancel", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET: status = %d, want 200", rec.Code)
	}

	rec, err := submitForm(e, h, "appointment-cancel", `{
		"appointment_id": "44444444-4444-4444-4444-444444444444",
		"cancellation_reason": "no longer needed"
	}`, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "appt-9") {
		t.Errorf("redirect does not carry the record id: %s", rec.Body.String())
	}
}
