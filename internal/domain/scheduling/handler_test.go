package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestAppointmentHandler(t *testing.T) {
	svc, _, patient := newSchedulingFixture()
	e := echo.New()
	h := NewHandler(svc)

	schedule := futureTime().Format(time.RFC3339)
	body := `{
		"patient_id": "` + patient.ID.String() + `",
		"primary_physician": "Dr. Lee",
		"schedule": "` + schedule + `",
		"reason": "annual checkup"
	}`

	c, rec := postJSON(e, "/api/v1/appointments", body)
	if err := h.RequestAppointment(c); err != nil {
		t.Fatalf("RequestAppointment: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("status = %s, want pending", a.Status)
	}
}

func TestRequestAppointmentHandlerUnknownDoctor(t *testing.T) {
	svc, _, patient := newSchedulingFixture()
	e := echo.New()
	h := NewHandler(svc)

	body := `{
		"patient_id": "` + patient.ID.String() + `",
		"primary_physician": "Dr. Nobody",
		"schedule": "` + futureTime().Format(time.RFC3339) + `"
	}`

	c, _ := postJSON(e, "/api/v1/appointments", body)
	err := h.RequestAppointment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestCancelAppointmentHandlerTerminalConflict(t *testing.T) {
	svc, _, patient := newSchedulingFixture()
	e := echo.New()
	h := NewHandler(svc)

	a, err := svc.RequestAppointment(context.Background(), RequestAppointmentInput{
		PatientID:        patient.ID,
		PrimaryPhysician: "Dr. Lee",
		Schedule:         futureTime(),
	})
	if err != nil {
		t.Fatalf("RequestAppointment: %v", err)
	}
	if _, err := svc.CancelAppointment(context.Background(), a.ID, "conflict"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	c, _ := postJSON(e, "/api/v1/admin/appointments/"+a.ID.String()+"/cancel", `{"reason":"another reason"}`)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())

	err = h.CancelAppointment(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestListDoctorsHandler(t *testing.T) {
	svc, _, _ := newSchedulingFixture()
	e := echo.New()
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	rec := httptest.NewRecorder()
	if err := h.ListDoctors(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListDoctors: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Dr. Lee") {
		t.Errorf("roster missing Dr. Lee: %s", rec.Body.String())
	}
}
