package intake

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the intake forms over HTTP.
type Handler struct {
	orch *Orchestrator
}

func NewHandler(orch *Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// RegisterRoutes registers the patient-facing form endpoints on the given
// group. Staff forms are not served here; they answer 404 as if unknown.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/forms/:name", h.getForm(false))
	g.POST("/forms/:name", h.submitForm(false))
}

// RegisterAdminRoutes registers the form endpoints that also serve staff
// forms. The caller mounts the group behind the admin gate.
func (h *Handler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/forms/:name", h.getForm(true))
	g.POST("/forms/:name", h.submitForm(true))
}

type formDefinition struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Fields []Widget `json:"fields"`
}

// form resolves the named form for the requesting surface.
func (h *Handler) form(name string, staff bool) (*Form, error) {
	form, err := h.orch.Form(name)
	if err != nil {
		return nil, err
	}
	if form.Staff && !staff {
		return nil, ErrUnknownForm
	}
	return form, nil
}

// getForm returns the rendered field descriptors for a form.
func (h *Handler) getForm(staff bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		form, err := h.form(c.Param("name"), staff)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "form not found")
		}

		widgets, err := RenderAll(form.Fields)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		return c.JSON(http.StatusOK, formDefinition{
			Name:   form.Name,
			Title:  form.Title,
			Fields: widgets,
		})
	}
}

// submitForm validates a submission and returns the redirect target on
// success, the field errors on rejection, or a generic failure when the
// backing services cannot complete the write.
func (h *Handler) submitForm(staff bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var values map[string]string
		if err := c.Bind(&values); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		if _, err := h.form(c.Param("name"), staff); err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "form not found")
		}

		result, fieldErrs, err := h.orch.Submit(c.Request().Context(), c.Param("name"), values)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnknownForm):
				return echo.NewHTTPError(http.StatusNotFound, "form not found")
			case errors.Is(err, ErrSubmissionInFlight):
				return echo.NewHTTPError(http.StatusConflict, "submission already in progress")
			default:
				return echo.NewHTTPError(http.StatusBadGateway, "submission could not be completed, please try again")
			}
		}
		if fieldErrs != nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"errors": fieldErrs,
			})
		}

		return c.JSON(http.StatusOK, result)
	}
}
