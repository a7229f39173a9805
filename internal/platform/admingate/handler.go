package admingate

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// invalidPasskeyMessage is shown verbatim to staff who mistype the passkey.
const invalidPasskeyMessage = "Invalid passkey, please try again."

// Handler exposes the passkey verification endpoints.
type Handler struct {
	gate   *Gate
	secure bool
}

// NewHandler creates a Handler. secure controls the Secure attribute on the
// accessKey cookie and should be true outside development.
func NewHandler(gate *Gate, secure bool) *Handler {
	return &Handler{gate: gate, secure: secure}
}

// RegisterRoutes registers the passkey endpoints on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/admin/passkey", h.VerifyPasskey)
	g.DELETE("/admin/passkey", h.ClearSession)
}

type passkeyRequest struct {
	Passkey string `json:"passkey"`
}

type passkeyResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyPasskey handles POST /admin/passkey. On success it sets the encrypted
// accessKey cookie and returns a session token; on failure it returns 401
// with the retry message.
func (h *Handler) VerifyPasskey(c echo.Context) error {
	var req passkeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.gate.Verify(req.Passkey); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, invalidPasskeyMessage)
	}

	encrypted, err := h.gate.EncryptKey()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to establish session")
	}

	now := time.Now()
	token, err := h.gate.IssueSession(now)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to establish session")
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    encrypted,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  now.Add(h.gate.SessionTTL()),
	})

	return c.JSON(http.StatusOK, passkeyResponse{
		Token:     token,
		ExpiresAt: now.Add(h.gate.SessionTTL()),
	})
}

// ClearSession handles DELETE /admin/passkey. It expires the accessKey cookie
// so the browser must present the passkey again.
func (h *Handler) ClearSession(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	return c.NoContent(http.StatusNoContent)
}
