package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/findosh/brandsales/internal/middleware"
	"github.com/findosh/brandsales/internal/services/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the dashboard password for a session cookie. Both JSON
// and form bodies are accepted.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.jsonError(w, "Invalid request", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.jsonError(w, "Invalid request", http.StatusBadRequest)
			return
		}
		req.Password = r.FormValue("password")
	}

	if req.Password == "" {
		h.jsonError(w, "Password required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(req.Password)
	switch {
	case errors.Is(err, auth.ErrLoginDisabled):
		h.jsonError(w, "Login disabled", http.StatusNotFound)
		return
	case err != nil:
		h.jsonError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Expires,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "expiresAt": result.Expires})
}

// Logout clears the session cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})

	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
