package http

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidBody(w, err)
		return
	}
	u, err := s.deps.Users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err, failure{op: log.OpRegister, internal: "User registration failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User registered successfully",
		"user":    u,
	})
}

// handleLogin reports every authentication failure as 400, as the login
// contract has no 401.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidBody(w, err)
		return
	}
	token, err := s.deps.Users.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, core.ErrAuthentication) {
		writeError(w, http.StatusBadRequest, msgUnauthorized, err.Error())
		return
	}
	if err != nil {
		respondError(w, r, err, failure{op: log.OpLogin, internal: "Login failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	u, err := s.deps.Users.Profile(r.Context(), id.UID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Profile lookup failed",
				log.FieldUserID, id.UID, log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch profile", "")
			return
		}
		writeError(w, http.StatusNotFound, "User not found", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
