package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const maxBodyBytes = 1 << 20

const (
	msgUserExists   = "User already exists."
	msgForbidden    = "Unauthorized"
	msgInvalidBody  = "Invalid request body"
	msgUnauthorized = "Invalid credentials"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

// failure describes how an operation reports its errors.
type failure struct {
	op       string
	notFound string // 404 message
	internal string // 500 message
}

// respondError maps err onto the taxonomy status and the operation's
// messages. Unexpected errors are logged and reported with details.
func respondError(w http.ResponseWriter, r *http.Request, err error, f failure) {
	switch {
	case errors.Is(err, core.ErrConflict):
		writeError(w, http.StatusBadRequest, msgUserExists, "")
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, core.ValidationMessage(err, msgInvalidBody), "")
	case errors.Is(err, core.ErrAuthentication):
		writeError(w, http.StatusUnauthorized, msgUnauthorized, "")
	case errors.Is(err, core.ErrAuthorization):
		writeError(w, http.StatusForbidden, msgForbidden, "")
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, f.notFound, "")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, f.op, log.FieldPath, r.URL.Path, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, f.internal, err.Error())
	}
}

// decodeJSON reads a single JSON object from the request body into v.
// Syntax and type errors become validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &core.ValidationError{Message: msgInvalidBody, Details: "empty body"}
		}
		return &core.ValidationError{Message: msgInvalidBody, Details: err.Error()}
	}
	if dec.More() {
		return &core.ValidationError{Message: msgInvalidBody, Details: "trailing data"}
	}
	return nil
}

// writeInvalidBody reports a decoding failure with its details.
func writeInvalidBody(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Message, ve.Details)
		return
	}
	writeError(w, http.StatusBadRequest, msgInvalidBody, fmt.Sprint(err))
}
