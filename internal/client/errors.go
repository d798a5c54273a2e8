package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"fintrack/internal/core"
)

// APIError is a non-2xx response. It unwraps to the core sentinel matching
// the status code.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, msg, e.Details)
	}
	return fmt.Sprintf("%d %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return core.ErrValidation
	case http.StatusUnauthorized:
		return core.ErrAuthentication
	case http.StatusForbidden:
		return core.ErrAuthorization
	case http.StatusNotFound:
		return core.ErrNotFound
	default:
		return core.ErrUpstream
	}
}

func newAPIError(resp *http.Response) *APIError {
	e := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil {
		e.Message, e.Details = body.Error, body.Details
	} else {
		e.Message = string(raw)
	}
	return e
}
