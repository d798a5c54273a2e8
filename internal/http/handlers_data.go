package http

import (
	"net/http"
	"strconv"
	"time"
	_ "time/tzdata" // tz query parameter on hosts without zoneinfo

	"github.com/go-chi/chi/v5"

	"fintrack/internal/analysis"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	msgDataNotFound  = "Financial data not found"
	msgInvalidPeriod = "Period must be between 1 and 366 days."
)

func caller(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.UID
}

func (s *Server) handleAddData(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeInvalidBody(w, err)
		return
	}
	t, err := s.deps.Transactions.Create(r.Context(), caller(r), in)
	if err != nil {
		respondError(w, r, err, failure{op: log.OpCreate, internal: "Failed to add financial data"})
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListData(w http.ResponseWriter, r *http.Request) {
	txs, err := s.deps.Transactions.List(r.Context(), caller(r))
	if err != nil {
		respondError(w, r, err, failure{op: log.OpList, internal: "Failed to fetch financial data"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"financialData": txs})
}

func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeInvalidBody(w, err)
		return
	}
	_, err := s.deps.Transactions.Update(r.Context(), caller(r), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err, failure{op: log.OpUpdate, notFound: msgDataNotFound, internal: "Failed to update financial data"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Financial data updated successfully"})
}

func (s *Server) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Transactions.Delete(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, failure{op: log.OpDelete, notFound: msgDataNotFound, internal: "Failed to delete financial data"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Financial data deleted successfully"})
}

// handleSummary serves the dashboard aggregates. Query parameters: period
// (days), top, recent, type (daily series type, Income by default) and tz
// (IANA zone used for day boundaries, UTC by default).
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := analysis.SummaryOptions{
		PeriodDays: atoiOr(q.Get("period"), 0),
		TopN:       atoiOr(q.Get("top"), 0),
		RecentN:    atoiOr(q.Get("recent"), 0),
		Location:   time.UTC,
	}
	if opts.PeriodDays > analysis.MaxPeriodDays {
		writeError(w, http.StatusBadRequest, msgInvalidPeriod, q.Get("period"))
		return
	}
	if typ := q.Get("type"); typ != "" {
		t, err := core.ParseTransactionType(typ)
		if err != nil {
			writeError(w, http.StatusBadRequest, core.ValidationMessage(err, msgInvalidBody), "")
			return
		}
		opts.DailyType = t
	}
	if tz := q.Get("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unknown time zone.", tz)
			return
		}
		opts.Location = loc
	}

	summary, err := s.deps.Transactions.Summary(r.Context(), caller(r), opts)
	if err != nil {
		respondError(w, r, err, failure{op: log.OpRead, internal: "Failed to fetch financial data"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
