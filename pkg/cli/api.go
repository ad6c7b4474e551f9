package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mchmarny/healsure/pkg/data"
	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/model"
	"github.com/mchmarny/healsure/pkg/session"
	"github.com/mchmarny/healsure/pkg/wellness"
)

const maxRequestBytes = 1 << 16

type api struct {
	db       *sql.DB
	source   dataset.Source
	sessions *session.Manager
}

// SessionInfo describes a session and its current model.
type SessionInfo struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	TrainedAt time.Time     `json:"trained_at"`
	Metrics   model.Metrics `json:"metrics"`
}

// QuoteRequest carries both sets of inputs a quote is computed from.
type QuoteRequest struct {
	Applicant insurance.Applicant `json:"applicant"`
	Wellness  wellness.Inputs     `json:"wellness"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, insurance.ErrInvalidInputRange), errors.Is(err, insurance.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, insurance.ErrUntrainedModel):
		return http.StatusConflict
	case errors.Is(err, insurance.ErrEmptyTrainingSet):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err)
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	d := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func sessionInfo(s *session.Session) *SessionInfo {
	info := &SessionInfo{ID: s.ID, CreatedAt: s.CreatedAt}
	if st, err := s.Predictor().State(); err == nil {
		info.TrainedAt = st.TrainedAt()
		info.Metrics = st.Metrics()
	}
	return info
}

func (h *api) listSessions(w http.ResponseWriter, _ *http.Request) {
	list := h.sessions.List()
	out := make([]*SessionInfo, 0, len(list))
	for _, s := range list {
		out = append(out, sessionInfo(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *api) createSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(r.Context())
	if err != nil {
		writeErr(w, "failed to create session", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionInfo(s))
}

func (h *api) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Delete(id); err != nil {
		writeErr(w, "failed to delete session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *api) trainSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := h.sessions.Retrain(r.Context(), id)
	if err != nil {
		writeErr(w, "failed to train session", err)
		return
	}
	writeJSON(w, http.StatusOK, &SessionInfo{
		ID:        id,
		TrainedAt: st.TrainedAt(),
		Metrics:   st.Metrics(),
	})
}

func (h *api) sessionMetrics(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, "failed to get session", err)
		return
	}
	m, err := s.Predictor().Metrics()
	if err != nil {
		writeErr(w, "failed to get metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *api) sessionImportance(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, "failed to get session", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Predictor().FeatureImportance())
}

func (h *api) predict(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, "failed to get session", err)
		return
	}

	var a insurance.Applicant
	if !decode(w, r, &a) {
		return
	}

	p, err := s.Predictor().Predict(a)
	if err != nil {
		writeErr(w, "failed to predict premium", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"base_premium": p})
}

func (h *api) quote(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, "failed to get session", err)
		return
	}

	var req QuoteRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := s.Quote(req.Applicant, req.Wellness)
	if err != nil {
		writeErr(w, "failed to estimate premium", err)
		return
	}

	if err := data.SaveQuote(h.db, s.ID, q); err != nil {
		writeErr(w, "failed to save quote", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *api) score(w http.ResponseWriter, r *http.Request) {
	var in wellness.Inputs
	if !decode(w, r, &in) {
		return
	}

	a, err := wellness.Assess(in)
	if err != nil {
		writeErr(w, "failed to score", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *api) tiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, wellness.Tiers)
}

func (h *api) tips(w http.ResponseWriter, r *http.Request) {
	res, err := catalogTips(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryParamInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (h *api) history(w http.ResponseWriter, r *http.Request) {
	list, err := data.GetQuotes(h.db, queryParamInt(r, "limit", data.QuoteLimitDefault))
	if err != nil {
		writeErr(w, "failed to list quotes", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *api) historySummary(w http.ResponseWriter, _ *http.Request) {
	s, err := data.GetQuoteSummary(h.db)
	if err != nil {
		writeErr(w, "failed to summarize quotes", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *api) clearHistory(w http.ResponseWriter, _ *http.Request) {
	n, err := data.DeleteQuotes(h.db)
	if err != nil {
		writeErr(w, "failed to clear quotes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *api) datasetStats(w http.ResponseWriter, r *http.Request) {
	table, err := h.source.TrainingTable(r.Context())
	if err != nil {
		writeErr(w, "failed to load training table", err)
		return
	}
	writeJSON(w, http.StatusOK, dataset.Describe(table))
}
