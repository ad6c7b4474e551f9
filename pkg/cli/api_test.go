package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mchmarny/healsure/pkg/data"
	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/model"
	"github.com/mchmarny/healsure/pkg/premium"
	"github.com/mchmarny/healsure/pkg/session"
	"github.com/mchmarny/healsure/pkg/wellness"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, src dataset.Source) *httptest.Server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, data.Init(dbPath))
	db, err := data.GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts := model.DefaultOptions()
	opts.Trees = 5

	h := &api{
		db:       db,
		source:   src,
		sessions: session.NewManager(src, opts),
	}
	ts := httptest.NewServer(makeRouter(h))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

var (
	apiApplicant = insurance.Applicant{
		Age:      35,
		Sex:      insurance.SexMale,
		BMI:      25.0,
		Children: 0,
		Smoker:   insurance.SmokerNo,
		Region:   insurance.RegionNortheast,
	}
	apiInputs = wellness.Inputs{
		BMI:          25,
		ExerciseFreq: 5,
		Diet:         wellness.DietExcellent,
		Smoker:       insurance.SmokerNo,
		SleepHours:   8,
		StressLevel:  2,
	}
)

func TestAPI_SessionFlow(t *testing.T) {
	ts := newTestServer(t, dataset.Synthetic{Rows: 200, Seed: 42})

	var info SessionInfo
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, ts.URL+"/api/sessions", nil, &info))
	require.NotEmpty(t, info.ID)
	assert.Equal(t, 40, info.Metrics.TestRows)
	base := ts.URL + "/api/sessions/" + info.ID

	var m model.Metrics
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base+"/metrics", nil, &m))
	assert.Equal(t, info.Metrics, m)

	var imp []model.Importance
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base+"/importance", nil, &imp))
	assert.Len(t, imp, 6)

	var pred map[string]float64
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/predict", apiApplicant, &pred))
	assert.Greater(t, pred["base_premium"], 0.0)

	var q premium.Quote
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/quote",
		QuoteRequest{Applicant: apiApplicant, Wellness: apiInputs}, &q))
	assert.Equal(t, pred["base_premium"], q.BasePremium)
	assert.Equal(t, 20.0, q.DiscountPercentage)

	var history []*premium.Quote
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/history?limit=5", nil, &history))
	require.Len(t, history, 1)
	assert.Equal(t, q.ID, history[0].ID)

	var summary data.QuoteSummary
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/history/summary", nil, &summary))
	assert.Equal(t, int64(1), summary.Count)

	var trained SessionInfo
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/train", nil, &trained))
	assert.Equal(t, info.Metrics, trained.Metrics)

	var list []*SessionInfo
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/sessions", nil, &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, base, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, base+"/metrics", nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, base, nil, nil))

	var cleared map[string]int64
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodDelete, ts.URL+"/api/history", nil, &cleared))
	assert.Equal(t, int64(1), cleared["deleted"])
}

func TestAPI_ErrorStatus(t *testing.T) {
	ts := newTestServer(t, dataset.Synthetic{Rows: 100, Seed: 1})

	var info SessionInfo
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, ts.URL+"/api/sessions", nil, &info))
	base := ts.URL + "/api/sessions/" + info.ID

	unknown := apiApplicant
	unknown.Region = "atlantis"
	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/predict", unknown, &body))
	assert.Contains(t, body["error"], "unknown category")

	old := apiApplicant
	old.Age = 101
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/predict", old, nil))

	badWellness := apiInputs
	badWellness.ExerciseFreq = 8
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/quote",
		QuoteRequest{Applicant: apiApplicant, Wellness: badWellness}, nil))

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base+"/predict",
		map[string]any{"age": 30, "income": 1}, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, ts.URL+"/api/sessions/nope/predict", apiApplicant, nil))
}

func TestAPI_EmptySource(t *testing.T) {
	empty := dataset.SourceFunc(func(context.Context) (insurance.Table, error) {
		return insurance.Table{}, nil
	})
	ts := newTestServer(t, empty)

	var body map[string]string
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(t, http.MethodPost, ts.URL+"/api/sessions", nil, &body))
	assert.Contains(t, body["error"], "empty training set")

	var stats dataset.Stats
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/dataset/stats", nil, &stats))
	assert.Equal(t, 0, stats.TotalRecords)
}

func TestAPI_Wellness(t *testing.T) {
	ts := newTestServer(t, dataset.Synthetic{Rows: 50, Seed: 1})

	var a wellness.Assessment
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/api/wellness", apiInputs, &a))
	assert.Equal(t, 93.8, a.Score)
	assert.Equal(t, 20.0, a.Discount)

	bad := apiInputs
	bad.Diet = "Great"
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, ts.URL+"/api/wellness", bad, nil))

	var tiers []wellness.Tier
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/wellness/tiers", nil, &tiers))
	assert.Equal(t, wellness.Tiers, tiers)

	var tips TipsResult
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/tips?category=stress", nil, &tips))
	assert.Len(t, tips.Tips, 1)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, ts.URL+"/api/tips?category=yoga", nil, nil))

	var stats dataset.Stats
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/api/dataset/stats", nil, &stats))
	assert.Equal(t, 50, stats.TotalRecords)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Wrap(session.ErrNotFound, "x"), http.StatusNotFound},
		{errors.Wrap(insurance.ErrInvalidInputRange, "x"), http.StatusBadRequest},
		{errors.Wrap(insurance.ErrUnknownCategory, "x"), http.StatusBadRequest},
		{errors.WithStack(insurance.ErrUntrainedModel), http.StatusConflict},
		{errors.Wrap(insurance.ErrEmptyTrainingSet, "x"), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
