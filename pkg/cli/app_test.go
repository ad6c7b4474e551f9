package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/healsure/pkg/config"
	"github.com/mchmarny/healsure/pkg/data"
	"github.com/mchmarny/healsure/pkg/premium"
	"github.com/mchmarny/healsure/pkg/wellness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir    string
	db     string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		db:     filepath.Join(dir, data.DataFileName),
		config: filepath.Join(dir, config.FileName),
	}

	cfg := config.Default()
	cfg.Model.Trees = 5
	cfg.Data.Rows = 200
	require.NoError(t, config.SaveFile(env.config, cfg))
	return env
}

// run executes the app with args and returns what it wrote to stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader("")

	full := append([]string{appName, "--db", e.db, "--config", e.config}, args...)
	err := app.Run(full)
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "score", "--bmi", "25", "--exercise", "5", "--diet", "excellent", "--sleep", "8", "--stress", "2")
	require.NoError(t, err)

	var a wellness.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, 93.8, a.Score)
	assert.Equal(t, 20.0, a.Discount)
	assert.Equal(t, wellness.DietExcellent, a.Inputs.Diet)
}

func TestScoreCommand_YAML(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "--format", "yaml", "score", "--bmi", "25", "--exercise", "5", "--diet", "Excellent", "--sleep", "8", "--stress", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "score: 93.8")
}

func TestScoreCommand_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "score", "--bmi", "22.5", "--sleep", "13")
	assert.Error(t, err)
}

func TestTrainCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "train", "--trees", "3")
	require.NoError(t, err)

	var res TrainResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 200, res.Rows)
	assert.Equal(t, 3, res.Options.Trees)
	assert.Equal(t, 40, res.Metrics.TestRows)
	assert.Len(t, res.Importance, 6)
}

func TestQuoteCommand_RecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "quote",
		"--age", "35", "--sex", "male", "--bmi", "25", "--region", "northeast",
		"--wellness-bmi", "25", "--exercise", "5", "--diet", "Excellent", "--sleep", "8", "--stress", "2")
	require.NoError(t, err)

	var q premium.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Greater(t, q.BasePremium, 0.0)
	assert.Equal(t, 93.8, q.WellnessScore)
	assert.Equal(t, 20.0, q.DiscountPercentage)
	assert.InDelta(t, q.BasePremium*0.8, q.FinalPremium, 1e-9)

	out, err = env.run(t, "history", "list")
	require.NoError(t, err)
	var list []*premium.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, q.ID, list[0].ID)

	out, err = env.run(t, "history", "summary")
	require.NoError(t, err)
	var s data.QuoteSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, int64(1), s.Count)

	_, err = env.run(t, "history", "clear")
	require.NoError(t, err)
	out, err = env.run(t, "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestQuoteCommand_NoSaveAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "quote", "--age", "35", "--sex", "male", "--bmi", "25", "--region", "northeast", "--no-save")
	require.NoError(t, err)

	out, err := env.run(t, "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = env.run(t, "quote", "--age", "17", "--sex", "male", "--bmi", "25", "--region", "northeast")
	assert.Error(t, err)
}

func TestDatasetCommands(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "dataset", "generate", "--name", "demo", "--rows", "50", "--data-seed", "9")
	require.NoError(t, err)

	out, err := env.run(t, "dataset", "list")
	require.NoError(t, err)
	var list []*data.Dataset
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "demo", list[0].Name)
	assert.Equal(t, int64(50), list[0].Rows)

	csvPath := filepath.Join(env.dir, "demo.csv")
	_, err = env.run(t, "dataset", "export", "--name", "demo", "--out", csvPath)
	require.NoError(t, err)

	_, err = env.run(t, "dataset", "import", "--name", "copy", "--path", csvPath)
	require.NoError(t, err)

	out, err = env.run(t, "dataset", "stats", "--source", "db", "--dataset", "copy")
	require.NoError(t, err)
	var stats struct {
		TotalRecords int `json:"total_records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 50, stats.TotalRecords)

	out, err = env.run(t, "train", "--source", "db", "--dataset", "copy", "--trees", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"rows": 50`)

	_, err = env.run(t, "dataset", "delete", "--name", "copy")
	require.NoError(t, err)
	_, err = env.run(t, "train", "--source", "db", "--dataset", "copy")
	assert.Error(t, err, "empty stored dataset")

	_, err = env.run(t, "dataset", "import", "--name", "x")
	assert.Error(t, err)
}

func TestTipsCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "tips")
	require.NoError(t, err)
	var all TipsResult
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all.Tips, 4)
	assert.NotEmpty(t, all.Facts)

	out, err = env.run(t, "tips", "--category", "sleep")
	require.NoError(t, err)
	var one TipsResult
	require.NoError(t, json.Unmarshal([]byte(out), &one))
	assert.Len(t, one.Tips, 1)

	_, err = env.run(t, "tips", "--category", "yoga")
	assert.Error(t, err)

	out, err = env.run(t, "tips", "--personalized", "--bmi", "22", "--exercise", "0", "--sleep", "8", "--stress", "2", "--diet", "Excellent")
	require.NoError(t, err)
	var p TipsResult
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Len(t, p.Tips, 1)
	assert.Contains(t, p.Tips, "Exercise Improvement")
}

func TestResetCommand(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "dataset", "generate", "--rows", "10")
	require.NoError(t, err)

	out, err := env.run(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, err = env.run(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset complete.")

	out, err = env.run(t, "dataset", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	cfg := config.Default()
	cfg.Model.Trees = 0
	require.NoError(t, config.SaveFile(env.config, cfg))

	_, err := env.run(t, "tips")
	assert.Error(t, err)
}
