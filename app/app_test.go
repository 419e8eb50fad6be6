package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/baysim/config"
	"github.com/kilianp07/baysim/core/factory"
	coremon "github.com/kilianp07/baysim/core/monitoring"
	"github.com/kilianp07/baysim/core/recordlog"
	"github.com/kilianp07/baysim/core/sim"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, bucket, key, path string) error {
	args := m.Called(ctx, bucket, key, path)
	return args.Error(0)
}

func okUploader() *mockUploader {
	up := &mockUploader{}
	up.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return up
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Simulation.Bays = 3
	cfg.Simulation.Steps = 192
	cfg.Simulation.Seed = 7
	cfg.Outputs = []factory.ModuleConfig{
		{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(dir, "records.jsonl")}},
	}
	cfg.Export.Path = filepath.Join(dir, "export", "records.csv")
	cfg.Export.Format = ""
	cfg.Export.S3.Bucket = "sim-bucket"
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunner_RunPersistsAndExports(t *testing.T) {
	cfg := testConfig(t)
	up := &mockUploader{}
	up.On("Upload", mock.Anything, "sim-bucket", "records.csv", cfg.Export.Path).Return(nil).Once()
	var summary, progress bytes.Buffer
	r, err := New(cfg, WithUploader(up), WithSummary(&summary), WithProgress(&progress))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Len(t, res.Records, 192)
	assert.Equal(t, r.RunID(), res.RunID)

	store, err := recordlog.NewJSONLStore(cfg.Outputs[0].Conf["path"].(string))
	require.NoError(t, err)
	stored, err := store.Query(context.Background(), recordlog.Query{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, stored, 192)
	assert.Equal(t, res.Records[10], stored[10].OutputRecord)

	f, err := os.Open(cfg.Export.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 193)
	assert.Equal(t, []string{"time_index", "bay_1", "bay_2", "bay_3", "total_trucks", "total_cars", "total_power_mw", "timestep_type"}, rows[0])
	assert.Equal(t, "1", rows[1][0])

	up.AssertExpectations(t)

	assert.Contains(t, summary.String(), "winter-weekday-nighttime")
	assert.Contains(t, summary.String(), "mean occupancy")
}

func TestRunner_Deterministic(t *testing.T) {
	run := func() *sim.Result {
		cfg := testConfig(t)
		cfg.Outputs = nil
		cfg.Export.Path = ""
		cfg.Export.S3.Bucket = ""
		r, err := New(cfg)
		require.NoError(t, err)
		defer func() { _ = r.Close() }()
		res, err := r.Run(context.Background())
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Records, b.Records)
}

func TestRunner_IndependentPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Policy = "independent"
	cfg.Export.S3.Bucket = ""
	r, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "independent", res.Policy)
	assert.Equal(t, "winter_weekday_nighttime", res.Records[0].TimestepType)
}

func TestRunner_CapturesAbortedRun(t *testing.T) {
	rec := &coremon.Recorder{}
	cfg := testConfig(t)
	r, err := New(cfg, WithUploader(okUploader()))
	require.NoError(t, err)
	coremon.Init(rec)
	defer coremon.Init(coremon.NopMonitor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	var se *sim.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Step)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0].Tags["step"])
	assert.Equal(t, "fcfs", events[0].Tags["policy"])
	assert.Equal(t, "simulate", events[0].Tags["stage"])
	assert.Equal(t, r.RunID(), events[0].Tags["run_id"])
	_, statErr := os.Stat(cfg.Export.Path)
	assert.True(t, os.IsNotExist(statErr), "aborted runs are not exported")
}

func TestRunner_UploadFailureCaptured(t *testing.T) {
	rec := &coremon.Recorder{}
	cfg := testConfig(t)
	failing := &mockUploader{}
	failing.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("denied"))
	r, err := New(cfg, WithUploader(failing))
	require.NoError(t, err)
	coremon.Init(rec)
	defer coremon.Init(coremon.NopMonitor{})

	_, err = r.Run(context.Background())
	require.ErrorContains(t, err, "denied")
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "export", events[0].Tags["stage"])
	_, hasStep := events[0].Tags["step"]
	assert.False(t, hasStep)
}

func TestNew_InvalidOutputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Outputs = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(cfg)
	assert.ErrorContains(t, err, "outputs")
}

func TestRunner_WritesChart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Chart = filepath.Join(t.TempDir(), "charts", "run.html")
	r, err := New(cfg, WithUploader(okUploader()))
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Close())

	data, err := os.ReadFile(cfg.Export.Chart)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Charging load")
}
