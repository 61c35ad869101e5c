// Copyright 2026 lps Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/metrics"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lps.db")
	store, err := Open(path)
	assert.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunExistsFalseInitially(t *testing.T) {
	store := openTestStore(t)
	exists, err := store.RunExists(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveRunRoundTrips(t *testing.T) {
	store := openTestStore(t)
	cfg := config.New(
		config.TargetConfig{BaseURL: "http://example.com", Method: "GET", TimeoutSec: 1},
		config.PatternConfig{Type: config.Bursty, Bursty: &config.BurstyConfig{BaselineRPS: 5, BurstRPS: 10, BurstIntervalSec: 60, BurstDurationSec: 5}},
		2,
	)
	cfg.Notes = "unit test run"
	start := time.Now()
	events := []metrics.RequestEvent{
		{WallTime: start, MonoTime: start, LatencyMs: 12.5, StatusCode: 200},
		{WallTime: start, MonoTime: start.Add(time.Second), LatencyMs: 40, ErrorKind: metrics.Timeout},
	}
	perSecond := []metrics.PerSecondMetrics{
		{Second: 0, RequestedRPS: 5, AchievedRPS: 5, P50Ms: 12.5, ErrorRate: 0},
		{Second: 1, RequestedRPS: 5, AchievedRPS: 4, P50Ms: 40, ErrorRate: 0.25, TimeoutRate: 0.25},
	}

	err := store.SaveRun(context.Background(), cfg, "run-abc", events, perSecond)
	assert.NoError(t, err)

	exists, err := store.RunExists(context.Background(), "run-abc")
	assert.NoError(t, err)
	assert.True(t, exists)

	meta, err := store.LoadRunMeta(context.Background(), "run-abc")
	assert.NoError(t, err)
	assert.True(t, meta != nil)
	assert.Equal(t, "unit test run", meta.Notes)

	loadedEvents, err := store.LoadRequestEvents(context.Background(), "run-abc")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(loadedEvents))

	loadedPerSecond, err := store.LoadPerSecond(context.Background(), "run-abc")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(loadedPerSecond))
	assert.Equal(t, 0, loadedPerSecond[0].Second)
	assert.Equal(t, 1, loadedPerSecond[1].Second)
}

func TestListRunsReturnsAllSavedRuns(t *testing.T) {
	store := openTestStore(t)
	cfg := config.New(
		config.TargetConfig{BaseURL: "http://example.com", Method: "GET", TimeoutSec: 1},
		config.PatternConfig{Type: config.Bursty, Bursty: &config.BurstyConfig{BaselineRPS: 1, BurstRPS: 1, BurstIntervalSec: 1, BurstDurationSec: 1}},
		1,
	)
	assert.NoError(t, store.SaveRun(context.Background(), cfg, "run-1", nil, nil))
	assert.NoError(t, store.SaveRun(context.Background(), cfg, "run-2", nil, nil))

	runs, err := store.ListRuns(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(runs))
}

func TestLoadRunMetaMissingReturnsNil(t *testing.T) {
	store := openTestStore(t)
	meta, err := store.LoadRunMeta(context.Background(), "missing")
	assert.NoError(t, err)
	assert.True(t, meta == nil)
}
