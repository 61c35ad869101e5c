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

package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"fortio.org/assert"
	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/patterns"
)

func countingServer(hits *int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestDispatchOpenLoopIssuesRequestedVolume(t *testing.T) {
	var hits int64
	srv := countingServer(&hits)
	defer srv.Close()

	cfg := config.New(
		config.TargetConfig{BaseURL: srv.URL, Method: "GET", TimeoutSec: 1},
		config.PatternConfig{Type: config.Bursty, Bursty: &config.BurstyConfig{BaselineRPS: 5, BurstRPS: 5, BurstIntervalSec: 1, BurstDurationSec: 1}},
		2,
	)
	schedule := patterns.Schedule{Rates: []float64{5, 5}}
	result := Dispatch(context.Background(), "run1", cfg, schedule, nil)
	assert.Equal(t, 10, len(result.Events))
	assert.Equal(t, int64(10), atomic.LoadInt64(&hits))
}

func TestDispatchClosedLoopRunsUntilDeadline(t *testing.T) {
	var hits int64
	srv := countingServer(&hits)
	defer srv.Close()

	cfg := config.New(
		config.TargetConfig{BaseURL: srv.URL, Method: "GET", TimeoutSec: 1},
		config.PatternConfig{Type: config.Bursty, Bursty: &config.BurstyConfig{BaselineRPS: 20, BurstRPS: 20, BurstIntervalSec: 1, BurstDurationSec: 1}},
		2,
	)
	cfg.LoadModel = config.ClosedLoop
	cfg.ClosedLoopWorkers = 4
	schedule := patterns.Schedule{Rates: []float64{20, 20}}
	result := Dispatch(context.Background(), "run1", cfg, schedule, nil)
	assert.True(t, len(result.Events) > 0, "closed loop should have produced some events")
}

func TestDispatchInvokesProgressOncePerSecond(t *testing.T) {
	var hits int64
	srv := countingServer(&hits)
	defer srv.Close()

	cfg := config.New(
		config.TargetConfig{BaseURL: srv.URL, Method: "GET", TimeoutSec: 1},
		config.PatternConfig{Type: config.Bursty, Bursty: &config.BurstyConfig{BaselineRPS: 1, BurstRPS: 1, BurstIntervalSec: 1, BurstDurationSec: 1}},
		3,
	)
	schedule := patterns.Schedule{Rates: []float64{1, 1, 1}}
	var seconds []int
	progress := func(secondsDone, totalSeconds int) {
		seconds = append(seconds, secondsDone)
		assert.Equal(t, 3, totalSeconds)
	}
	Dispatch(context.Background(), "run1", cfg, schedule, progress)
	assert.Equal(t, []int{1, 2, 3}, seconds)
}

func TestRateForTimeOutOfRangeIsZero(t *testing.T) {
	rates := []float64{1, 2, 3}
	assert.Equal(t, 0.0, rateForTime(rates, -1))
	assert.Equal(t, 0.0, rateForTime(rates, 5))
	assert.Equal(t, 2.0, rateForTime(rates, 1.5))
}
