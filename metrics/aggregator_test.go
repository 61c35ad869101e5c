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

package metrics

import (
	"testing"
	"time"

	"fortio.org/assert"
)

func TestPercentileEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 50))
}

func TestPercentileSingleValue(t *testing.T) {
	assert.Equal(t, 42.0, percentile([]float64{42}, 99))
}

func TestPercentileLinearInterpolation(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	// rank = 0.5 * 3 = 1.5 -> interpolate between index 1 (20) and 2 (30)
	assert.Equal(t, 25.0, percentile(values, 50))
	assert.Equal(t, 10.0, percentile(values, 0))
	assert.Equal(t, 40.0, percentile(values, 100))
}

func TestAggregatePerSecondBucketsByCompletionSecond(t *testing.T) {
	start := time.Now()
	events := []RequestEvent{
		{MonoTime: start.Add(500 * time.Millisecond), LatencyMs: 100, StatusCode: 200},
		{MonoTime: start.Add(1200 * time.Millisecond), LatencyMs: 150, StatusCode: 200},
		{MonoTime: start.Add(1800 * time.Millisecond), LatencyMs: 50, ErrorKind: Timeout},
	}
	out := AggregatePerSecond("run1", events, []float64{10, 10, 10}, start)
	assert.Equal(t, 3, len(out))
	assert.Equal(t, 1.0, out[0].AchievedRPS)
	assert.Equal(t, 2.0, out[1].AchievedRPS)
	assert.Equal(t, 0.0, out[2].AchievedRPS)
	assert.Equal(t, 0.5, out[1].ErrorRate)
	assert.Equal(t, 0.5, out[1].TimeoutRate)
}

func TestAggregatePerSecondEmptySecondsAreZeroed(t *testing.T) {
	start := time.Now()
	out := AggregatePerSecond("run1", nil, []float64{5, 5}, start)
	assert.Equal(t, 2, len(out))
	for _, m := range out {
		assert.Equal(t, 0.0, m.AchievedRPS)
		assert.Equal(t, 0.0, m.P50Ms)
		assert.Equal(t, 0.0, m.ErrorRate)
	}
}

func TestRequestEventSuccess(t *testing.T) {
	ok := RequestEvent{StatusCode: 204}
	assert.True(t, ok.Success())
	bad := RequestEvent{StatusCode: 503}
	assert.False(t, bad.Success())
	failed := RequestEvent{ErrorKind: Connect}
	assert.False(t, failed.Success())
}
