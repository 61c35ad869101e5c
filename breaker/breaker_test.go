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

package breaker

import (
	"testing"
	"time"

	"fortio.org/assert"
	"github.com/sandeepkv93/lps/config"
)

func newTestBreaker(t *testing.T) *Breaker {
	t.Helper()
	b := New(config.CircuitBreakerConfig{
		Enabled: true, WindowSize: 4, ErrorRateThreshold: 0.5, OpenCooldownSec: 1,
	})
	return b
}

func TestBreakerStartsClosed(t *testing.T) {
	b := newTestBreaker(t)
	assert.Equal(t, Closed, b.State())
	assert.True(t, b.AllowRequest())
}

func TestBreakerOpensAtErrorRateThreshold(t *testing.T) {
	b := newTestBreaker(t)
	for i := 0; i < 2; i++ {
		b.Record(true)
	}
	for i := 0; i < 2; i++ {
		b.Record(false)
	}
	assert.Equal(t, Open, b.State())
	assert.False(t, b.AllowRequest())
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b := newTestBreaker(t)
	b.Record(true)
	b.Record(true)
	b.Record(true)
	b.Record(false)
	assert.Equal(t, Closed, b.State())
}

func TestBreakerHalfOpenAdmitsExactlyOneProbe(t *testing.T) {
	b := newTestBreaker(t)
	start := time.Now()
	b.now = func() time.Time { return start }
	for i := 0; i < 4; i++ {
		b.Record(false)
	}
	assert.Equal(t, Open, b.State())

	b.now = func() time.Time { return start.Add(2 * time.Second) }
	assert.True(t, b.AllowRequest(), "cooldown elapsed: first caller becomes the probe")
	assert.Equal(t, HalfOpen, b.State())
	assert.False(t, b.AllowRequest(), "second concurrent caller must be refused during half_open")
}

func TestBreakerHalfOpenSuccessCloses(t *testing.T) {
	b := newTestBreaker(t)
	start := time.Now()
	b.now = func() time.Time { return start }
	for i := 0; i < 4; i++ {
		b.Record(false)
	}
	b.now = func() time.Time { return start.Add(2 * time.Second) }
	assert.True(t, b.AllowRequest())
	b.Record(true)
	assert.Equal(t, Closed, b.State())
	assert.True(t, b.AllowRequest())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := newTestBreaker(t)
	start := time.Now()
	b.now = func() time.Time { return start }
	for i := 0; i < 4; i++ {
		b.Record(false)
	}
	b.now = func() time.Time { return start.Add(2 * time.Second) }
	assert.True(t, b.AllowRequest())
	b.Record(false)
	assert.Equal(t, Open, b.State())
}

func TestBreakerStateStringValues(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half_open", HalfOpen.String())
}
