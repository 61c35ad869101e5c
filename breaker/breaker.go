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

// Package breaker implements a sliding-window circuit breaker: a gate that
// gives up admitting requests once a recent error-rate window crosses a
// threshold, then probes for recovery after a cooldown.
package breaker // import "github.com/sandeepkv93/lps/breaker"

import (
	"sync"
	"time"

	"github.com/sandeepkv93/lps/config"
)

// State is the explicit enum over the breaker's three states (spec.md §9
// design note: model as an enum, not ad-hoc strings).
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker is a sliding-window error-rate gate with cooldown and half-open
// probing, guarded by a single mutex the way periodic.Aborter guards its
// shared channel state.
type Breaker struct {
	mu                 sync.Mutex
	windowSize         int
	errorRateThreshold float64
	openCooldown       time.Duration

	state    State
	history  []bool
	openedAt time.Time

	now func() time.Time // overridable for tests
}

// New constructs a Breaker from a CircuitBreakerConfig. Its lifetime is
// meant to equal one run (spec.md §3 ownership note); construct a fresh one
// per run rather than reusing.
func New(cfg config.CircuitBreakerConfig) *Breaker {
	return &Breaker{
		windowSize:         cfg.WindowSize,
		errorRateThreshold: cfg.ErrorRateThreshold,
		openCooldown:       time.Duration(cfg.OpenCooldownSec * float64(time.Second)),
		state:              Closed,
		history:            make([]bool, 0, cfg.WindowSize),
		now:                time.Now,
	}
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// AllowRequest reports whether a new dispatch may proceed, transitioning
// open -> half_open exactly once the cooldown has elapsed. The call that
// observes the transition is the one that gets admitted as the probe.
func (b *Breaker) AllowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) >= b.openCooldown {
			b.state = HalfOpen
			return true
		}
		return false
	case HalfOpen:
		// A probe is already outstanding; refuse concurrent admits until it
		// resolves via Record.
		return false
	default: // Closed
		return true
	}
}

// Record reports the outcome of a request that was admitted by a preceding
// AllowRequest call. It must never be called without one (spec.md §4.2).
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == HalfOpen {
		if success {
			b.state = Closed
			b.history = b.history[:0]
			return
		}
		b.open()
		return
	}
	b.history = append(b.history, success)
	if len(b.history) > b.windowSize {
		b.history = b.history[len(b.history)-b.windowSize:]
	}
	b.evaluate()
}

func (b *Breaker) evaluate() {
	if len(b.history) < b.windowSize {
		return
	}
	successes := 0
	for _, ok := range b.history {
		if ok {
			successes++
		}
	}
	errorRate := 1.0 - float64(successes)/float64(len(b.history))
	if errorRate >= b.errorRateThreshold {
		b.open()
	}
}

func (b *Breaker) open() {
	b.state = Open
	b.openedAt = b.now()
	b.history = b.history[:0]
}
