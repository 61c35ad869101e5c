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

// Package loadgen drives a target at a time-varying rate realized from a
// patterns.Schedule, under either an open-loop or closed-loop load model,
// the way periodic.PeriodicRunner drives a Runnable at a fixed QPS -
// generalized here to a rate that varies second by second and gated by an
// optional circuit breaker.
package loadgen // import "github.com/sandeepkv93/lps/loadgen"

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fortio.org/log"
	"github.com/sandeepkv93/lps/breaker"
	"github.com/sandeepkv93/lps/client"
	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/metrics"
	"github.com/sandeepkv93/lps/patterns"
)

// ProgressFunc is invoked at most once per completed second of the run, with
// monotonically non-decreasing secondsDone. Implementations that need to
// backpressure the dispatcher should block inside this callback; the
// dispatcher always awaits it inline before moving on (spec.md §9).
type ProgressFunc func(secondsDone, totalSeconds int)

// Result is the raw output of one dispatch: every terminal event collected,
// the rate curve that was realized, and the monotonic instant the run
// started at (needed by the aggregator for bucketing).
type Result struct {
	RunID          string
	Events         []metrics.RequestEvent
	RequestedRates []float64
	StartedMono    time.Time
}

// eventBuffer is the dispatcher's only piece of shared mutable state
// (spec.md §5): an append-only slice guarded by a mutex.
type eventBuffer struct {
	mu     sync.Mutex
	events []metrics.RequestEvent
}

func (b *eventBuffer) append(e metrics.RequestEvent) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *eventBuffer) snapshot() []metrics.RequestEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]metrics.RequestEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Dispatch realizes schedule against the wall clock for runID/cfg, using
// the open-loop or closed-loop load model per cfg.LoadModel, and returns
// every collected event.
func Dispatch(ctx context.Context, runID string, cfg config.RunConfig, schedule patterns.Schedule, progress ProgressFunc) Result {
	httpClient := client.New()
	var cb *breaker.Breaker
	if cfg.CircuitBreaker.Enabled {
		cb = breaker.New(cfg.CircuitBreaker)
	}
	buf := &eventBuffer{}
	startedMono := time.Now()

	if cfg.LoadModel == config.ClosedLoop {
		closedLoop(ctx, runID, cfg, schedule.Rates, httpClient, cb, buf, startedMono, progress)
	} else {
		openLoop(ctx, runID, cfg, schedule.Rates, httpClient, cb, buf, startedMono, progress)
	}

	return Result{
		RunID:          runID,
		Events:         buf.snapshot(),
		RequestedRates: schedule.Rates,
		StartedMono:    startedMono,
	}
}

// dispatchOne consults the breaker (if any), performs one send, records the
// outcome, and appends the event — unless the breaker blocked it, in which
// case nothing is appended (spec.md §4.4's "breaker-blocked dispatch is
// silent" invariant).
func dispatchOne(ctx context.Context, runID string, cfg config.RunConfig, c *client.Client, cb *breaker.Breaker, buf *eventBuffer) {
	if cb != nil && !cb.AllowRequest() {
		return
	}
	resp := c.Send(ctx, runID, cfg.Target, cfg.Retry)
	if cb != nil {
		cb.Record(resp.Success)
	}
	buf.append(resp.Event)
}

// openLoop approximates a Poisson-like arrival process with uniform
// within-second spacing (spec.md §4.4).
func openLoop(
	ctx context.Context,
	runID string,
	cfg config.RunConfig,
	rates []float64,
	c *client.Client,
	cb *breaker.Breaker,
	buf *eventBuffer,
	startedMono time.Time,
	progress ProgressFunc,
) {
	// Fractional-rate draw stream: seeded from cfg.Seed, independent of the
	// pattern's own jitter stream.
	rng := rand.New(rand.NewSource(cfg.Seed))
	var wg sync.WaitGroup
	for second, rate := range rates {
		n := int(rate)
		frac := rate - float64(n)
		if frac > 0 && rng.Float64() < frac {
			n++
		}
		for i := 0; i < n; i++ {
			offset := float64(i) / float64(n)
			scheduledAt := startedMono.Add(time.Duration((float64(second) + offset) * float64(time.Second)))
			wg.Add(1)
			go func(at time.Time) {
				defer wg.Done()
				sleepUntil(ctx, at)
				dispatchOne(ctx, runID, cfg, c, cb, buf)
			}(scheduledAt)
		}
		sleepUntil(ctx, startedMono.Add(time.Duration(second+1)*time.Second))
		if progress != nil {
			progress(second+1, len(rates))
		}
	}
	wg.Wait()
}

// closedLoop runs exactly W concurrent workers for the duration of the
// curve, each sampling the current rate and pacing itself at W/rate seconds
// between sends (spec.md §4.4).
func closedLoop(
	ctx context.Context,
	runID string,
	cfg config.RunConfig,
	rates []float64,
	c *client.Client,
	cb *breaker.Breaker,
	buf *eventBuffer,
	startedMono time.Time,
	progress ProgressFunc,
) {
	duration := len(rates)
	stopAt := startedMono.Add(time.Duration(duration) * time.Second)
	workers := cfg.ClosedLoopWorkers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for time.Now().Before(stopAt) {
				elapsed := time.Since(startedMono).Seconds()
				rate := rateForTime(rates, elapsed)
				if rate <= 0 {
					if !sleepFor(ctx, 50*time.Millisecond) {
						return
					}
					continue
				}
				dispatchOne(ctx, runID, cfg, c, cb, buf)
				interval := float64(workers) / rate
				if !sleepFor(ctx, time.Duration(interval*float64(time.Second))) {
					return
				}
			}
		}()
	}

	if progress != nil {
		for second := 0; second < duration; second++ {
			sleepUntil(ctx, startedMono.Add(time.Duration(second+1)*time.Second))
			progress(second+1, duration)
		}
	}
	wg.Wait()
}

func rateForTime(rates []float64, elapsedSec float64) float64 {
	idx := int(elapsedSec)
	if idx < 0 || idx >= len(rates) {
		return 0
	}
	return rates[idx]
}

// sleepUntil blocks until the target instant, or until ctx is canceled.
func sleepUntil(ctx context.Context, target time.Time) {
	delay := time.Until(target)
	if delay <= 0 {
		return
	}
	sleepFor(ctx, delay)
}

// sleepFor blocks for the given duration, returning false if ctx was
// canceled first.
func sleepFor(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		log.Debugf("loadgen: context canceled during sleep")
		return false
	}
}
