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

// Package client wraps a single HTTP attempt plus bounded retry with
// exponential backoff, turning the outcome into a metrics.RequestEvent.
package client // import "github.com/sandeepkv93/lps/client"

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"fortio.org/log"
	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/metrics"
)

// Response pairs the produced event with whether the request counts as a
// success, the way the Python original's ClientResponse does.
type Response struct {
	Event   metrics.RequestEvent
	Success bool
}

// Client issues target requests over a shared *http.Client (so connections
// are reused across a run, matching the teacher's preference for one long
// lived client per run rather than one per request).
type Client struct {
	HTTP *http.Client
}

// New builds a Client. A single http.Client is safe for concurrent use by
// multiple dispatcher goroutines.
func New() *Client {
	return &Client{HTTP: &http.Client{}}
}

// Send performs target.Method against target.BaseURL, retrying per retry's
// policy, and returns the terminal event (spec.md §4.3).
func (c *Client) Send(ctx context.Context, runID string, target config.TargetConfig, retry config.RetryConfig) Response {
	startWall := time.Now()
	startMono := time.Now()
	attempt := 0
	for {
		attempt++
		event, success, retryable := c.attempt(ctx, runID, target, startWall, startMono)
		if success || !retryable || !retry.Enabled || attempt > retry.MaxRetries {
			return Response{Event: event, Success: success}
		}
		delay := time.Duration(math.Min(retry.MaxDelaySec, retry.BaseDelaySec*math.Pow(2, float64(attempt-1))) * float64(time.Second))
		log.Debugf("client: retrying %s %s in %v (attempt %d)", target.Method, target.BaseURL, delay, attempt)
		select {
		case <-ctx.Done():
			return Response{Event: event, Success: false}
		case <-time.After(delay):
		}
	}
}

// attempt performs exactly one HTTP round trip. retryable is true only for
// transport failures classified per spec.md §4.3; a request that cannot be
// built, or any received response, is terminal. Whether a retryable failure
// is actually retried is decided by Send.
func (c *Client) attempt(
	ctx context.Context,
	runID string,
	target config.TargetConfig,
	startWall, startMono time.Time,
) (event metrics.RequestEvent, success bool, retryable bool) {
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(target.TimeoutSec*float64(time.Second)))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, target.Method, target.BaseURL, nil)
	if err != nil {
		// Construction failures (bad method/URL) are configuration errors,
		// not per-request ones, but we still have to terminate this attempt.
		return c.failureEvent(runID, startWall, startMono, metrics.Other), false, false
	}
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		kind := classify(err)
		return c.failureEvent(runID, startWall, startMono, kind), false, true
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	latencyMs := float64(time.Since(startMono).Microseconds()) / 1000.0
	success = resp.StatusCode >= 200 && resp.StatusCode < 300
	event = metrics.RequestEvent{
		RunID:         runID,
		WallTime:      startWall,
		MonoTime:      time.Now(),
		LatencyMs:     latencyMs,
		StatusCode:    resp.StatusCode,
		BytesSent:     0,
		BytesReceived: len(body),
	}
	// A received response (even a non-2xx one) is a terminal outcome, not a
	// retryable transport failure: the Python original only retries on
	// caught exceptions (timeout/connect/read/other transport errors).
	return event, success, false
}

func (c *Client) failureEvent(runID string, startWall, startMono time.Time, kind metrics.ErrorKind) metrics.RequestEvent {
	latencyMs := float64(time.Since(startMono).Microseconds()) / 1000.0
	return metrics.RequestEvent{
		RunID:     runID,
		WallTime:  startWall,
		MonoTime:  time.Now(),
		LatencyMs: latencyMs,
		ErrorKind: kind,
	}
}

// classify maps a transport-level error into spec.md §4.3's taxonomy:
// timeout (deadline exceeded), connect (dial failure), read (I/O failure
// mid-response), or other.
func classify(err error) metrics.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return metrics.Timeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return metrics.Connect
		}
		return metrics.Read
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return metrics.Read
	}
	if strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "no such host") {
		return metrics.Connect
	}
	return metrics.Other
}
