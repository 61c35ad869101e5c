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

// Package metrics holds the per-request event shape and the per-second
// aggregator that bucketizes a run's events into time-series summaries.
package metrics // import "github.com/sandeepkv93/lps/metrics"

import "time"

// ErrorKind classifies a terminal per-request failure. The zero value is
// never persisted: an event either carries a StatusCode or an ErrorKind,
// never both, never neither (spec.md §3 invariant).
type ErrorKind string

const (
	Timeout ErrorKind = "timeout"
	Connect ErrorKind = "connect"
	Read    ErrorKind = "read"
	Other   ErrorKind = "other"
)

// RequestEvent is recorded once per attempted request that reached a
// terminal outcome (success, or final failure after retries).
type RequestEvent struct {
	RunID         string
	WallTime      time.Time // start of the (first) attempt, for human display only
	MonoTime      time.Time // completion instant, monotonic-bearing time.Time
	LatencyMs     float64
	StatusCode    int       // valid iff ErrorKind == ""
	ErrorKind     ErrorKind // "" iff StatusCode is present
	BytesSent     int
	BytesReceived int
}

// Success reports whether the event represents a 2xx response.
func (e RequestEvent) Success() bool {
	return e.ErrorKind == "" && e.StatusCode >= 200 && e.StatusCode < 300
}

// PerSecondMetrics is one bucket of the aggregator's output table.
type PerSecondMetrics struct {
	RunID        string
	Second       int
	RequestedRPS float64
	AchievedRPS  float64
	P50Ms        float64
	P95Ms        float64
	P99Ms        float64
	ErrorRate    float64
	TimeoutRate  float64
}
