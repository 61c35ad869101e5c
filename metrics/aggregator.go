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
	"sort"
	"time"
)

// AggregatePerSecond bucketizes events by completion second and computes
// rates and latency percentiles for each second of [0, duration).
//
// Bucketing is by floor(event.MonoTime - startMono), matching spec.md §5:
// an event that started in second s but completed in second s+1 belongs to
// bucket s+1. Output always has exactly `duration` entries; seconds with no
// events are emitted with zeros.
func AggregatePerSecond(runID string, events []RequestEvent, requestedRates []float64, startMono time.Time) []PerSecondMetrics {
	duration := len(requestedRates)
	buckets := make(map[int][]RequestEvent, duration)
	for _, e := range events {
		elapsed := e.MonoTime.Sub(startMono).Seconds()
		second := int(elapsed)
		if second < 0 {
			second = 0
		}
		buckets[second] = append(buckets[second], e)
	}

	out := make([]PerSecondMetrics, duration)
	for second := 0; second < duration; second++ {
		bucket := buckets[second]
		achieved := len(bucket)
		latencies := make([]float64, 0, achieved)
		errorCount, timeoutCount := 0, 0
		for _, e := range bucket {
			if e.LatencyMs >= 0 {
				latencies = append(latencies, e.LatencyMs)
			}
			if e.ErrorKind != "" {
				errorCount++
				if e.ErrorKind == Timeout {
					timeoutCount++
				}
			}
		}
		p50, p95, p99 := percentile(latencies, 50), percentile(latencies, 95), percentile(latencies, 99)
		total := achieved
		if total < 1 {
			total = 1
		}
		out[second] = PerSecondMetrics{
			RunID:        runID,
			Second:       second,
			RequestedRPS: requestedRates[second],
			AchievedRPS:  float64(achieved),
			P50Ms:        p50,
			P95Ms:        p95,
			P99Ms:        p99,
			ErrorRate:    float64(errorCount) / float64(total),
			TimeoutRate:  float64(timeoutCount) / float64(total),
		}
	}
	return out
}

// percentile computes the p-th percentile of values using linear
// interpolation between the two nearest order statistics (the "linear"
// method, matching spec.md §4.5/§9). Returns 0 for an empty sample.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := (p / 100.0) * float64(n-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
