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

package analysis

import "github.com/sandeepkv93/lps/metrics"

// Regression reports a metric that moved materially for the worse between
// two runs.
type Regression struct {
	Metric  string
	DeltaPct float64
	Message string
}

// CompareRuns inner-joins base and candidate on second and reports a
// regression per spec.md §4.7's three thresholds. Either empty input, or an
// empty join, yields no regressions.
func CompareRuns(base, candidate []metrics.PerSecondMetrics) []Regression {
	var regressions []Regression
	if len(base) == 0 || len(candidate) == 0 {
		return regressions
	}
	byBaseSecond := make(map[int]metrics.PerSecondMetrics, len(base))
	for _, m := range base {
		byBaseSecond[m.Second] = m
	}

	var baseP99Sum, candP99Sum float64
	var baseErrSum, candErrSum float64
	var baseRPSSum, candRPSSum float64
	joined := 0
	for _, c := range candidate {
		b, ok := byBaseSecond[c.Second]
		if !ok {
			continue
		}
		joined++
		baseP99Sum += b.P99Ms
		candP99Sum += c.P99Ms
		baseErrSum += b.ErrorRate
		candErrSum += c.ErrorRate
		baseRPSSum += b.AchievedRPS
		candRPSSum += c.AchievedRPS
	}
	if joined == 0 {
		return regressions
	}
	n := float64(joined)
	baseP99, candP99 := baseP99Sum/n, candP99Sum/n
	baseErr, candErr := baseErrSum/n, candErrSum/n
	baseRPS, candRPS := baseRPSSum/n, candRPSSum/n

	if baseP99 > 0 {
		delta := (candP99 - baseP99) / baseP99
		if delta > 0.20 {
			regressions = append(regressions, Regression{
				Metric: "p99_ms", DeltaPct: delta * 100,
				Message: "p99 latency increased materially",
			})
		}
	}
	if baseErr > 0 {
		delta := (candErr - baseErr) / baseErr
		if delta > 0.30 {
			regressions = append(regressions, Regression{
				Metric: "error_rate", DeltaPct: delta * 100,
				Message: "error rate regression detected",
			})
		}
	}
	if baseRPS > 0 {
		delta := (baseRPS - candRPS) / baseRPS
		if delta > 0.20 {
			regressions = append(regressions, Regression{
				Metric: "achieved_rps", DeltaPct: delta * 100,
				Message: "throughput regression detected",
			})
		}
	}
	return regressions
}
