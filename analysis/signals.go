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

// Package analysis derives operational signal windows (queueing, overload,
// autoscaling lag) from a run's per-second metrics, and compares two runs
// for throughput/latency/error-rate regressions.
package analysis // import "github.com/sandeepkv93/lps/analysis"

import "github.com/sandeepkv93/lps/metrics"

// SignalWindow flags a half-open [StartSec, EndSec) range of a run with a
// qualitative label.
type SignalWindow struct {
	StartSec int
	EndSec   int
	Label    string
}

const (
	LabelQueueing     = "queueing"
	LabelOverload     = "overload"
	LabelAutoscaleLag = "autoscale_lag"
)

// QueueingWindows flags seconds where p99 rose while achieved throughput
// held essentially flat — a queueing signature rather than a load change
// (spec.md §4.6).
func QueueingWindows(perSecond []metrics.PerSecondMetrics) []SignalWindow {
	var windows []SignalWindow
	for i := 1; i < len(perSecond); i++ {
		dP99 := perSecond[i].P99Ms - perSecond[i-1].P99Ms
		dRPS := perSecond[i].AchievedRPS - perSecond[i-1].AchievedRPS
		if dP99 > 0 && absF(dRPS) < 1 {
			s := perSecond[i].Second
			windows = append(windows, SignalWindow{StartSec: s, EndSec: s + 1, Label: LabelQueueing})
		}
	}
	return windows
}

// OverloadWindows flags seconds where achieved throughput fell while the
// error rate rose (spec.md §4.6).
func OverloadWindows(perSecond []metrics.PerSecondMetrics) []SignalWindow {
	var windows []SignalWindow
	for i := 1; i < len(perSecond); i++ {
		dRPS := perSecond[i].AchievedRPS - perSecond[i-1].AchievedRPS
		dErr := perSecond[i].ErrorRate - perSecond[i-1].ErrorRate
		if dRPS < 0 && dErr > 0 {
			s := perSecond[i].Second
			windows = append(windows, SignalWindow{StartSec: s, EndSec: s + 1, Label: LabelOverload})
		}
	}
	return windows
}

// AutoscalingLagWindow finds the gap between a demand spike (requested_rps
// rising) and the run catching up to within 90% of that demand, if any
// (spec.md §4.6).
func AutoscalingLagWindow(perSecond []metrics.PerSecondMetrics) []SignalWindow {
	if len(perSecond) == 0 {
		return nil
	}
	s0 := -1
	for i := 1; i < len(perSecond); i++ {
		if perSecond[i].RequestedRPS-perSecond[i-1].RequestedRPS > 0 {
			s0 = perSecond[i].Second
			break
		}
	}
	if s0 == -1 {
		return nil
	}
	s1 := -1
	for i := range perSecond {
		if perSecond[i].Second < s0 {
			continue
		}
		if perSecond[i].AchievedRPS >= 0.9*perSecond[i].RequestedRPS {
			s1 = perSecond[i].Second
			break
		}
	}
	if s1 == -1 || s1 <= s0 {
		return nil
	}
	return []SignalWindow{{StartSec: s0, EndSec: s1, Label: LabelAutoscaleLag}}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
