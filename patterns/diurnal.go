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

package patterns

import (
	"math"

	"github.com/sandeepkv93/lps/config"
)

// DiurnalScheduler produces a smooth day/night curve between MinRPS and
// MaxRPS, shaped by one of three peak functions.
type DiurnalScheduler struct {
	Params config.DiurnalConfig
}

// Schedule implements Scheduler.
func (d DiurnalScheduler) Schedule(durationSec int) Schedule {
	rates := make([]float64, durationSec)
	for t := 0; t < durationSec; t++ {
		cyclePos := float64(t%d.Params.CycleDurationSec) / float64(d.Params.CycleDurationSec)
		rates[t] = d.rateAt(cyclePos)
	}
	return Schedule{Rates: rates}
}

func (d DiurnalScheduler) rateAt(cyclePos float64) float64 {
	minRPS, maxRPS := d.Params.MinRPS, d.Params.MaxRPS
	var peak float64
	switch d.Params.Shape {
	case config.Gaussian:
		const mu, sigma = 0.5, 0.18
		z := (cyclePos - mu) / sigma
		peak = math.Exp(-0.5 * z * z)
	case config.Commuter:
		morningZ := (cyclePos - 0.33) / 0.08
		eveningZ := (cyclePos - 0.72) / 0.1
		morning := math.Exp(-0.5 * morningZ * morningZ)
		evening := math.Exp(-0.5 * eveningZ * eveningZ)
		peak = (morning + evening) / 2.0
	default: // config.Sine
		peak = (math.Sin(2*math.Pi*(cyclePos-0.25)) + 1.0) / 2.0
	}
	return minRPS + (maxRPS-minRPS)*peak
}
