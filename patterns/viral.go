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

// ViralSpikeScheduler produces a ramp-up / hold / exponential-decay curve,
// modeling a traffic spike triggered by a viral event.
type ViralSpikeScheduler struct {
	Params config.ViralSpikeConfig
}

// Schedule implements Scheduler.
func (v ViralSpikeScheduler) Schedule(durationSec int) Schedule {
	rates := make([]float64, durationSec)
	for t := 0; t < durationSec; t++ {
		rates[t] = v.rateAt(t)
	}
	return Schedule{Rates: rates}
}

func (v ViralSpikeScheduler) rateAt(tSec int) float64 {
	base := v.Params.BaselineRPS
	peak := base * v.Params.SpikeMultiplier
	rampEnd := v.Params.RampUpSec
	holdEnd := rampEnd + v.Params.PeakHoldSec
	if rampEnd > 0 && tSec < rampEnd {
		return base + (peak-base)*(float64(tSec)/float64(rampEnd))
	}
	if tSec < holdEnd {
		return peak
	}
	elapsed := tSec - holdEnd
	halfLife := v.Params.DecayHalfLifeSec
	if halfLife < 1 {
		halfLife = 1
	}
	decay := math.Exp(-math.Ln2 * float64(elapsed) / float64(halfLife))
	return base + (peak-base)*decay
}
