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
	"math/rand"

	"github.com/sandeepkv93/lps/config"
)

// BurstyScheduler produces a curve that alternates between a baseline rate
// and a burst rate on a fixed interval, each second additionally jittered by
// a seeded uniform draw.
type BurstyScheduler struct {
	Params config.BurstyConfig
	Seed   int64
}

// Schedule implements Scheduler. The jitter RNG is a dedicated stream seeded
// from Seed, independent of any RNG the dispatcher uses for its own draws
// (spec.md §9, Open Question (b)).
func (b BurstyScheduler) Schedule(durationSec int) Schedule {
	rng := rand.New(rand.NewSource(b.Seed))
	rates := make([]float64, durationSec)
	for t := 0; t < durationSec; t++ {
		base := b.Params.BaselineRPS
		if b.isBurst(t) {
			base = b.Params.BurstRPS
		}
		jitter := base * b.Params.JitterPct
		lo, hi := base-jitter, base+jitter
		rate := lo
		if hi > lo {
			rate = lo + rng.Float64()*(hi-lo)
		}
		if rate < 0 {
			rate = 0
		}
		rates[t] = rate
	}
	return Schedule{Rates: rates}
}

func (b BurstyScheduler) isBurst(tSec int) bool {
	if b.Params.BurstIntervalSec <= 0 {
		return false
	}
	position := tSec % b.Params.BurstIntervalSec
	return position < b.Params.BurstDurationSec
}
