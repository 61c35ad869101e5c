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

import "github.com/sandeepkv93/lps/config"

// For builds the Scheduler for a RunConfig's pattern, equivalent to the
// Python original's patterns.factory.schedule_for lookup table keyed by
// pattern type, kept here as an explicit switch rather than a reflection
// based registry (spec.md §9 design note: avoid dynamic keyword splats).
func For(p config.PatternConfig, seed int64) (Scheduler, error) {
	switch p.Type {
	case config.Bursty:
		if p.Bursty == nil {
			return nil, &ErrUnknownPattern{Type: string(p.Type)}
		}
		return BurstyScheduler{Params: *p.Bursty, Seed: seed}, nil
	case config.Diurnal:
		if p.Diurnal == nil {
			return nil, &ErrUnknownPattern{Type: string(p.Type)}
		}
		return DiurnalScheduler{Params: *p.Diurnal}, nil
	case config.ViralSpike:
		if p.Viral == nil {
			return nil, &ErrUnknownPattern{Type: string(p.Type)}
		}
		return ViralSpikeScheduler{Params: *p.Viral}, nil
	default:
		return nil, &ErrUnknownPattern{Type: string(p.Type)}
	}
}

// ScheduleFor is a convenience wrapper combining For and Schedule, mirroring
// lps.patterns.schedule_for(pattern, duration, seed) in the original source.
func ScheduleFor(p config.PatternConfig, durationSec int, seed int64) (Schedule, error) {
	scheduler, err := For(p, seed)
	if err != nil {
		return Schedule{}, err
	}
	return scheduler.Schedule(durationSec), nil
}
