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

// Package patterns computes time-varying request-rate curves from a
// RunConfig's pattern parameters. Every scheduler here is a pure function of
// (params, duration, seed): identical inputs always produce an identical
// curve.
package patterns // import "github.com/sandeepkv93/lps/patterns"

import "fmt"

// Schedule is the materialized rate curve: Rates[i] is the requested
// requests-per-second during the half-open second [i, i+1).
type Schedule struct {
	Rates []float64
}

// Len returns the schedule's duration in seconds.
func (s Schedule) Len() int {
	return len(s.Rates)
}

// Scheduler computes a Schedule for a given duration.
type Scheduler interface {
	Schedule(durationSec int) Schedule
}

// ErrUnknownPattern is returned by For when the PatternConfig's type tag
// does not match any scheduler, or when the parameter struct for the tag is
// nil.
type ErrUnknownPattern struct {
	Type string
}

func (e *ErrUnknownPattern) Error() string {
	return fmt.Sprintf("patterns: unknown pattern type %q", e.Type)
}
