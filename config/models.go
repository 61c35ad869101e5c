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

// Package config holds the immutable, validated run configuration for a
// load pattern simulation: the target, the chosen traffic pattern, the
// load model and its resilience wrappers.
package config // import "github.com/sandeepkv93/lps/config"

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LoadModel selects how the dispatcher realizes the rate curve.
type LoadModel string

const (
	// OpenLoop schedules arrivals by the wall clock regardless of response times.
	OpenLoop LoadModel = "open_loop"
	// ClosedLoop runs a fixed worker population, each issuing requests back to back.
	ClosedLoop LoadModel = "closed_loop"
)

// PatternType tags which rate-curve shape a RunConfig uses.
type PatternType string

const (
	Bursty     PatternType = "bursty"
	Diurnal    PatternType = "diurnal"
	ViralSpike PatternType = "viral_spike"
)

// DiurnalShape selects the peak shape function for the diurnal pattern.
type DiurnalShape string

const (
	Sine     DiurnalShape = "sine"
	Gaussian DiurnalShape = "gaussian"
	Commuter DiurnalShape = "commuter"
)

// TargetConfig describes the single HTTP endpoint a run drives.
type TargetConfig struct {
	BaseURL    string            `json:"base_url"`
	Method     string            `json:"method"`
	TimeoutSec float64           `json:"timeout_sec"`
	Headers    map[string]string `json:"headers"`
}

// RetryConfig bounds the retry behavior of the HTTP client wrapper.
type RetryConfig struct {
	Enabled      bool    `json:"enabled"`
	MaxRetries   int     `json:"max_retries"`
	BaseDelaySec float64 `json:"base_delay_sec"`
	MaxDelaySec  float64 `json:"max_delay_sec"`
}

// DefaultRetryConfig mirrors the Python original's dataclass defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Enabled: false, MaxRetries: 2, BaseDelaySec: 0.2, MaxDelaySec: 2.0}
}

// CircuitBreakerConfig parameterizes the sliding-window breaker.
type CircuitBreakerConfig struct {
	Enabled            bool    `json:"enabled"`
	WindowSize         int     `json:"window_size"`
	ErrorRateThreshold float64 `json:"error_rate_threshold"`
	OpenCooldownSec    float64 `json:"open_cooldown_sec"`
}

// DefaultCircuitBreakerConfig mirrors the Python original's dataclass defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{Enabled: false, WindowSize: 20, ErrorRateThreshold: 0.5, OpenCooldownSec: 5.0}
}

// BurstyConfig parameterizes the bursty pattern.
type BurstyConfig struct {
	BaselineRPS      float64 `json:"baseline_rps"`
	BurstRPS         float64 `json:"burst_rps"`
	BurstDurationSec int     `json:"burst_duration_sec"`
	BurstIntervalSec int     `json:"burst_interval_sec"`
	JitterPct        float64 `json:"jitter_pct"`
}

// DiurnalConfig parameterizes the diurnal pattern.
type DiurnalConfig struct {
	MinRPS           float64      `json:"min_rps"`
	MaxRPS           float64      `json:"max_rps"`
	CycleDurationSec int          `json:"cycle_duration_sec"`
	Shape            DiurnalShape `json:"shape"`
}

// ViralSpikeConfig parameterizes the viral-spike pattern.
type ViralSpikeConfig struct {
	BaselineRPS      float64 `json:"baseline_rps"`
	SpikeMultiplier  float64 `json:"spike_multiplier"`
	RampUpSec        int     `json:"ramp_up_sec"`
	PeakHoldSec      int     `json:"peak_hold_sec"`
	DecayHalfLifeSec int     `json:"decay_half_life_sec"`
}

// PatternConfig is the tagged union of pattern parameters: exactly one of
// the three pointer fields is set, selected by Type.
type PatternConfig struct {
	Type    PatternType       `json:"type"`
	Bursty  *BurstyConfig     `json:"-"`
	Diurnal *DiurnalConfig    `json:"-"`
	Viral   *ViralSpikeConfig `json:"-"`
}

// Params returns the active parameter struct as a generic map, matching the
// wire shape of the Python original's PatternConfig.params projection.
func (p PatternConfig) Params() map[string]any {
	switch p.Type {
	case Bursty:
		if p.Bursty == nil {
			return nil
		}
		return map[string]any{
			"baseline_rps":       p.Bursty.BaselineRPS,
			"burst_rps":          p.Bursty.BurstRPS,
			"burst_duration_sec": p.Bursty.BurstDurationSec,
			"burst_interval_sec": p.Bursty.BurstIntervalSec,
			"jitter_pct":         p.Bursty.JitterPct,
		}
	case Diurnal:
		if p.Diurnal == nil {
			return nil
		}
		return map[string]any{
			"min_rps":            p.Diurnal.MinRPS,
			"max_rps":            p.Diurnal.MaxRPS,
			"cycle_duration_sec": p.Diurnal.CycleDurationSec,
			"shape":              string(p.Diurnal.Shape),
		}
	case ViralSpike:
		if p.Viral == nil {
			return nil
		}
		return map[string]any{
			"baseline_rps":        p.Viral.BaselineRPS,
			"spike_multiplier":    p.Viral.SpikeMultiplier,
			"ramp_up_sec":         p.Viral.RampUpSec,
			"peak_hold_sec":       p.Viral.PeakHoldSec,
			"decay_half_life_sec": p.Viral.DecayHalfLifeSec,
		}
	default:
		return nil
	}
}

// RunConfig is the immutable, validated description of one load run.
// Construct with New and validate with Validate before starting a run.
type RunConfig struct {
	Target            TargetConfig
	Pattern           PatternConfig
	DurationSec       int
	LoadModel         LoadModel
	ClosedLoopWorkers int
	Seed              int64
	Retry             RetryConfig
	CircuitBreaker    CircuitBreakerConfig
	RunID             string
	CreatedAt         time.Time
	Notes             string
}

// New fills in defaults (creation timestamp, load model, workers, seed,
// retry/breaker configs) the way periodic.RunnerOptions.Normalize fills in
// zero-valued fields. RunID is left empty; ResolvedRunID generates one.
func New(target TargetConfig, pattern PatternConfig, durationSec int) RunConfig {
	rc := RunConfig{
		Target:            target,
		Pattern:           pattern,
		DurationSec:       durationSec,
		LoadModel:         OpenLoop,
		ClosedLoopWorkers: 50,
		Seed:              7,
		Retry:             DefaultRetryConfig(),
		CircuitBreaker:    DefaultCircuitBreakerConfig(),
		CreatedAt:         time.Now().UTC(),
	}
	return rc
}

// Validate checks every invariant spec.md §3/§7 requires before a run is
// allowed to dispatch. It never mutates the receiver.
func (r RunConfig) Validate() error {
	if r.Target.BaseURL == "" {
		return fmt.Errorf("config: target base_url is required")
	}
	if r.Target.Method == "" {
		return fmt.Errorf("config: target method is required")
	}
	if r.Target.TimeoutSec <= 0 {
		return fmt.Errorf("config: target timeout_sec must be positive, got %g", r.Target.TimeoutSec)
	}
	if r.DurationSec < 1 {
		return fmt.Errorf("config: duration_sec must be >= 1, got %d", r.DurationSec)
	}
	switch r.LoadModel {
	case OpenLoop, ClosedLoop:
	default:
		return fmt.Errorf("config: unknown load_model %q", r.LoadModel)
	}
	if r.LoadModel == ClosedLoop && r.ClosedLoopWorkers < 1 {
		return fmt.Errorf("config: closed_loop_workers must be >= 1, got %d", r.ClosedLoopWorkers)
	}
	if r.Retry.Enabled {
		if r.Retry.MaxRetries < 0 {
			return fmt.Errorf("config: retry.max_retries must be >= 0, got %d", r.Retry.MaxRetries)
		}
		if r.Retry.BaseDelaySec < 0 || r.Retry.MaxDelaySec < 0 {
			return fmt.Errorf("config: retry delays must be >= 0")
		}
	}
	if r.CircuitBreaker.Enabled {
		if r.CircuitBreaker.WindowSize < 1 {
			return fmt.Errorf("config: circuit_breaker.window_size must be >= 1, got %d", r.CircuitBreaker.WindowSize)
		}
		if r.CircuitBreaker.ErrorRateThreshold < 0 || r.CircuitBreaker.ErrorRateThreshold > 1 {
			return fmt.Errorf("config: circuit_breaker.error_rate_threshold must be in [0,1], got %g", r.CircuitBreaker.ErrorRateThreshold)
		}
		if r.CircuitBreaker.OpenCooldownSec < 0 {
			return fmt.Errorf("config: circuit_breaker.open_cooldown_sec must be >= 0, got %g", r.CircuitBreaker.OpenCooldownSec)
		}
	}
	switch r.Pattern.Type {
	case Bursty:
		if r.Pattern.Bursty == nil {
			return fmt.Errorf("config: pattern type bursty requires bursty params")
		}
	case Diurnal:
		if r.Pattern.Diurnal == nil {
			return fmt.Errorf("config: pattern type diurnal requires diurnal params")
		}
		if r.Pattern.Diurnal.CycleDurationSec <= 0 {
			return fmt.Errorf("config: diurnal.cycle_duration_sec must be > 0, got %d", r.Pattern.Diurnal.CycleDurationSec)
		}
		if r.Pattern.Diurnal.MaxRPS < r.Pattern.Diurnal.MinRPS {
			return fmt.Errorf("config: diurnal.max_rps must be >= min_rps")
		}
		switch r.Pattern.Diurnal.Shape {
		case Sine, Gaussian, Commuter:
		default:
			return fmt.Errorf("config: unknown diurnal shape %q", r.Pattern.Diurnal.Shape)
		}
	case ViralSpike:
		if r.Pattern.Viral == nil {
			return fmt.Errorf("config: pattern type viral_spike requires viral params")
		}
	default:
		return fmt.Errorf("config: unknown pattern type %q", r.Pattern.Type)
	}
	return nil
}

// ResolvedRunID returns the configured run id, generating a fresh 32-hex-digit
// opaque token (a UUIDv4 with dashes stripped) if one was not supplied.
func (r RunConfig) ResolvedRunID() string {
	if r.RunID != "" {
		return r.RunID
	}
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// ToMetadata projects the config into the stable JSON shape persisted as
// run_meta.config_json (spec.md §6).
func (r RunConfig) ToMetadata(runID string) map[string]any {
	return map[string]any{
		"run_id":              runID,
		"created_at":          r.CreatedAt.UTC().Format(time.RFC3339),
		"duration_sec":        r.DurationSec,
		"load_model":          string(r.LoadModel),
		"closed_loop_workers": r.ClosedLoopWorkers,
		"seed":                r.Seed,
		"notes":               r.Notes,
		"pattern": map[string]any{
			"type":   string(r.Pattern.Type),
			"params": r.Pattern.Params(),
		},
		"target": map[string]any{
			"base_url":    r.Target.BaseURL,
			"method":      r.Target.Method,
			"timeout_sec": r.Target.TimeoutSec,
			"headers":     r.Target.Headers,
		},
		"retry": map[string]any{
			"enabled":        r.Retry.Enabled,
			"max_retries":    r.Retry.MaxRetries,
			"base_delay_sec": r.Retry.BaseDelaySec,
			"max_delay_sec":  r.Retry.MaxDelaySec,
		},
		"circuit_breaker": map[string]any{
			"enabled":              r.CircuitBreaker.Enabled,
			"window_size":          r.CircuitBreaker.WindowSize,
			"error_rate_threshold": r.CircuitBreaker.ErrorRateThreshold,
			"open_cooldown_sec":    r.CircuitBreaker.OpenCooldownSec,
		},
	}
}
