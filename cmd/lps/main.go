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

// lps generates HTTP load against a target URL following one of three
// time-varying rate patterns (bursty, diurnal, viral), persists the
// resulting per-second metrics and raw events, and exits after printing the
// resolved run id.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"fortio.org/cli"
	"fortio.org/log"
	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/loadgen"
	"github.com/sandeepkv93/lps/storage"
	"github.com/sandeepkv93/lps/version"
)

var (
	targetFlag    = flag.String("target", "", "target URL to drive load against (required)")
	methodFlag    = flag.String("method", "GET", "HTTP method to use")
	timeoutFlag   = flag.Float64("timeout", 5.0, "per-request timeout in seconds")
	durationFlag  = flag.Int("duration", 300, "run duration in seconds")
	patternFlag   = flag.String("pattern", "viral", "traffic pattern: bursty, diurnal, or viral")
	loadModelFlag = flag.String("load-model", "open_loop", "open_loop or closed_loop")
	workersFlag   = flag.Int("workers", 50, "closed_loop worker count")
	seedFlag      = flag.Int64("seed", 7, "PRNG seed for jitter and fractional-rate draws")
	dbPathFlag    = flag.String("db", "lps.db", "path to the sqlite run-history database")
	notesFlag     = flag.String("notes", "", "free-text note attached to the run's metadata")

	retryEnabledFlag  = flag.Bool("retry", false, "enable bounded retry with exponential backoff")
	retryMaxFlag      = flag.Int("retry-max", 2, "max retries when --retry is set")
	retryBaseFlag     = flag.Float64("retry-base-delay", 0.2, "retry backoff base delay in seconds")
	retryMaxDelayFlag = flag.Float64("retry-max-delay", 2.0, "retry backoff delay cap in seconds")

	breakerEnabledFlag  = flag.Bool("breaker", false, "enable the sliding-window circuit breaker")
	breakerWindowFlag   = flag.Int("breaker-window", 20, "breaker sliding window size in requests")
	breakerErrRateFlag  = flag.Float64("breaker-error-rate", 0.5, "breaker error-rate threshold to trip open")
	breakerCooldownFlag = flag.Float64("breaker-cooldown", 5.0, "breaker open-state cooldown in seconds")

	baselineRPSFlag = flag.Float64("baseline-rps", 30.0, "bursty/viral baseline requests per second")
	burstRPSFlag    = flag.Float64("burst-rps", 500.0, "bursty burst requests per second")
	burstDurFlag    = flag.Int("burst-duration-sec", 10, "bursty burst duration in seconds")
	burstIntFlag    = flag.Int("burst-interval-sec", 120, "bursty interval between burst starts in seconds")
	jitterPctFlag   = flag.Float64("jitter-pct", 0.05, "bursty fractional jitter applied to the rate")

	minRPSFlag   = flag.Float64("min-rps", 20.0, "diurnal trough requests per second")
	maxRPSFlag   = flag.Float64("max-rps", 300.0, "diurnal peak requests per second")
	cycleSecFlag = flag.Int("cycle-duration-sec", 1800, "diurnal full-cycle duration in seconds")
	shapeFlag    = flag.String("shape", "sine", "diurnal peak shape: sine, gaussian, or commuter")

	spikeMultFlag = flag.Float64("spike-multiplier", 100.0, "viral peak-over-baseline multiplier")
	rampUpFlag    = flag.Int("ramp-up-sec", 45, "viral ramp-up duration in seconds")
	peakHoldFlag  = flag.Int("peak-hold-sec", 120, "viral peak-hold duration in seconds")
	decayHalfFlag = flag.Int("decay-half-life-sec", 90, "viral post-peak exponential decay half-life in seconds")
)

// buildPattern projects the pattern-specific flags into a PatternConfig.
// -pattern accepts the external names from spec.md ("bursty", "diurnal",
// "viral"); "viral" maps to the internal config.ViralSpike tag.
// cli.ErrUsage prints usage and exits; it never returns on the default case.
func buildPattern() config.PatternConfig {
	patternName := *patternFlag
	if patternName == "viral" {
		patternName = string(config.ViralSpike)
	}
	switch config.PatternType(patternName) {
	case config.Bursty:
		return config.PatternConfig{
			Type: config.Bursty,
			Bursty: &config.BurstyConfig{
				BaselineRPS:      *baselineRPSFlag,
				BurstRPS:         *burstRPSFlag,
				BurstDurationSec: *burstDurFlag,
				BurstIntervalSec: *burstIntFlag,
				JitterPct:        *jitterPctFlag,
			},
		}
	case config.Diurnal:
		return config.PatternConfig{
			Type: config.Diurnal,
			Diurnal: &config.DiurnalConfig{
				MinRPS:           *minRPSFlag,
				MaxRPS:           *maxRPSFlag,
				CycleDurationSec: *cycleSecFlag,
				Shape:            config.DiurnalShape(*shapeFlag),
			},
		}
	case config.ViralSpike:
		return config.PatternConfig{
			Type: config.ViralSpike,
			Viral: &config.ViralSpikeConfig{
				BaselineRPS:      *baselineRPSFlag,
				SpikeMultiplier:  *spikeMultFlag,
				RampUpSec:        *rampUpFlag,
				PeakHoldSec:      *peakHoldFlag,
				DecayHalfLifeSec: *decayHalfFlag,
			},
		}
	default:
		cli.ErrUsage("Error: unknown -pattern %q, want bursty, diurnal, or viral", *patternFlag)
		return config.PatternConfig{} // unreached
	}
}

func main() {
	cli.ProgramName = "lps"
	cli.CommandBeforeFlags = true // "lps run -target ..."
	cli.ArgsHelp = ""             // all configuration is via flags, no positional arguments
	cli.MinArgs = 0
	cli.MaxArgs = 0
	cli.Main()
	if cli.Command != "run" {
		cli.ErrUsage("Error: unknown command %q, want run", cli.Command)
	}
	log.Infof("lps %s starting", version.Short())

	if *targetFlag == "" {
		cli.ErrUsage("Error: -target is required")
	}
	pattern := buildPattern()

	cfg := config.New(
		config.TargetConfig{BaseURL: *targetFlag, Method: *methodFlag, TimeoutSec: *timeoutFlag},
		pattern,
		*durationFlag,
	)
	cfg.LoadModel = config.LoadModel(*loadModelFlag)
	cfg.ClosedLoopWorkers = *workersFlag
	cfg.Seed = *seedFlag
	cfg.Notes = *notesFlag
	cfg.Retry = config.RetryConfig{
		Enabled: *retryEnabledFlag, MaxRetries: *retryMaxFlag,
		BaseDelaySec: *retryBaseFlag, MaxDelaySec: *retryMaxDelayFlag,
	}
	cfg.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled: *breakerEnabledFlag, WindowSize: *breakerWindowFlag,
		ErrorRateThreshold: *breakerErrRateFlag, OpenCooldownSec: *breakerCooldownFlag,
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	store, err := storage.Open(*dbPathFlag)
	if err != nil {
		log.Fatalf("opening storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	progress := func(secondsDone, totalSeconds int) {
		log.LogVf("progress: %d/%d seconds", secondsDone, totalSeconds)
	}

	runID, err := loadgen.Run(ctx, cfg, store, progress)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	fmt.Printf("Run complete: %s\n", runID)
}
