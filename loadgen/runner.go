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

package loadgen

import (
	"context"
	"fmt"

	"fortio.org/log"
	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/metrics"
	"github.com/sandeepkv93/lps/patterns"
)

// Store is the narrow persistence surface the runner needs (spec.md §6);
// the concrete implementation lives in package storage.
type Store interface {
	RunExists(ctx context.Context, runID string) (bool, error)
	SaveRun(ctx context.Context, cfg config.RunConfig, runID string, events []metrics.RequestEvent, perSecond []metrics.PerSecondMetrics) error
}

// Run validates cfg, checks for a run id collision, materializes the
// pattern's rate curve, dispatches it, aggregates the results, and persists
// everything. It returns the resolved run id on success.
func Run(ctx context.Context, cfg config.RunConfig, store Store, progress ProgressFunc) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	runID := cfg.ResolvedRunID()
	exists, err := store.RunExists(ctx, runID)
	if err != nil {
		return "", fmt.Errorf("loadgen: checking run existence: %w", err)
	}
	if exists {
		return "", fmt.Errorf("loadgen: run %s already exists", runID)
	}

	schedule, err := patterns.ScheduleFor(cfg.Pattern, cfg.DurationSec, cfg.Seed)
	if err != nil {
		return "", fmt.Errorf("loadgen: building schedule: %w", err)
	}

	log.Infof("loadgen: starting run %s (%s/%s, %d seconds)", runID, cfg.Pattern.Type, cfg.LoadModel, cfg.DurationSec)
	result := Dispatch(ctx, runID, cfg, schedule, progress)
	log.Infof("loadgen: run %s collected %d events", runID, len(result.Events))

	perSecond := metrics.AggregatePerSecond(runID, result.Events, result.RequestedRates, result.StartedMono)
	if err := store.SaveRun(ctx, cfg, runID, result.Events, perSecond); err != nil {
		return "", fmt.Errorf("loadgen: saving run %s: %w", runID, err)
	}
	return runID, nil
}
