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

// Package storage persists run metadata, request events, and per-second
// metrics keyed by run id, behind the narrow interface the core consumes
// (spec.md §6). The Python original drives an embedded columnar database
// (DuckDB); this port drives an embedded SQLite file through database/sql,
// the closest single-file, server-less equivalent (see DESIGN.md).
package storage // import "github.com/sandeepkv93/lps/storage"

import (
	"context"
	"time"

	"github.com/sandeepkv93/lps/config"
	"github.com/sandeepkv93/lps/metrics"
)

// RunMeta is the row shape of run_meta, plus the decoded config metadata.
type RunMeta struct {
	RunID     string
	CreatedAt time.Time
	Config    map[string]any
	Notes     string
}

// Store is the persistence surface the core depends on. Nothing in
// config, patterns, breaker, client, loadgen, metrics, or analysis imports
// a concrete database driver; only this package and its callers do.
type Store interface {
	RunExists(ctx context.Context, runID string) (bool, error)
	SaveRun(ctx context.Context, cfg config.RunConfig, runID string, events []metrics.RequestEvent, perSecond []metrics.PerSecondMetrics) error
	LoadPerSecond(ctx context.Context, runID string) ([]metrics.PerSecondMetrics, error)
	LoadRequestEvents(ctx context.Context, runID string) ([]metrics.RequestEvent, error)
	LoadRunMeta(ctx context.Context, runID string) (*RunMeta, error)
	ListRuns(ctx context.Context) ([]RunMeta, error)
}
