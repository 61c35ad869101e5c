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

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"fortio.org/assert"
	"github.com/sandeepkv93/lps/config"
)

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New()
	target := config.TargetConfig{BaseURL: srv.URL, Method: "GET", TimeoutSec: 2}
	resp := c.Send(context.Background(), "run1", target, config.DefaultRetryConfig())
	assert.True(t, resp.Success)
	assert.Equal(t, 200, resp.Event.StatusCode)
}

func TestSendNonSuccessStatusIsNotRetried(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New()
	target := config.TargetConfig{BaseURL: srv.URL, Method: "GET", TimeoutSec: 2}
	retry := config.RetryConfig{Enabled: true, MaxRetries: 3, BaseDelaySec: 0.01, MaxDelaySec: 0.05}
	resp := c.Send(context.Background(), "run1", target, retry)
	assert.False(t, resp.Success)
	assert.Equal(t, 500, resp.Event.StatusCode)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestSendRetriesOnConnectFailure(t *testing.T) {
	c := New()
	target := config.TargetConfig{BaseURL: "http://127.0.0.1:1", Method: "GET", TimeoutSec: 1}
	retry := config.RetryConfig{Enabled: true, MaxRetries: 2, BaseDelaySec: 0.01, MaxDelaySec: 0.02}
	resp := c.Send(context.Background(), "run1", target, retry)
	assert.False(t, resp.Success)
	assert.Equal(t, metricsErrorKind(resp), "connect")
}

func metricsErrorKind(r Response) string {
	return string(r.Event.ErrorKind)
}

func TestSendHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New()
	target := config.TargetConfig{BaseURL: "http://127.0.0.1:1", Method: "GET", TimeoutSec: 1}
	resp := c.Send(ctx, "run1", target, config.DefaultRetryConfig())
	assert.False(t, resp.Success)
}

