/*
Copyright 2026 The Nanosoldier Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package hook

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/nanosoldier/bot/pkg/config"
)

// LivenessCheck reports whether one aspect of the bot is healthy.
type LivenessCheck func() bool

// Health serves /healthz, checked against a set of liveness checks.
// Unlike prow's pjutil.Health, it does not own its own *http.Server:
// Server.router mounts serveLive alongside the webhook route on a
// single listener, since this bot has no separate readiness surface
// to justify a second port.
type Health struct {
	mu     sync.RWMutex
	checks []LivenessCheck
}

// NewHealth builds a Health whose default check is the config agent's
// most recent load outcome.
func NewHealth(agent *config.Agent) *Health {
	h := &Health{}
	h.ServeLive(agent.Healthy)
	return h
}

// ServeLive replaces the set of liveness checks consulted by /healthz.
func (h *Health) ServeLive(checks ...LivenessCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append([]LivenessCheck(nil), checks...)
}

func (h *Health) serveLive(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]LivenessCheck(nil), h.checks...)
	h.mu.RUnlock()

	for _, check := range checks {
		if !check() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "LivenessCheck failed")
			return
		}
	}
	fmt.Fprint(w, "OK")
}
