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

package config

import "sync"

// Agent holds the live Config behind a mutex so the webhook server and
// dispatcher loops observe a consistent snapshot, and reports whether
// the most recent load succeeded.
type Agent struct {
	mu      sync.RWMutex
	c       *Config
	healthy bool
}

// Config returns the most recently loaded configuration, or nil if none
// has been set yet.
func (a *Agent) Config() *Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.c
}

// Healthy reports whether the most recent load succeeded.
func (a *Agent) Healthy() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.healthy
}

// Set installs cfg and marks the agent healthy.
func (a *Agent) Set(cfg *Config) {
	a.mu.Lock()
	a.c = cfg
	a.mu.Unlock()
	a.setHealthy(true)
}

// SetWithoutBroadcast installs cfg without touching the health flag;
// used when re-reading an already-validated config (e.g. a reload that
// only refreshes node liveness) where health should reflect whatever
// the last full Set/setHealthy call established.
func (a *Agent) SetWithoutBroadcast(cfg *Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.c = cfg
}

// setHealthy updates the health flag in isolation, used by Set and by
// tests.
func (a *Agent) setHealthy(healthy bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.healthy = healthy
}
