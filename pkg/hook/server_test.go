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
	"net/http/httptest"
	"testing"

	"github.com/nanosoldier/bot/pkg/config"
)

func TestTriggerRegexCaching(t *testing.T) {
	t.Parallel()

	s := &Server{}
	cfg := &config.Config{Trigger: "@nanosoldier"}

	re1, err := s.triggerRegex(cfg)
	if err != nil {
		t.Fatalf("triggerRegex: %v", err)
	}
	re2, err := s.triggerRegex(cfg)
	if err != nil {
		t.Fatalf("triggerRegex: %v", err)
	}
	if re1 != re2 {
		t.Fatal("triggerRegex recompiled for an unchanged Trigger")
	}

	cfg2 := &config.Config{Trigger: "@someoneelse"}
	re3, err := s.triggerRegex(cfg2)
	if err != nil {
		t.Fatalf("triggerRegex: %v", err)
	}
	if re3 == re1 {
		t.Fatal("triggerRegex did not recompile for a changed Trigger")
	}
}

func TestTriggerRegexRejectsInvalidPattern(t *testing.T) {
	t.Parallel()

	s := &Server{}
	cfg := &config.Config{Trigger: "(unclosed"}
	if _, err := s.triggerRegex(cfg); err == nil {
		t.Fatal("expected an error compiling an invalid trigger regex")
	}
}

func TestHealthRoute(t *testing.T) {
	t.Parallel()

	agent := &config.Agent{}
	agent.Set(&config.Config{})

	s := &Server{agent: agent, health: NewHealth(agent)}

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("healthy agent: status = %d, want 200", rec.Code)
	}
}
