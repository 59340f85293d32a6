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

// Package hook is the webhook ingestion layer: it authenticates
// inbound hosting-service deliveries, normalizes them into an Event,
// extracts and parses the trigger phrase, validates and constructs a
// job, and hands it to the dispatcher. It also serves a liveness
// endpoint for operational monitoring.
package hook

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/dispatcher"
	"github.com/nanosoldier/bot/pkg/events"
	"github.com/nanosoldier/bot/pkg/job"
)

const (
	signatureHeader = "X-Hub-Signature-256"
	eventTypeHeader = "X-GitHub-Event"
)

// HostClient is the capability surface the hook layer needs from the
// hosting API client: resolving PRs and commit refs (for the Event
// Adapter and Reference Resolver) and checking a daily job's admission
// window. *github.Client satisfies this without an adapter.
type HostClient interface {
	events.PRResolver
	job.RefClient
	job.DailyClient
}

// Server implements the webhook endpoint and the liveness endpoint.
type Server struct {
	agent      *config.Agent
	client     HostClient
	dispatcher *dispatcher.Dispatcher
	reporter   dispatcher.Reporter
	health     *Health
	logger     *logrus.Entry

	triggerMu  sync.Mutex
	triggerSrc string
	triggerRE  *regexp.Regexp
}

// New builds a Server. The trigger regular expression and track
// repo/branch are read from agent's live Config on every request, so a
// config reload takes effect without a restart.
func New(agent *config.Agent, client HostClient, d *dispatcher.Dispatcher, reporter dispatcher.Reporter) *Server {
	return &Server{
		agent:      agent,
		client:     client,
		dispatcher: d,
		reporter:   reporter,
		health:     NewHealth(agent),
		logger:     logrus.WithField("component", "hook"),
	}
}

// router builds the gorilla/mux route table: the webhook endpoint and
// the health endpoints.
func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.health.serveLive).Methods(http.MethodGet)
	return r
}

// Run starts the HTTP server on bindAddress:port and blocks until ctx
// is canceled or the server fails, matching the {bindAddress, port}
// entry point spec.md section 6 describes.
func (s *Server) Run(ctx context.Context, bindAddress string, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bindAddress, port),
		Handler: s.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// triggerRegex returns the compiled trigger regular expression for
// cfg, recompiling only when cfg.Trigger has changed since the last
// call (a config reload is the only time that happens in practice).
func (s *Server) triggerRegex(cfg *config.Config) (*regexp.Regexp, error) {
	s.triggerMu.Lock()
	defer s.triggerMu.Unlock()

	if cfg.Trigger == s.triggerSrc && s.triggerRE != nil {
		return s.triggerRE, nil
	}
	re, err := regexp.Compile(cfg.Trigger)
	if err != nil {
		return nil, fmt.Errorf("compiling trigger regex %q: %w", cfg.Trigger, err)
	}
	s.triggerSrc = cfg.Trigger
	s.triggerRE = re
	return re, nil
}
