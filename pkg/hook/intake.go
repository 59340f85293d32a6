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
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/events"
	"github.com/nanosoldier/bot/pkg/hostapi"
	"github.com/nanosoldier/bot/pkg/job"
	"github.com/nanosoldier/bot/pkg/markdown"
	"github.com/nanosoldier/bot/pkg/metrics"
	"github.com/nanosoldier/bot/pkg/submission"
)

// handleWebhook is the Server's HTTP handler for inbound deliveries.
// Response codes follow spec.md section 6: 202 accepted, 204 ignored
// (action filter, no trigger phrase present), 400 invalid (wrong
// issue kind, unparseable or inadmissible submission).
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	cfg := s.agent.Config()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}

	if err := hostapi.ValidateSignature([]byte(cfg.WebhookSecret), r.Header.Get(signatureHeader), body); err != nil {
		s.logger.WithError(err).Warn("rejected webhook with invalid signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	kind := events.Kind(r.Header.Get(eventTypeHeader))
	ctx := r.Context()

	ev, err := events.Adapt(ctx, kind, body, s.client)
	if err != nil {
		var ignored *events.Ignored
		if errors.As(err, &ignored) {
			metrics.Webhooks.WithLabelValues(string(kind), "ignored").Inc()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		metrics.Webhooks.WithLabelValues(string(kind), "rejected").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	trigger, err := s.triggerRegex(cfg)
	if err != nil {
		s.logger.WithError(err).Error("invalid trigger regex in config")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	matched := trigger.FindString(markdown.DropCodeBlock(ev.CommentBody))
	if matched == "" {
		metrics.Webhooks.WithLabelValues(string(kind), "ignored").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sub := &job.JobSubmission{
		ID:        uuid.NewString(),
		Repo:      ev.TargetRepo,
		Build:     ev.Build,
		StatusSHA: ev.StatusSHA,
		URL:       ev.CommentURL,
		FromKind:  ev.FromKind,
		PRNumber:  ev.PRNumber,
	}

	parsed, err := submission.Parse(matched)
	if err != nil {
		s.rejectSubmission(sub, cfg.Admin, err)
		metrics.Webhooks.WithLabelValues(string(kind), "rejected").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sub.Func = parsed.Func
	sub.Args = parsed.Args
	sub.Kwargs = parsed.Kwargs

	j, err := s.buildJob(ctx, cfg, parsed, sub)
	if err != nil {
		s.rejectSubmission(sub, cfg.Admin, err)
		metrics.Webhooks.WithLabelValues(string(kind), "rejected").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.dispatcher.Enqueue(j)
	metrics.Webhooks.WithLabelValues(string(kind), "accepted").Inc()
	w.WriteHeader(http.StatusAccepted)
}

// buildJob validates parsed against its job-type grammar, enforces the
// daily-admission invariant, and constructs the concrete job.
func (s *Server) buildJob(ctx context.Context, cfg *config.Config, parsed *submission.Parsed, sub *job.JobSubmission) (job.Job, error) {
	isDaily := job.IsDailyRequested(sub.Kwargs)

	switch parsed.Func {
	case job.FuncName(job.BenchmarkKind):
		if err := submission.ValidateBenchmark(parsed); err != nil {
			return nil, err
		}
		if err := job.CheckDailyEligible(ctx, s.client, sub.FromKind, sub.StatusSHA, sub.Kwargs, cfg.TrackRepo, cfg.TrackBranch); err != nil {
			return nil, err
		}
		return job.NewBenchmarkJob(ctx, s.client, sub, cfg.TrackRepo, isDaily)

	case job.FuncName(job.PackageEvalKind):
		if err := submission.ValidateRunTests(parsed); err != nil {
			return nil, err
		}
		if err := job.CheckDailyEligible(ctx, s.client, sub.FromKind, sub.StatusSHA, sub.Kwargs, cfg.TrackRepo, cfg.TrackBranch); err != nil {
			return nil, err
		}
		primaryCfg, err := submission.Configuration(parsed, "configuration")
		if err != nil {
			return nil, err
		}
		againstCfg, err := submission.Configuration(parsed, "vs_configuration")
		if err != nil {
			return nil, err
		}
		return job.NewPackageEvalJob(ctx, s.client, sub, primaryCfg, againstCfg, cfg.TrackRepo, isDaily)

	default:
		return nil, fmt.Errorf("unrecognized trigger function %q", parsed.Func)
	}
}

func (s *Server) rejectSubmission(sub *job.JobSubmission, admin string, err error) {
	s.logger.WithFields(logrus.Fields{"repo": sub.Repo, "sha": sub.StatusSHA}).WithError(err).Warn("rejected submission")
	s.reporter.Error(sub, err.Error())
	s.reporter.Comment(sub, fmt.Sprintf("submission rejected: %s; cc @%s", err.Error(), admin))
}
