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

package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sirupsen/logrus"
	"gopkg.in/robfig/cron.v2"

	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/job"
	"github.com/nanosoldier/bot/pkg/joberror"
	"github.com/nanosoldier/bot/pkg/metrics"
)

// pollInterval is the fixed retry delay an idle node waits between
// queue scans, per spec.md section 4.4.
const pollInterval = 5 * time.Second

type cpusKey struct{}

// NodeCPUs reports the CPU allocation of the node running the current
// job, for runners (package-eval) that bound their own parallelism
// accordingly.
func NodeCPUs(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(cpusKey{}).(int)
	return n, ok
}

// RunFunc executes one job to completion and returns its result
// bundle. The Job interface itself carries no Run method: runners are
// looked up by Kind in a registry, the same pattern prow/hook uses to
// route webhook events to plugin handlers rather than calling a method
// on the event object (see pkg/job.Job's doc comment).
type RunFunc func(ctx context.Context, j job.Job) (*job.ResultBundle, error)

// Publisher stages and pushes a job's report, returning a stable URL.
type Publisher interface {
	Publish(ctx context.Context, j job.Job, bundle *job.ResultBundle) (url string, err error)
}

// Reporter posts lifecycle status transitions and comments back to the
// hosting service, per spec.md section 4.8.
type Reporter interface {
	Pending(sub *job.JobSubmission, message string)
	Success(sub *job.JobSubmission, message string)
	Error(sub *job.JobSubmission, message string)
	Comment(sub *job.JobSubmission, body string)
}

// Dispatcher owns the shared queue and one worker loop per configured
// node.
type Dispatcher struct {
	queue     *Queue
	nodes     []config.Node
	runners   map[job.Kind]RunFunc
	publisher Publisher
	reporter  Reporter
	admin     string
	seq       *snowflake.Node
	logger    *logrus.Entry
}

// New builds a Dispatcher. runners must have an entry for every Kind
// any configured node's affinity names.
func New(nodes []config.Node, runners map[job.Kind]RunFunc, publisher Publisher, reporter Reporter, admin string) *Dispatcher {
	seq, err := snowflake.NewNode(1)
	if err != nil {
		// Only fails if the clock is set far enough in the future to
		// overflow the node's time component; log correlation degrades
		// gracefully rather than blocking startup.
		seq = nil
	}
	return &Dispatcher{
		queue:     &Queue{},
		nodes:     nodes,
		runners:   runners,
		publisher: publisher,
		reporter:  reporter,
		admin:     admin,
		seq:       seq,
		logger:    logrus.WithField("component", "dispatcher"),
	}
}

// Enqueue pushes j and posts the "accepted" pending status, per
// spec.md section 4.4's enqueue signal.
func (d *Dispatcher) Enqueue(j job.Job) {
	d.queue.Push(j)
	logger := d.logger
	if d.seq != nil {
		logger = logger.WithField("seq", d.seq.Generate().String())
	}
	logger.WithFields(logrus.Fields{"kind": j.Kind(), "job": j.Summarize()}).Info("enqueued")
	d.reporter.Pending(j.Submission(), fmt.Sprintf("accepted %s: %s", j.Kind(), j.Summarize()))
}

// StartSelfHealthLog runs a periodic queue-depth log line on cronExpr,
// an optional operational signal distinct from the per-job status
// updates posted to the hosting service.
func (d *Dispatcher) StartSelfHealthLog(cronExpr string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cronExpr, func() {
		d.logger.WithField("queue_depth", d.QueueDepth()).Info("self-health")
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling self-health log: %w", err)
	}
	c.Start()
	return c, nil
}

// QueueDepth reports the current queue length, for the metrics gauge.
func (d *Dispatcher) QueueDepth() int { return d.queue.Len() }

// Run starts one worker loop per configured node and blocks until ctx
// is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	done := make(chan struct{}, len(d.nodes))
	for _, n := range d.nodes {
		n := n
		go func() {
			d.nodeLoop(ctx, n)
			done <- struct{}{}
		}()
	}
	for range d.nodes {
		<-done
	}
}

func (d *Dispatcher) nodeLoop(ctx context.Context, n config.Node) {
	affinity := make(map[job.Kind]bool, len(n.Affinity))
	for _, t := range n.Affinity {
		affinity[nodeJobKind(t)] = true
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		j, ok := d.queue.Pop(affinity, n.AcceptDaily)
		if ok {
			d.runOne(ctx, n, j)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func nodeJobKind(t config.NodeJobType) job.Kind {
	switch t {
	case config.BenchmarkJobType:
		return job.BenchmarkKind
	case config.PackageEvalJobType:
		return job.PackageEvalKind
	default:
		return ""
	}
}

func (d *Dispatcher) runOne(ctx context.Context, n config.Node, j job.Job) {
	sub := j.Submission()
	logger := d.logger.WithFields(logrus.Fields{"node": n.Name, "kind": j.Kind(), "job": j.Summarize()})

	d.reporter.Pending(sub, fmt.Sprintf("running on node %s: %s", n.Name, j.Summarize()))

	runner, ok := d.runners[j.Kind()]
	if !ok {
		logger.Errorf("no runner registered for kind %s", j.Kind())
		d.reporter.Error(sub, "internal error: no runner registered for this job type")
		return
	}

	if n.CPUs > 0 {
		ctx = context.WithValue(ctx, cpusKey{}, n.CPUs)
	}
	runStart := time.Now()
	bundle, err := runner(ctx, j)
	if err != nil {
		metrics.JobDuration.WithLabelValues(string(j.Kind()), "error").Observe(time.Since(runStart).Seconds())
		d.handleRunError(logger, sub, err)
		return
	}
	metrics.JobDuration.WithLabelValues(string(j.Kind()), "ok").Observe(bundle.Duration.Seconds())

	url, pubErr := d.publisher.Publish(ctx, j, bundle)
	if pubErr != nil {
		logger.WithError(pubErr).Warn("report publication failed")
		d.reporter.Comment(sub, fmt.Sprintf("report upload failed; cc @%s", d.admin))
	}

	if bundle.HasIssues {
		d.reporter.Success(sub, "possible regressions were detected")
	} else {
		d.reporter.Success(sub, "done")
	}
	if url != "" {
		logger.WithField("url", url).Info("job completed")
	}
}

func (d *Dispatcher) handleRunError(logger *logrus.Entry, sub *job.JobSubmission, err error) {
	logger.WithError(err).Error("job run failed")

	msg := err.Error()
	if _, ok := joberror.KindOf(err); !ok {
		// An error that did not go through the joberror taxonomy might
		// carry command output; never forward its message verbatim.
		msg = "an internal error occurred"
	}

	d.reporter.Error(sub, msg)
	d.reporter.Comment(sub, fmt.Sprintf("job failed: %s; cc @%s", msg, d.admin))
}
