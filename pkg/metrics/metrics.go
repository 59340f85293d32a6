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

// Package metrics holds the bot's prometheus collectors: webhook intake
// outcomes, queue depth, and job duration.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Webhooks counts inbound webhook deliveries by event kind and
	// outcome ("accepted", "ignored", "rejected").
	Webhooks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosoldier_webhooks_total",
		Help: "Number of webhook deliveries received, by event kind and outcome.",
	}, []string{"event_kind", "outcome"})

	// QueueDepth reports the current number of jobs waiting in the
	// dispatcher's queue.
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nanosoldier_queue_depth",
		Help: "Number of jobs currently queued for a worker node.",
	})

	// JobDuration records wall-clock job run time, by job kind and
	// result ("ok", "error").
	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nanosoldier_job_duration_seconds",
		Help:    "Job run duration in seconds, by kind and result.",
		Buckets: prometheus.ExponentialBuckets(10, 2, 12),
	}, []string{"kind", "result"})
)

func init() {
	prometheus.MustRegister(Webhooks)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(JobDuration)
}

// PollQueueDepth samples depth on interval and updates QueueDepth until
// ctx is canceled.
func PollQueueDepth(ctx context.Context, interval time.Duration, depth func() int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			QueueDepth.Set(float64(depth()))
		}
	}
}
