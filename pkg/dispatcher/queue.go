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

// Package dispatcher is the in-memory FIFO job queue and the
// per-node worker loops that drain it, generalizing prow/hook's
// single-writer event-dispatch-table model to a pull-based,
// affinity-filtered job queue.
package dispatcher

import (
	"sync"

	"github.com/nanosoldier/bot/pkg/job"
)

// Queue is an append-only-from-one / remove-from-many FIFO, guarded by
// a single mutex (spec.md section 5's shared-state note: "a single
// mutex (or channel-per-node pull model) guards the array; selection
// predicate and removal are atomic").
type Queue struct {
	mu    sync.Mutex
	items []job.Job
}

// Push appends j to the tail. Called only from the webhook handler's
// goroutine.
func (q *Queue) Push(j job.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, j)
}

// Pop scans in arrival order and atomically removes the first job
// whose kind is in affinity and whose daily flag is compatible with
// acceptDaily, per spec.md section 4.4's selection rule.
func (q *Queue) Pop(affinity map[job.Kind]bool, acceptDaily bool) (job.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, j := range q.items {
		if !affinity[j.Kind()] {
			continue
		}
		if isDaily(j) && !acceptDaily {
			continue
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		return j, true
	}
	return nil, false
}

// Len reports the current queue depth, used for the queue-depth
// metrics gauge.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func isDaily(j job.Job) bool {
	switch v := j.(type) {
	case *job.BenchmarkJob:
		return v.IsDaily
	case *job.PackageEvalJob:
		return v.IsDaily
	default:
		return false
	}
}
