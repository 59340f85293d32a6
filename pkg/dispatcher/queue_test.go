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
	"testing"

	"github.com/nanosoldier/bot/pkg/job"
)

func newBenchmarkJob(daily bool) job.Job {
	j, _ := job.NewBenchmarkJob(nil, nil, &job.JobSubmission{
		Func:  "runbenchmarks",
		Build: job.BuildRef{Repo: "JuliaLang/julia", SHA: "a"},
	}, "JuliaLang/julia", daily)
	return j
}

func TestQueuePopRespectsAffinity(t *testing.T) {
	t.Parallel()

	q := &Queue{}
	q.Push(newBenchmarkJob(false))

	if _, ok := q.Pop(map[job.Kind]bool{job.PackageEvalKind: true}, true); ok {
		t.Fatal("Pop matched a job outside the node's affinity")
	}
	if got, ok := q.Pop(map[job.Kind]bool{job.BenchmarkKind: true}, true); !ok || got.Kind() != job.BenchmarkKind {
		t.Fatalf("Pop = (%v, %v), want the enqueued BenchmarkJob", got, ok)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Pop removed the only item", q.Len())
	}
}

func TestQueuePopExcludesDailyWithoutAcceptDaily(t *testing.T) {
	t.Parallel()

	q := &Queue{}
	q.Push(newBenchmarkJob(true))

	affinity := map[job.Kind]bool{job.BenchmarkKind: true}
	if _, ok := q.Pop(affinity, false); ok {
		t.Fatal("Pop returned a daily job to a node with acceptDaily=false")
	}
	if _, ok := q.Pop(affinity, true); !ok {
		t.Fatal("Pop should return the daily job once acceptDaily=true")
	}
}

func TestQueuePopPrefersArrivalOrder(t *testing.T) {
	t.Parallel()

	q := &Queue{}
	first := newBenchmarkJob(false)
	second := newBenchmarkJob(true)
	q.Push(first)
	q.Push(second)

	got, ok := q.Pop(map[job.Kind]bool{job.BenchmarkKind: true}, true)
	if !ok || got != first {
		t.Fatalf("Pop did not return the earliest arrival first")
	}
}
