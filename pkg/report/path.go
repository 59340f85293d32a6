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

// Package report is the Report Publisher: it stages a job's report
// into the shared report repository's deterministic layout and pushes
// it via a reset + cherry-pick + push loop that tolerates multiple
// uncoordinated producers, per spec.md section 4.7.
package report

import (
	"fmt"
	"path"
	"time"

	"github.com/nanosoldier/bot/pkg/job"
)

func jobTypeDir(k job.Kind) string {
	switch k {
	case job.BenchmarkKind:
		return "benchmark"
	case job.PackageEvalKind:
		return "pkgeval"
	default:
		return "unknown"
	}
}

// Path returns the directory a job's report belongs at, relative to
// the report repository root, per spec.md section 6's layout:
// by_hash/<sha7>[_vs_<sha7>] for comparisons, by_date/YYYY-MM/DD for
// daily runs.
func Path(j job.Job, bundle *job.ResultBundle, now time.Time) string {
	dir := jobTypeDir(j.Kind())
	if isDaily(j) {
		return path.Join(dir, "by_date", now.Format("2006-01"), now.Format("02"))
	}

	primary := shortSHA(bundle.Primary.SHA)
	if bundle.Against != nil {
		return path.Join(dir, "by_hash", fmt.Sprintf("%s_vs_%s", primary, shortSHA(bundle.Against.SHA)))
	}
	return path.Join(dir, "by_hash", primary)
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

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
