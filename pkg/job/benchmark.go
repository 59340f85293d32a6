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

package job

import "fmt"

// BenchmarkJob requests a run (or a primary-vs-against comparison) of
// the benchmark suite filtered by TagPredicate.
type BenchmarkJob struct {
	sub *JobSubmission

	TagPredicate string
	Against      *BuildRef
	Date         string
	IsDaily      bool
	SkipBuild    bool
}

var _ Job = (*BenchmarkJob)(nil)

func (j *BenchmarkJob) Kind() Kind { return BenchmarkKind }

func (j *BenchmarkJob) Submission() *JobSubmission { return j.sub }

func (j *BenchmarkJob) Summarize() string {
	s := j.sub
	summary := fmt.Sprintf("%s@%s", s.Build.Repo, shortSHA(s.Build.SHA))
	if j.Against != nil {
		summary += fmt.Sprintf(" vs %s@%s", j.Against.Repo, shortSHA(j.Against.SHA))
	}
	return summary
}

// DemoteToSingleRun clears Against, used by NewBenchmarkJob when a
// comparison would run an identical build against itself (spec.md
// section 3 invariants, section 8 property 10).
func (j *BenchmarkJob) DemoteToSingleRun() {
	j.Against = nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
