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

// EvalType distinguishes comparing two interpreter revisions from
// comparing two revisions of a single package against its reverse
// dependents.
type EvalType string

const (
	TestJulia   EvalType = "TestJulia"
	TestPackage EvalType = "TestPackage"
)

// PackageEvalJob requests evaluation of a package selection (or ALL
// packages) under a primary configuration, optionally against a second
// configuration/build.
type PackageEvalJob struct {
	sub *JobSubmission

	PackageSelection     []string
	Against              *BuildRef
	Date                 string
	IsDaily              bool
	Configuration        Configuration
	AgainstConfiguration Configuration
	UseBlocklist         bool
	Type                 EvalType
}

var _ Job = (*PackageEvalJob)(nil)

func (j *PackageEvalJob) Kind() Kind { return PackageEvalKind }

func (j *PackageEvalJob) Submission() *JobSubmission { return j.sub }

func (j *PackageEvalJob) Summarize() string {
	s := j.sub
	summary := fmt.Sprintf("%s@%s", s.Build.Repo, shortSHA(s.Build.SHA))
	if j.Against != nil {
		summary += fmt.Sprintf(" vs %s@%s", j.Against.Repo, shortSHA(j.Against.SHA))
	}
	if len(j.PackageSelection) == 0 {
		summary += " (ALL)"
	} else {
		summary += fmt.Sprintf(" (%d packages)", len(j.PackageSelection))
	}
	return summary
}

// DemoteToSingleRun clears Against, used by the identical-build guard
// in spec.md section 4.6 step 2.
func (j *PackageEvalJob) DemoteToSingleRun() {
	j.Against = nil
}

// Identical reports whether Against describes the same (repo, sha,
// configuration) triple as the primary build, per spec.md section 3's
// invariant that such a comparison must be demoted to a single run.
func (j *PackageEvalJob) Identical() bool {
	if j.Against == nil {
		return false
	}
	return j.sub.Build.SameRevision(*j.Against) && j.Configuration.Equal(j.AgainstConfiguration)
}
