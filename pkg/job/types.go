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

// Package job holds the data model shared by the submission pipeline,
// the dispatcher and the job runners: BuildRef, JobSubmission, the
// Job/Configuration types, and the reference-resolution and
// construction logic that turns a parsed submission into a runnable
// job.
package job

import "time"

// BuildRef pins a source revision. Repo is "owner/name". VInfo is a
// free-form interpreter/platform description captured after a
// successful build; it starts as a placeholder.
//
// BuildRef is mutable in exactly one place: a pull-request build's SHA
// is overwritten once it resolves to a merge commit. VInfo is filled in
// after a successful build.
type BuildRef struct {
	Repo       string
	SHA        string
	CommitTime time.Time
	VInfo      string
}

// SameRevision reports whether two refs would run identical work:
// same repo, same SHA. Configuration equality is checked by callers
// that hold a Configuration (see Configuration.Equal).
func (b BuildRef) SameRevision(o BuildRef) bool {
	return b.Repo == o.Repo && b.SHA == o.SHA
}

// EventKind identifies which of the four webhook event shapes a
// submission originated from.
type EventKind string

const (
	FromCommit EventKind = "commit"
	FromReview EventKind = "review"
	FromPR     EventKind = "pr"
)

// JobSubmission is immutable after construction. args/kwargs carry the
// *source text* of each argument, never an evaluated value: downstream
// validators re-parse rather than trust a pre-evaluated representation.
type JobSubmission struct {
	// ID is a correlation identifier assigned when the submission is
	// first parsed at webhook intake; it threads through queue,
	// runner and report log lines for a given job.
	ID string
	// Repo is the originating repository (where the comment lives).
	Repo string
	// Build is the code under test; it may differ from Repo when the
	// comment is on a PR opened from a fork.
	Build BuildRef
	// StatusSHA is the commit status checks are posted against. It is
	// pinned at intake and never changes, even if Build.SHA later
	// mutates to a merge-commit SHA.
	StatusSHA string
	// URL is the originating comment's URL.
	URL string
	// FromKind records which webhook event produced this submission.
	FromKind EventKind
	// PRNumber is set when FromKind is FromReview or FromPR.
	PRNumber *int
	// Func is the trigger phrase's function name ("runbenchmarks" or
	// "runtests").
	Func string
	// Args holds the source text of each positional argument in order.
	Args []string
	// Kwargs holds the source text of each keyword argument's value,
	// keyed by argument name.
	Kwargs map[string]string
}

// Kwarg returns the kwarg value and whether it was present.
func (s *JobSubmission) Kwarg(name string) (string, bool) {
	v, ok := s.Kwargs[name]
	return v, ok
}

// Kind distinguishes the two job variants at runtime without a type
// assertion, mirroring the Kind-keyed dispatch tables prow/hook uses to
// route webhook events to plugin handlers.
type Kind string

const (
	BenchmarkKind  Kind = "BenchmarkJob"
	PackageEvalKind Kind = "PackageEvalJob"
)

// Job is the capability interface every job variant satisfies. It
// deliberately does not include Run: execution is dispatched through a
// Kind-keyed registry of runner functions (see pkg/dispatcher), the
// same pattern prow/hook uses to route webhook events to plugin
// handlers rather than calling a method on the event itself.
type Job interface {
	Kind() Kind
	Submission() *JobSubmission
	// Summarize renders the one-line summary used in status
	// descriptions, e.g. "JuliaLang/julia@abc1234".
	Summarize() string
}

// PackageStatus is the per-package outcome pkgeval records for one
// side of a comparison.
type PackageStatus string

const (
	StatusOK    PackageStatus = "ok"
	StatusSkip  PackageStatus = "skip"
	StatusFail  PackageStatus = "fail"
	StatusCrash PackageStatus = "crash"
	StatusKill  PackageStatus = "kill"
)

// Normalize maps the internal "kill" outcome onto "fail" for reporting,
// per spec.md section 4.6 step 6.
func (s PackageStatus) Normalize() PackageStatus {
	if s == StatusKill {
		return StatusFail
	}
	return s
}

// Mark is the per-benchmark comparison verdict.
type Mark string

const (
	MarkRegression  Mark = "regression"
	MarkImprovement Mark = "improvement"
	MarkInvariant   Mark = "invariant"
)

// Judgement is a single benchmark's comparison outcome.
type Judgement struct {
	Name      string
	Ratio     float64
	Mark      Mark
	Tolerance float64
}

// MarkRatio classifies a ratio against a tolerance, per spec.md section 4.5:
// ratio >= 1+tol -> regression, ratio <= 1-tol -> improvement, else
// invariant.
func MarkRatio(ratio, tolerance float64) Mark {
	switch {
	case ratio >= 1+tolerance:
		return MarkRegression
	case ratio <= 1-tolerance:
		return MarkImprovement
	default:
		return MarkInvariant
	}
}

// ResultBundle is the transient per-job result carried from a runner to
// the report publisher. It is never persisted.
type ResultBundle struct {
	Primary     BuildRef
	Against     *BuildRef
	Judged      []Judgement
	HasIssues   bool
	Duration    time.Duration
	ReportMD    string
	DataArchive []byte
	// Extra holds sidecar files written alongside report.md, keyed by a
	// path relative to the job's own report directory.
	Extra map[string]interface{}
	// RepoRootFiles holds files written relative to the report
	// repository's root instead of the job's own directory, used for
	// package-eval's "latest daily" pointer (spec.md section 4.6).
	RepoRootFiles map[string][]byte
}
