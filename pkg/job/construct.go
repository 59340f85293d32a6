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

import (
	"context"
	"strconv"
	"strings"

	"github.com/nanosoldier/bot/pkg/joberror"
)

const (
	funcRunBenchmarks = "runbenchmarks"
	funcRunTests      = "runtests"
)

// FuncName reports the trigger-phrase function name a submission must
// carry for each job kind, so callers (the dispatcher's admission
// logic, the submission validator) don't hardcode the string twice.
func FuncName(k Kind) string {
	switch k {
	case BenchmarkKind:
		return funcRunBenchmarks
	case PackageEvalKind:
		return funcRunTests
	default:
		return ""
	}
}

// NewBenchmarkJob builds a BenchmarkJob from a parsed submission whose
// Func is "runbenchmarks". Args[0], if present, is the tag predicate;
// an empty predicate matches every benchmark. Recognized kwargs are
// "vs" (a vs-reference, resolved against trackRepo) and "skipbuild"
// ("true"/"false").
func NewBenchmarkJob(ctx context.Context, client RefClient, sub *JobSubmission, trackRepo string, isDaily bool) (*BenchmarkJob, error) {
	if sub.Func != funcRunBenchmarks {
		return nil, joberror.Validationf("runbenchmarks job submission has func %q", sub.Func)
	}

	j := &BenchmarkJob{sub: sub, IsDaily: isDaily}

	switch len(sub.Args) {
	case 0:
		j.TagPredicate = ""
	case 1:
		j.TagPredicate = sub.Args[0]
	default:
		return nil, joberror.Validationf("runbenchmarks takes at most one positional argument (a tag predicate), got %d", len(sub.Args))
	}

	if vs, ok := sub.Kwarg("vs"); ok {
		ref, err := ResolveVS(ctx, client, vs, sub.Build, trackRepo)
		if err != nil {
			return nil, err
		}
		j.Against = &ref
	}

	if skip, ok := sub.Kwarg("skipbuild"); ok {
		b, err := strconv.ParseBool(skip)
		if err != nil {
			return nil, joberror.Validationf("skipbuild must be true or false, got %q", skip)
		}
		j.SkipBuild = b
	}

	if j.Against != nil && j.sub.Build.SameRevision(*j.Against) {
		j.DemoteToSingleRun()
	}

	return j, nil
}

// NewPackageEvalJob builds a PackageEvalJob from a parsed submission
// whose Func is "runtests". No positional arg, or ALL, selects every
// registry package (EvalType TestJulia); a string literal or a vector
// of string literals selects those packages (EvalType TestPackage).
// Recognized kwargs are "vs",
// "configuration", "vs_configuration" (each a parenthesized tuple
// literal already split into key=value pairs by the caller) and
// "use_blacklist".
func NewPackageEvalJob(ctx context.Context, client RefClient, sub *JobSubmission, cfg, againstCfg Configuration, trackRepo string, isDaily bool) (*PackageEvalJob, error) {
	if sub.Func != funcRunTests {
		return nil, joberror.Validationf("runtests job submission has func %q", sub.Func)
	}

	j := &PackageEvalJob{
		sub:                  sub,
		IsDaily:              isDaily,
		Configuration:        cfg,
		AgainstConfiguration: againstCfg,
		UseBlocklist:         true,
	}

	for _, a := range sub.Args {
		a = strings.TrimSpace(a)
		if a == "ALL" {
			continue
		}
		for _, name := range strings.Split(strings.Trim(a, "[]"), ",") {
			name = strings.Trim(strings.TrimSpace(name), `"`)
			if name == "" {
				continue
			}
			j.PackageSelection = append(j.PackageSelection, name)
		}
	}
	if len(j.PackageSelection) == 0 {
		j.Type = TestJulia
	} else {
		j.Type = TestPackage
	}

	if vs, ok := sub.Kwarg("vs"); ok {
		ref, err := ResolveVS(ctx, client, vs, sub.Build, sub.Build.Repo)
		if err != nil {
			return nil, err
		}
		j.Against = &ref
	}

	if ub, ok := sub.Kwarg("use_blacklist"); ok {
		b, err := strconv.ParseBool(ub)
		if err != nil {
			return nil, joberror.Validationf("use_blacklist must be true or false, got %q", ub)
		}
		j.UseBlocklist = b
	}

	// Daily runs, comparisons against another repository, and
	// comparisons against a tag or a branch other than master never
	// consult the blocklist: spec.md section 4.6 step 3.
	if j.IsDaily {
		j.UseBlocklist = false
	}
	if j.Against != nil && j.Against.Repo != trackRepo {
		j.UseBlocklist = false
	}
	if vs, ok := sub.Kwarg("vs"); ok && j.Against != nil {
		m := refPattern.FindStringSubmatch(unquoteVS(vs))
		if m != nil && (m[2] == "#" || (m[2] == ":" && m[3] != "master")) {
			j.UseBlocklist = false
		}
	}

	if j.Identical() {
		j.DemoteToSingleRun()
	}

	return j, nil
}
