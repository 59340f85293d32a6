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

	"github.com/nanosoldier/bot/pkg/joberror"
)

// dailyLookback bounds how far back on the tracked branch a daily
// job's statusSha may sit, per spec.md section 3: "among the most
// recent 50 commits on the tracked repository's default branch".
const dailyLookback = 50

// DailyClient is the narrow capability CheckDailyEligible needs;
// *github.Client satisfies it.
type DailyClient interface {
	RecentCommitSHAs(ctx context.Context, repo, branch string, n int) ([]string, error)
}

// CheckDailyEligible enforces spec.md section 3's daily-job admission
// invariant: a daily job is rejected unless it originates from a
// commit_comment event, carries exactly one keyword argument
// isdaily=true, and its statusSha is among the most recent commits on
// the tracked repository's default branch.
func CheckDailyEligible(ctx context.Context, client DailyClient, fromKind EventKind, statusSHA string, kwargs map[string]string, trackRepo, trackBranch string) error {
	if !IsDailyRequested(kwargs) {
		return nil
	}
	if fromKind != FromCommit {
		return joberror.Validationf("isdaily is only permitted on a commit_comment event")
	}
	if len(kwargs) != 1 {
		return joberror.Validationf("isdaily must be the only keyword argument")
	}

	shas, err := client.RecentCommitSHAs(ctx, trackRepo, trackBranch, dailyLookback)
	if err != nil {
		return joberror.Runf(err, "listing recent commits on %s/%s", trackRepo, trackBranch)
	}
	for _, sha := range shas {
		if sha == statusSHA {
			return nil
		}
	}
	return joberror.Validationf("statusSha %s is not among the most recent %d commits on %s", statusSHA, dailyLookback, trackBranch)
}

// IsDailyRequested reports whether kwargs carries isdaily=true.
func IsDailyRequested(kwargs map[string]string) bool {
	v, ok := kwargs["isdaily"]
	return ok && v == "true"
}
