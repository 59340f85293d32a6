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
	"testing"
)

type fakeDailyClient struct {
	shas []string
	err  error
}

func (f *fakeDailyClient) RecentCommitSHAs(ctx context.Context, repo, branch string, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.shas) {
		return f.shas[:n], nil
	}
	return f.shas, nil
}

func TestIsDailyRequested(t *testing.T) {
	t.Parallel()

	if IsDailyRequested(nil) {
		t.Fatal("nil kwargs unexpectedly reported daily")
	}
	if IsDailyRequested(map[string]string{"isdaily": "false"}) {
		t.Fatal("isdaily=false unexpectedly reported daily")
	}
	if !IsDailyRequested(map[string]string{"isdaily": "true"}) {
		t.Fatal("isdaily=true should report daily")
	}
}

func TestCheckDailyEligibleNotDaily(t *testing.T) {
	t.Parallel()

	client := &fakeDailyClient{}
	err := CheckDailyEligible(context.Background(), client, FromReview, "deadbeef", nil, "o/r", "master")
	if err != nil {
		t.Fatalf("a non-daily submission should never be rejected on daily grounds: %v", err)
	}
}

func TestCheckDailyEligibleRejectsNonCommitEvent(t *testing.T) {
	t.Parallel()

	client := &fakeDailyClient{shas: []string{"deadbeef"}}
	kwargs := map[string]string{"isdaily": "true"}
	err := CheckDailyEligible(context.Background(), client, FromReview, "deadbeef", kwargs, "o/r", "master")
	if err == nil {
		t.Fatal("expected rejection of a daily request from a non commit_comment event")
	}
}

func TestCheckDailyEligibleRejectsExtraKwargs(t *testing.T) {
	t.Parallel()

	client := &fakeDailyClient{shas: []string{"deadbeef"}}
	kwargs := map[string]string{"isdaily": "true", "vs": ":master"}
	err := CheckDailyEligible(context.Background(), client, FromCommit, "deadbeef", kwargs, "o/r", "master")
	if err == nil {
		t.Fatal("expected rejection of a daily request carrying a second keyword argument")
	}
}

func TestCheckDailyEligibleRejectsShaNotInWindow(t *testing.T) {
	t.Parallel()

	client := &fakeDailyClient{shas: []string{"aaa", "bbb", "ccc"}}
	kwargs := map[string]string{"isdaily": "true"}
	err := CheckDailyEligible(context.Background(), client, FromCommit, "deadbeef", kwargs, "o/r", "master")
	if err == nil {
		t.Fatal("expected rejection of a statusSha outside the lookback window")
	}
}

func TestCheckDailyEligibleAccepts(t *testing.T) {
	t.Parallel()

	client := &fakeDailyClient{shas: []string{"aaa", "bbb", "ccc"}}
	kwargs := map[string]string{"isdaily": "true"}
	err := CheckDailyEligible(context.Background(), client, FromCommit, "bbb", kwargs, "o/r", "master")
	if err != nil {
		t.Fatalf("CheckDailyEligible: %v", err)
	}
}

func TestCheckDailyEligiblePropagatesListError(t *testing.T) {
	t.Parallel()

	client := &fakeDailyClient{err: errBoom}
	kwargs := map[string]string{"isdaily": "true"}
	err := CheckDailyEligible(context.Background(), client, FromCommit, "bbb", kwargs, "o/r", "master")
	if err == nil {
		t.Fatal("expected the underlying list error to propagate")
	}
}

var errBoom = boomError{}

type boomError struct{}

func (boomError) Error() string { return "boom" }
