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

package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nanosoldier/bot/pkg/github"
	"github.com/nanosoldier/bot/pkg/job"
)

type fakeResolver struct {
	commitTime time.Time
	pr         *github.PullRequest
}

func (f *fakeResolver) PullRequest(_ context.Context, _ string, _ int) (*github.PullRequest, error) {
	if f.pr == nil {
		return nil, errors.New("no PR configured")
	}
	return f.pr, nil
}

func (f *fakeResolver) CommitTime(_ context.Context, _, _ string) (time.Time, error) {
	return f.commitTime, nil
}

func TestAdaptCommitComment(t *testing.T) {
	t.Parallel()

	payload, _ := json.Marshal(github.CommitCommentEvent{
		Action:     "created",
		Comment:    github.Comment{Body: "@nanosoldier `runbenchmarks(ALL)`", HTMLURL: "https://example/comment/1", CommitID: "abc123"},
		Repository: github.Repo{FullName: "JuliaLang/julia"},
	})

	ev, err := Adapt(context.Background(), CommitComment, payload, &fakeResolver{commitTime: time.Unix(0, 0)})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	if ev.FromKind != job.FromCommit {
		t.Errorf("FromKind = %v, want FromCommit", ev.FromKind)
	}
	if ev.StatusSHA != "abc123" || ev.Build.SHA != "abc123" {
		t.Errorf("StatusSHA/Build.SHA = %q/%q, want abc123", ev.StatusSHA, ev.Build.SHA)
	}
	if ev.PRNumber != nil {
		t.Errorf("PRNumber = %v, want nil", ev.PRNumber)
	}
}

func TestAdaptCommitCommentIgnoresNonCreatedAction(t *testing.T) {
	t.Parallel()

	payload, _ := json.Marshal(github.CommitCommentEvent{Action: "deleted"})
	_, err := Adapt(context.Background(), CommitComment, payload, &fakeResolver{})
	var ignored *Ignored
	if !errors.As(err, &ignored) {
		t.Fatalf("expected an *Ignored error, got %v", err)
	}
}

func TestAdaptPullRequestOnlyAcceptsOpened(t *testing.T) {
	t.Parallel()

	payload, _ := json.Marshal(github.PullRequestEvent{Action: "synchronize"})
	_, err := Adapt(context.Background(), PullRequest, payload, &fakeResolver{})
	var ignored *Ignored
	if !errors.As(err, &ignored) {
		t.Fatalf("expected an *Ignored error, got %v", err)
	}
}

func TestAdaptIssueCommentRejectsNonPRIssue(t *testing.T) {
	t.Parallel()

	payload, _ := json.Marshal(github.IssueCommentEvent{
		Action: "created",
		Issue:  github.Issue{Number: 7},
	})
	_, err := Adapt(context.Background(), IssueComment, payload, &fakeResolver{})
	if err == nil {
		t.Fatal("expected an error for a non-PR issue comment")
	}
	var ignored *Ignored
	if errors.As(err, &ignored) {
		t.Fatal("a non-PR issue comment is a 400, not a 204 Ignored")
	}
}

func TestAdaptIssueCommentOnPR(t *testing.T) {
	t.Parallel()

	payload, _ := json.Marshal(github.IssueCommentEvent{
		Action:     "created",
		Issue:      github.Issue{Number: 7, PullRequest: &struct{ URL string "json:\"url\"" }{URL: "x"}},
		Comment:    github.Comment{Body: "@nanosoldier `runtests(ALL)`"},
		Repository: github.Repo{FullName: "JuliaLang/julia"},
	})

	resolver := &fakeResolver{
		commitTime: time.Unix(0, 0),
		pr:         &github.PullRequest{Number: 7, Head: github.Branch{SHA: "def456", Repo: github.Repo{FullName: "contributor/julia"}}},
	}
	ev, err := Adapt(context.Background(), IssueComment, payload, resolver)
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	if ev.FromKind != job.FromPR {
		t.Errorf("FromKind = %v, want FromPR", ev.FromKind)
	}
	if ev.Build.Repo != "contributor/julia" || ev.Build.SHA != "def456" {
		t.Errorf("Build = %+v, want contributor/julia@def456", ev.Build)
	}
	if ev.PRNumber == nil || *ev.PRNumber != 7 {
		t.Errorf("PRNumber = %v, want 7", ev.PRNumber)
	}
}
