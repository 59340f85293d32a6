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

// Package events normalizes the four webhook payload shapes the hook
// server accepts into a single Event value, generalizing the
// union-of-event-types-to-one-shape pattern prow's GeneralizeComment
// uses for its own four comment-like event kinds.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nanosoldier/bot/pkg/github"
	"github.com/nanosoldier/bot/pkg/job"
)

// Kind identifies which of the four webhook payload shapes arrived,
// taken directly from the hosting service's event-type header.
type Kind string

const (
	CommitComment            Kind = "commit_comment"
	IssueComment             Kind = "issue_comment"
	PullRequest              Kind = "pull_request"
	PullRequestReviewComment Kind = "pull_request_review_comment"
)

// Ignored reports the webhook handler should reply 204 with no side
// effects: an action other than created/opened. A comment on a non-PR
// issue is a plain error, not Ignored.
type Ignored struct{ Reason string }

func (e *Ignored) Error() string { return e.Reason }

// Event is the common shape every payload kind normalizes to.
type Event struct {
	// TargetRepo is where the comment lives; status and comment
	// replies are posted here.
	TargetRepo string
	// Build is the code-under-test revision; Build.Repo may differ
	// from TargetRepo when the comment is on a PR opened from a fork.
	Build job.BuildRef
	// StatusSHA is pinned at intake; see job.JobSubmission.
	StatusSHA   string
	CommentBody string
	CommentURL  string
	FromKind    job.EventKind
	PRNumber    *int
}

// PRResolver is the slice of the hosting client the Event Adapter
// needs to turn an issue_comment on a PR into a pull_request-shaped
// event, and to fetch commit timestamps.
type PRResolver interface {
	PullRequest(ctx context.Context, repo string, number int) (*github.PullRequest, error)
	CommitTime(ctx context.Context, repo, sha string) (time.Time, error)
}

// Adapt normalizes one webhook delivery. It returns an *Ignored error
// (handler should reply 204) or a plain error (handler should reply
// 400) when the payload cannot produce an Event.
func Adapt(ctx context.Context, kind Kind, payload []byte, client PRResolver) (*Event, error) {
	switch kind {
	case CommitComment:
		return adaptCommitComment(ctx, payload, client)
	case PullRequestReviewComment:
		return adaptReviewComment(ctx, payload, client)
	case PullRequest:
		return adaptPullRequest(ctx, payload, client)
	case IssueComment:
		return adaptIssueComment(ctx, payload, client)
	default:
		return nil, fmt.Errorf("unrecognized event kind %q", kind)
	}
}

func checkAction(action string, allowed ...string) error {
	for _, a := range allowed {
		if action == a {
			return nil
		}
	}
	return &Ignored{Reason: fmt.Sprintf("action %q is not one of %v", action, allowed)}
}

func adaptCommitComment(ctx context.Context, payload []byte, client PRResolver) (*Event, error) {
	var e github.CommitCommentEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decoding commit_comment payload: %w", err)
	}
	if err := checkAction(e.Action, "created"); err != nil {
		return nil, err
	}

	repo := e.Repository.FullName
	t, err := client.CommitTime(ctx, repo, e.Comment.CommitID)
	if err != nil {
		return nil, fmt.Errorf("fetching commit time for %s@%s: %w", repo, e.Comment.CommitID, err)
	}

	return &Event{
		TargetRepo:  repo,
		Build:       job.BuildRef{Repo: repo, SHA: e.Comment.CommitID, CommitTime: t},
		StatusSHA:   e.Comment.CommitID,
		CommentBody: e.Comment.Body,
		CommentURL:  e.Comment.HTMLURL,
		FromKind:    job.FromCommit,
	}, nil
}

func adaptReviewComment(ctx context.Context, payload []byte, client PRResolver) (*Event, error) {
	var e github.PullRequestReviewCommentEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decoding pull_request_review_comment payload: %w", err)
	}
	if err := checkAction(e.Action, "created"); err != nil {
		return nil, err
	}

	buildRepo := e.PullRequest.Head.Repo.FullName
	sha := e.Comment.CommitID
	t, err := client.CommitTime(ctx, buildRepo, sha)
	if err != nil {
		return nil, fmt.Errorf("fetching commit time for %s@%s: %w", buildRepo, sha, err)
	}

	number := e.PullRequest.Number
	return &Event{
		TargetRepo:  e.Repository.FullName,
		Build:       job.BuildRef{Repo: buildRepo, SHA: sha, CommitTime: t},
		StatusSHA:   sha,
		CommentBody: e.Comment.Body,
		CommentURL:  e.Comment.HTMLURL,
		FromKind:    job.FromReview,
		PRNumber:    &number,
	}, nil
}

func adaptPullRequest(ctx context.Context, payload []byte, client PRResolver) (*Event, error) {
	var e github.PullRequestEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decoding pull_request payload: %w", err)
	}
	if err := checkAction(e.Action, "opened"); err != nil {
		return nil, err
	}

	buildRepo := e.PullRequest.Head.Repo.FullName
	sha := e.PullRequest.Head.SHA
	t, err := client.CommitTime(ctx, buildRepo, sha)
	if err != nil {
		return nil, fmt.Errorf("fetching commit time for %s@%s: %w", buildRepo, sha, err)
	}

	return &Event{
		TargetRepo: e.Repository.FullName,
		Build:      job.BuildRef{Repo: buildRepo, SHA: sha, CommitTime: t},
		StatusSHA:  sha,
		// A pull_request event carries no comment; the trigger regex
		// is matched against the PR's own description instead.
		CommentBody: e.PullRequest.Body,
		FromKind:    job.FromPR,
		PRNumber:    &e.Number,
	}, nil
}

func adaptIssueComment(ctx context.Context, payload []byte, client PRResolver) (*Event, error) {
	var e github.IssueCommentEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decoding issue_comment payload: %w", err)
	}
	if err := checkAction(e.Action, "created"); err != nil {
		return nil, err
	}
	if !e.Issue.IsPullRequest() {
		return nil, fmt.Errorf("issue_comment on issue #%d is not a pull request", e.Issue.Number)
	}

	repo := e.Repository.FullName
	pr, err := client.PullRequest(ctx, repo, e.Issue.Number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR #%d on %s: %w", e.Issue.Number, repo, err)
	}

	buildRepo := pr.Head.Repo.FullName
	t, err := client.CommitTime(ctx, buildRepo, pr.Head.SHA)
	if err != nil {
		return nil, fmt.Errorf("fetching commit time for %s@%s: %w", buildRepo, pr.Head.SHA, err)
	}

	number := e.Issue.Number
	return &Event{
		TargetRepo:  repo,
		Build:       job.BuildRef{Repo: buildRepo, SHA: pr.Head.SHA, CommitTime: t},
		StatusSHA:   pr.Head.SHA,
		CommentBody: e.Comment.Body,
		CommentURL:  e.Comment.HTMLURL,
		FromKind:    job.FromPR,
		PRNumber:    &number,
	}, nil
}
