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

// Package github is the hosting-service transport layer: webhook
// payload shapes and a REST client for the calls the rest of the bot
// needs (commit/ref/tag lookup, PR lookup, status and comment
// posting). It knows nothing about jobs, submissions, or reports.
package github

import "time"

// Repo identifies a repository as "owner/name" plus its full name
// form, matching the subset of the hosting API's repository object
// the rest of the bot consumes.
type Repo struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Owner    User   `json:"owner"`
}

type User struct {
	Login string `json:"login"`
}

// Comment is the body of a commit comment, issue comment, or PR
// review comment payload.
type Comment struct {
	Body     string `json:"body"`
	HTMLURL  string `json:"html_url"`
	CommitID string `json:"commit_id"`
	User     User   `json:"user"`
}

// PullRequest is the subset of a pull-request object the Event Adapter
// and Reference Resolver need.
type PullRequest struct {
	Number int    `json:"number"`
	State  string `json:"state"`
	Body   string `json:"body"`
	Head   Branch `json:"head"`
	Base   Branch `json:"base"`
}

type Branch struct {
	SHA  string `json:"sha"`
	Ref  string `json:"ref"`
	Repo Repo   `json:"repo"`
}

// Issue is the subset of an issue object needed to tell a PR-backed
// issue comment apart from a plain issue comment.
type Issue struct {
	Number      int    `json:"number"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

func (i Issue) IsPullRequest() bool { return i.PullRequest != nil }

// CommitCommentEvent is the commit_comment webhook payload.
type CommitCommentEvent struct {
	Action     string  `json:"action"`
	Comment    Comment `json:"comment"`
	Repository Repo    `json:"repository"`
}

// IssueCommentEvent is the issue_comment webhook payload.
type IssueCommentEvent struct {
	Action     string  `json:"action"`
	Issue      Issue   `json:"issue"`
	Comment    Comment `json:"comment"`
	Repository Repo    `json:"repository"`
}

// PullRequestEvent is the pull_request webhook payload.
type PullRequestEvent struct {
	Action      string      `json:"action"`
	Number      int         `json:"number"`
	PullRequest PullRequest `json:"pull_request"`
	Repository  Repo        `json:"repository"`
}

// PullRequestReviewCommentEvent is the pull_request_review_comment
// webhook payload.
type PullRequestReviewCommentEvent struct {
	Action      string      `json:"action"`
	Comment     Comment     `json:"comment"`
	PullRequest PullRequest `json:"pull_request"`
	Repository  Repo        `json:"repository"`
}

// Commit is the subset of a commit object the Reference Resolver and
// Event Adapter need: its author/committer timestamp.
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// Ref is a git ref lookup result, used to resolve a tag object to the
// commit SHA it points at.
type Ref struct {
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}

// StatusContext names a commit-status kind.
type StatusContext string

// Status kinds map directly onto the hosting API's commit-status
// states.
const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusFailure Status = "failure"
)

type Status string
