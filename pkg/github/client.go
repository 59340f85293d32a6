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

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.github.com"

// Client is a small REST client over the hosting API. It retries
// transient failures, applies a token via oauth2, and rate-limits
// outbound calls client-side so a burst of webhook deliveries cannot
// exhaust the token's quota in one go.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *logrus.Entry
}

// NewClient builds a Client authenticated with a personal access
// token. limit is the steady-state request rate; 0 disables limiting.
func NewClient(token string, limit rate.Limit) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.Logger = nil

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	oauthClient := oauth2.NewClient(context.Background(), src)
	retry.HTTPClient.Transport = oauthClient.Transport

	var limiter *rate.Limiter
	if limit > 0 {
		limiter = rate.NewLimiter(limit, 1)
	}

	return &Client{
		baseURL: defaultBaseURL,
		http:    retry.StandardClient(),
		limiter: limiter,
		logger:  logrus.WithField("component", "github-client"),
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if err := c.wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// BranchHeadSHA satisfies job.RefClient.
func (c *Client) BranchHeadSHA(ctx context.Context, repo, branch string) (string, error) {
	var b Branch
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/branches/%s", repo, branch), nil, &b); err != nil {
		return "", err
	}
	return b.SHA, nil
}

// TagSHA satisfies job.RefClient.
func (c *Client) TagSHA(ctx context.Context, repo, tag string) (string, error) {
	var r Ref
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/git/ref/tags/%s", repo, tag), nil, &r); err != nil {
		return "", err
	}
	if r.Object.Type == "tag" {
		// Annotated tag: one more hop to the commit it points at.
		return c.tagObjectCommit(ctx, repo, r.Object.SHA)
	}
	return r.Object.SHA, nil
}

func (c *Client) tagObjectCommit(ctx context.Context, repo, tagSHA string) (string, error) {
	var r Ref
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/git/tags/%s", repo, tagSHA), nil, &r); err != nil {
		return "", err
	}
	return r.Object.SHA, nil
}

// CommitTime satisfies job.RefClient.
func (c *Client) CommitTime(ctx context.Context, repo, sha string) (time.Time, error) {
	var commit Commit
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/commits/%s", repo, sha), nil, &commit); err != nil {
		return time.Time{}, err
	}
	return commit.Commit.Committer.Date, nil
}

// PullRequest fetches a pull request by number.
func (c *Client) PullRequest(ctx context.Context, repo string, number int) (*PullRequest, error) {
	var pr PullRequest
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/pulls/%d", repo, number), nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// RecentCommitSHAs returns up to n commit SHAs on branch, most recent
// first, used to check whether a daily job's statusSha is within the
// admission window.
func (c *Client) RecentCommitSHAs(ctx context.Context, repo, branch string, n int) ([]string, error) {
	var commits []Commit
	path := fmt.Sprintf("/repos/%s/commits?sha=%s&per_page=%d", repo, branch, n)
	if err := c.do(ctx, http.MethodGet, path, nil, &commits); err != nil {
		return nil, err
	}
	shas := make([]string, len(commits))
	for i, cm := range commits {
		shas[i] = cm.SHA
	}
	return shas, nil
}

type statusRequest struct {
	State       Status `json:"state"`
	TargetURL   string `json:"target_url,omitempty"`
	Description string `json:"description,omitempty"`
	Context     string `json:"context"`
}

// CreateStatus posts a commit status.
func (c *Client) CreateStatus(ctx context.Context, repo, sha string, status Status, context, description, targetURL string) error {
	body := statusRequest{State: status, Description: description, Context: context, TargetURL: targetURL}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/statuses/%s", repo, sha), body, nil)
}

type commentRequest struct {
	Body string `json:"body"`
}

// CreateComment posts an issue/PR comment.
func (c *Client) CreateComment(ctx context.Context, repo string, number int, body string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/issues/%d/comments", repo, number), commentRequest{Body: body}, nil)
}

// CreateCommitComment posts a comment on a commit (used when a
// submission originated from a commit_comment event, not a PR).
func (c *Client) CreateCommitComment(ctx context.Context, repo, sha, body string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/commits/%s/comments", repo, sha), commentRequest{Body: body}, nil)
}
