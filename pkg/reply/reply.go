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

// Package reply is the Reply/Status Channel: it posts commit statuses
// and comments back to the hosting service, truncating long text and
// becoming a no-op under NANOSOLDIER_DRYRUN, per spec.md section 4.8.
package reply

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/github"
	"github.com/nanosoldier/bot/pkg/job"
)

const maxLen = 140

const statusContext = "nanosoldier"

// HostClient is the slice of the hosting client Channel needs.
type HostClient interface {
	CreateStatus(ctx context.Context, repo, sha string, status github.Status, context, description, targetURL string) error
	CreateComment(ctx context.Context, repo string, number int, body string) error
	CreateCommitComment(ctx context.Context, repo, sha, body string) error
}

// Channel implements dispatcher.Reporter.
type Channel struct {
	client HostClient
	logger *logrus.Entry
}

func New(client HostClient) *Channel {
	return &Channel{client: client, logger: logrus.WithField("component", "reply")}
}

func (c *Channel) Pending(sub *job.JobSubmission, message string) {
	c.setStatus(sub, github.StatusPending, message, "")
}

// Success posts a success status. The dispatcher is responsible for
// never calling this with a runner-reported failure message: that
// downgrade happens one layer up (spec.md section 7's DetectedIssues
// note), since by the time a status reaches here "success" already
// means the job itself did not error.
func (c *Channel) Success(sub *job.JobSubmission, message string) {
	c.setStatus(sub, github.StatusSuccess, message, "")
}

func (c *Channel) Error(sub *job.JobSubmission, message string) {
	c.setStatus(sub, github.StatusError, message, "")
}

func (c *Channel) Comment(sub *job.JobSubmission, body string) {
	if config.DryRun() {
		c.logger.WithField("dry_run", true).Info(truncate(body))
		return
	}
	ctx := context.Background()
	body = truncate(body)

	var err error
	if sub.PRNumber != nil {
		err = c.client.CreateComment(ctx, sub.Repo, *sub.PRNumber, body)
	} else {
		err = c.client.CreateCommitComment(ctx, sub.Repo, sub.StatusSHA, body)
	}
	if err != nil {
		c.logger.WithError(err).Warn("failed to post comment")
	}
}

func (c *Channel) setStatus(sub *job.JobSubmission, status github.Status, description, targetURL string) {
	description = truncate(description)
	if config.DryRun() {
		c.logger.WithFields(logrus.Fields{"dry_run": true, "status": status}).Info(description)
		return
	}
	if err := c.client.CreateStatus(context.Background(), sub.Repo, sub.StatusSHA, status, statusContext, description, targetURL); err != nil {
		c.logger.WithError(err).Warn("failed to post status")
	}
}

func truncate(s string) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
