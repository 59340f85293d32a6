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

package reply

import (
	"context"
	"strings"
	"testing"

	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/github"
	"github.com/nanosoldier/bot/pkg/job"
)

type fakeClient struct {
	statuses []string
	comments []string
}

func (f *fakeClient) CreateStatus(_ context.Context, _, _ string, status github.Status, _, description, _ string) error {
	f.statuses = append(f.statuses, string(status)+":"+description)
	return nil
}
func (f *fakeClient) CreateComment(_ context.Context, _ string, _ int, body string) error {
	f.comments = append(f.comments, body)
	return nil
}
func (f *fakeClient) CreateCommitComment(_ context.Context, _, _, body string) error {
	f.comments = append(f.comments, body)
	return nil
}

func TestSetStatusTruncatesLongDescriptions(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	ch := New(client)
	sub := &job.JobSubmission{Repo: "JuliaLang/julia", StatusSHA: "abc"}

	ch.Success(sub, strings.Repeat("x", 200))
	if len(client.statuses) != 1 {
		t.Fatalf("statuses = %v, want exactly one", client.statuses)
	}
	desc := strings.TrimPrefix(client.statuses[0], "success:")
	if len(desc) != maxLen {
		t.Errorf("description length = %d, want %d", len(desc), maxLen)
	}
}

func TestCommentPicksPROrCommitTarget(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	ch := New(client)
	n := 42
	ch.Comment(&job.JobSubmission{Repo: "r", PRNumber: &n}, "hi")
	if len(client.comments) != 1 {
		t.Fatalf("comments = %v, want one", client.comments)
	}
}

func TestDryRunSkipsOutboundCalls(t *testing.T) {
	t.Setenv(config.DryRunEnv, "1")

	client := &fakeClient{}
	ch := New(client)
	ch.Success(&job.JobSubmission{Repo: "r", StatusSHA: "s"}, "done")
	ch.Comment(&job.JobSubmission{Repo: "r", StatusSHA: "s"}, "hi")

	if len(client.statuses) != 0 || len(client.comments) != 0 {
		t.Errorf("dry run should not call the host client, got statuses=%v comments=%v", client.statuses, client.comments)
	}
}
