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

package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/nanosoldier/bot/pkg/job"
)

// newLocalReportRepo lays out a bare "remote" repo and a clone of it,
// mirroring the provisioning a real deployment does ahead of time.
func newLocalReportRepo(t *testing.T) (cloneDir string) {
	t.Helper()

	remoteDir := t.TempDir()
	if _, err := git.PlainInit(remoteDir, true); err != nil {
		t.Fatalf("PlainInit remote: %v", err)
	}

	seedDir := t.TempDir()
	seed, err := git.PlainInit(seedDir, false)
	if err != nil {
		t.Fatalf("PlainInit seed: %v", err)
	}
	wt, err := seed.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(seedDir, "README.md"), []byte("seed\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("add seed file: %v", err)
	}
	sig := &object.Signature{Name: "seed", Email: "seed@example.com", When: time.Now()}
	if _, err = wt.Commit("seed", &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("commit seed: %v", err)
	}
	if _, err := seed.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}}); err != nil {
		t.Fatalf("CreateRemote: %v", err)
	}
	if err := seed.Push(&git.PushOptions{RemoteName: "origin"}); err != nil {
		t.Fatalf("seed push: %v", err)
	}

	cloneDir = t.TempDir()
	if _, err := git.PlainClone(cloneDir, false, &git.CloneOptions{URL: remoteDir}); err != nil {
		t.Fatalf("PlainClone: %v", err)
	}
	return cloneDir
}

func TestPublisherPublishesReportAndPushes(t *testing.T) {
	cloneDir := newLocalReportRepo(t)

	p, err := New(cloneDir, "master", "", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	j, err := job.NewBenchmarkJob(nil, nil, &job.JobSubmission{
		Func:  "runbenchmarks",
		Build: job.BuildRef{Repo: "JuliaLang/julia", SHA: "abcdef1234567890"},
	}, "JuliaLang/julia", false)
	if err != nil {
		t.Fatalf("NewBenchmarkJob: %v", err)
	}
	bundle := &job.ResultBundle{
		Primary:  job.BuildRef{SHA: "abcdef1234567890"},
		ReportMD: "# report\n",
	}

	url, err := p.Publish(context.Background(), j, bundle)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if url == "" {
		t.Error("Publish returned an empty URL")
	}

	path := Path(j, bundle, time.Now())
	if _, err := os.Stat(filepath.Join(cloneDir, path, "report.md")); err != nil {
		t.Errorf("expected report.md staged at %s: %v", path, err)
	}
}
