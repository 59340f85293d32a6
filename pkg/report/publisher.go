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
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/sirupsen/logrus"

	"github.com/nanosoldier/bot/pkg/blobstore"
	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/job"
	"github.com/nanosoldier/bot/pkg/joberror"
)

const (
	remoteName   = "origin"
	authorName   = "nanosoldier"
	authorEmail  = "nanosoldier@users.noreply.github.com"
)

// Publisher implements dispatcher.Publisher against a local clone of the
// report repository (see config.Config.ReportRepoDir). It serializes
// publications with a mutex: spec.md section 4.7's reset-cherry_pick-push
// loop assumes a single writer per clone at a time.
type Publisher struct {
	mu sync.Mutex

	repo   *git.Repository
	branch string
	auth   transport.AuthMethod
	html   blobstore.Store

	lastURL string

	logger *logrus.Entry
}

// New opens an already-provisioned local clone of the report repository.
// Provisioning the clone itself is operational glue, out of scope here.
func New(repoDir, branch, authToken string, html blobstore.Store) (*Publisher, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return nil, fmt.Errorf("opening report repository clone at %s: %w", repoDir, err)
	}
	if branch == "" {
		branch = "master"
	}
	var auth transport.AuthMethod
	if authToken != "" {
		auth = &githttp.BasicAuth{Username: "x-access-token", Password: authToken}
	}
	return &Publisher{
		repo:   repo,
		branch: branch,
		auth:   auth,
		html:   html,
		logger: logrus.WithField("component", "report"),
	}, nil
}

// Publish stages the job's report at its deterministic path and pushes
// it to the report repository, per spec.md section 4.7:
//
//  1. Detach HEAD, stage everything, commit, note the resulting commit.
//  2. Check out the tracked branch and hard-reset to its remote tip.
//  3. Re-apply the same additive files onto the new tip and commit again
//     ("ours"-equivalent cherry-pick of an add-only commit; go-git/v5 has
//     no cherry-pick plumbing, but re-staging an add-only change is the
//     same result).
//  4. Push. If the push is rejected because someone else published in
//     the interim, the caller's next scheduled publication retries from
//     step 2; this call surfaces the last-known URL instead of blocking.
func (p *Publisher) Publish(ctx context.Context, j job.Job, bundle *job.ResultBundle) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dir := Path(j, bundle, time.Now())
	files := map[string][]byte{
		filepath.Join(dir, "report.md"): []byte(bundle.ReportMD),
	}
	if len(bundle.DataArchive) > 0 {
		files[filepath.Join(dir, "data.tar.zst")] = bundle.DataArchive
	}
	// PackageEval daily jobs stash db.json in Extra (their by_date/latest
	// pointer goes in RepoRootFiles); every other Extra entry is a sidecar
	// file (per package log paths, etc.) named relative to the job's own
	// directory.
	for name, v := range bundle.Extra {
		switch data := v.(type) {
		case []byte:
			files[filepath.Join(dir, name)] = data
		case string:
			files[filepath.Join(dir, name)] = []byte(data)
		}
	}
	for name, data := range bundle.RepoRootFiles {
		files[name] = data
	}

	if config.DryRun() {
		return p.writeDryRun(dir, files)
	}

	msg := fmt.Sprintf("%s: %s", j.Kind(), j.Summarize())

	if err := p.detachAndCommit(msg, files); err != nil {
		return p.lastURL, joberror.Publishf(err, "staging report commit failed")
	}
	if err := p.resetToRemoteTip(ctx); err != nil {
		return p.lastURL, joberror.Publishf(err, "resetting to the report repository's remote tip failed")
	}
	if _, err := p.commitFiles(files, msg); err != nil {
		return p.lastURL, joberror.Publishf(err, "re-staging report commit onto the reset tip failed")
	}
	if err := p.push(ctx); err != nil {
		return p.lastURL, joberror.Publishf(err, "push rejected, will retry on the next publication")
	}

	url := p.repoURL(dir)
	p.lastURL = url

	if p.html != nil {
		if htmlURL, err := p.uploadHTML(ctx, dir, bundle.ReportMD); err != nil {
			p.logger.WithError(err).Warn("html upload failed, falling back to the repository link")
		} else {
			url = htmlURL
			p.lastURL = htmlURL
		}
	}

	return url, nil
}

func (p *Publisher) detachAndCommit(msg string, files map[string][]byte) error {
	wt, err := p.repo.Worktree()
	if err != nil {
		return err
	}
	head, err := p.repo.Head()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}); err != nil {
		return fmt.Errorf("detaching HEAD: %w", err)
	}
	_, err = p.commitFiles(files, msg)
	return err
}

func (p *Publisher) commitFiles(files map[string][]byte, msg string) (plumbing.Hash, error) {
	wt, err := p.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	root := wt.Filesystem.Root()
	for rel, data := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return plumbing.ZeroHash, err
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err := wt.Add(rel); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	sig := &object.Signature{Name: authorName, Email: authorEmail, When: time.Now()}
	return wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
}

func (p *Publisher) resetToRemoteTip(ctx context.Context) error {
	err := p.repo.FetchContext(ctx, &git.FetchOptions{RemoteName: remoteName, Auth: p.auth})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("fetching %s: %w", remoteName, err)
	}
	remoteRef, err := p.repo.Reference(plumbing.NewRemoteReferenceName(remoteName, p.branch), true)
	if err != nil {
		return fmt.Errorf("resolving %s/%s: %w", remoteName, p.branch, err)
	}
	wt, err := p.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(p.branch), Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", p.branch, err)
	}
	return wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset})
}

func (p *Publisher) push(ctx context.Context) error {
	err := p.repo.PushContext(ctx, &git.PushOptions{RemoteName: remoteName, Auth: p.auth})
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	return err
}

func (p *Publisher) repoURL(dir string) string {
	return fmt.Sprintf("report://%s/%s", p.branch, dir)
}

func (p *Publisher) uploadHTML(ctx context.Context, dir, md string) (string, error) {
	html := renderHTML(md)
	key := filepath.Join(dir, "report.html")
	return p.html.Put(ctx, key, []byte(html), "text/html; charset=utf-8", true)
}

// writeDryRun redirects publication to a predictable local path under
// NANOSOLDIER_DRYRUN instead of touching the clone or the remote.
func (p *Publisher) writeDryRun(dir string, files map[string][]byte) (string, error) {
	root := filepath.Join(os.TempDir(), "nanosoldier-dryrun", dir)
	for rel, data := range files {
		full := filepath.Join(root, filepath.Base(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return p.lastURL, joberror.Publishf(err, "dry-run write failed")
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			return p.lastURL, joberror.Publishf(err, "dry-run write failed")
		}
	}
	url := "file://" + root
	p.lastURL = url
	return url, nil
}
