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

// Package pkgeval is the PackageEval Job Runner: it evaluates a package
// selection under a primary configuration, optionally against a second
// configuration/build, with bounded parallelism, per spec.md section
// 4.6.
package pkgeval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"

	"github.com/nanosoldier/bot/pkg/archive"
	"github.com/nanosoldier/bot/pkg/blobstore"
	"github.com/nanosoldier/bot/pkg/dispatcher"
	"github.com/nanosoldier/bot/pkg/extcmd"
	"github.com/nanosoldier/bot/pkg/job"
	"github.com/nanosoldier/bot/pkg/joberror"
)

const defaultCPUs = 4

// Config wires the opaque external commands and resources this runner
// delegates to.
type Config struct {
	WorkDir string

	// ListPackagesCommand lists every package in the registry, writing
	// a JSON []string to %outfile%.
	ListPackagesCommand []string
	// EvaluateCommand runs one package's tests under one side's
	// configuration, writing a JSON PackageResult to %outfile%.
	// %juliabinary%, %package%, %registry%, %buildflags%, %rr%,
	// %compiled% and %outfile% are substituted.
	EvaluateCommand []string

	// BlocklistPath, if set, is a local file holding a JSON []string of
	// packages to skip unless the job disables it.
	BlocklistPath string
}

// PackageResult is one package's outcome on one side of a comparison.
type PackageResult struct {
	Name     string            `json:"name"`
	Status   job.PackageStatus `json:"status"`
	Reason   string            `json:"reason,omitempty"`
	Duration time.Duration     `json:"duration"`
	Version  string            `json:"version,omitempty"`
	Log      string            `json:"-"`
}

// Runner executes PackageEvalJobs.
type Runner struct {
	cfg      Config
	exec     extcmd.Executor
	logStore blobstore.Store
	anchor   *DailyAnchor
	logger   *logrus.Entry
}

func New(cfg Config, exec extcmd.Executor, logStore blobstore.Store, anchor *DailyAnchor) *Runner {
	return &Runner{cfg: cfg, exec: exec, logStore: logStore, anchor: anchor, logger: logrus.WithField("component", "pkgeval")}
}

// Run implements dispatcher.RunFunc for job.PackageEvalKind.
func (r *Runner) Run(ctx context.Context, j job.Job) (*job.ResultBundle, error) {
	pj, ok := j.(*job.PackageEvalJob)
	if !ok {
		return nil, joberror.Runf(nil, "pkgeval runner invoked with a non-PackageEvalJob")
	}
	start := time.Now()
	sub := pj.Submission()

	if pj.IsDaily && pj.Against == nil && r.anchor != nil {
		if prev, ok := r.anchor.Previous(); ok {
			pj.Against = &prev
		}
	}

	packages, err := r.packageSelection(ctx, pj)
	if err != nil {
		return nil, joberror.Runf(err, "determining package selection failed")
	}
	if pj.UseBlocklist {
		packages, err = r.applyBlocklist(packages)
		if err != nil {
			return nil, joberror.Runf(err, "applying blocklist failed")
		}
	}

	cpus := defaultCPUs
	if n, ok := dispatcher.NodeCPUs(ctx); ok {
		cpus = n
	}

	primary := r.evaluateSide(ctx, sub.Build, pj.Configuration, packages, cpus)

	bundle := &job.ResultBundle{Primary: sub.Build}
	entries := []archive.Entry{{Name: "primary.json", Data: mustMarshal(primary)}}

	if pj.Against != nil {
		against := r.evaluateSide(ctx, *pj.Against, pj.AgainstConfiguration, packages, cpus)
		bundle.Against = pj.Against
		bundle.HasIssues = hasFailures(primary) && !hasFailures(against)
		entries = append(entries, archive.Entry{Name: "against.json", Data: mustMarshal(against)})
	}

	bundle.Duration = time.Since(start)
	bundle.ReportMD = renderReport(pj, bundle, primary)

	data, err := archive.Write(entries)
	if err != nil {
		return nil, joberror.Runf(err, "archiving results failed")
	}
	bundle.DataArchive = data

	if pj.IsDaily && r.anchor != nil {
		r.anchor.Annotate(bundle, sub.Build, primary, start)
	}

	return bundle, nil
}

func (r *Runner) packageSelection(ctx context.Context, pj *job.PackageEvalJob) ([]string, error) {
	if len(pj.PackageSelection) > 0 {
		return pj.PackageSelection, nil
	}
	if len(r.cfg.ListPackagesCommand) == 0 {
		return nil, fmt.Errorf("no package selection given and no list-packages command configured")
	}
	outFile := filepath.Join(r.cfg.WorkDir, "packages.json")
	args := substitute(r.cfg.ListPackagesCommand, map[string]string{"%outfile%": outFile})
	if _, err := r.exec.Run(ctx, r.cfg.WorkDir, args[0], args[1:]...); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(outFile)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *Runner) applyBlocklist(packages []string) ([]string, error) {
	if r.cfg.BlocklistPath == "" {
		return packages, nil
	}
	raw, err := os.ReadFile(r.cfg.BlocklistPath)
	if os.IsNotExist(err) {
		return packages, nil
	}
	if err != nil {
		return nil, err
	}
	var blocked []string
	if err := json.Unmarshal(raw, &blocked); err != nil {
		return nil, err
	}
	blockedSet := make(map[string]bool, len(blocked))
	for _, b := range blocked {
		blockedSet[b] = true
	}
	var out []string
	for _, p := range packages {
		if !blockedSet[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

// evaluateSide runs every package's test concurrently, bounded by
// cpus, per spec.md section 4.6 step 5.
func (r *Runner) evaluateSide(ctx context.Context, ref job.BuildRef, cfg job.Configuration, packages []string, cpus int) []PackageResult {
	wp := workerpool.New(cpus)
	var mu sync.Mutex
	results := make([]PackageResult, 0, len(packages))

	for _, pkg := range packages {
		pkg := pkg
		wp.Submit(func() {
			res := r.evaluateOne(ctx, ref, cfg, pkg)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
	}
	wp.StopWait()
	return results
}

func (r *Runner) evaluateOne(ctx context.Context, ref job.BuildRef, cfg job.Configuration, pkg string) PackageResult {
	start := time.Now()
	outFile := filepath.Join(r.cfg.WorkDir, "results", ref.SHA, pkg+".json")
	if err := os.MkdirAll(filepath.Dir(outFile), 0o750); err != nil {
		return PackageResult{Name: pkg, Status: job.StatusFail, Reason: "setup failed", Duration: time.Since(start)}
	}

	args := substitute(r.cfg.EvaluateCommand, map[string]string{
		"%juliabinary%": cfg.JuliaBinary,
		"%package%":     pkg,
		"%registry%":    cfg.Registry,
		"%buildflags%":  strings.Join(cfg.BuildFlags, " "),
		"%rr%":          fmt.Sprint(cfg.RR),
		"%compiled%":    fmt.Sprint(cfg.Compiled),
		"%outfile%":     outFile,
	})
	if len(args) == 0 {
		return PackageResult{Name: pkg, Status: job.StatusFail, Reason: "no evaluate command configured", Duration: time.Since(start)}
	}

	out, err := r.exec.Run(ctx, r.cfg.WorkDir, args[0], args[1:]...)
	res := PackageResult{Name: pkg, Duration: time.Since(start), Log: string(out)}

	if err != nil {
		res.Status = job.StatusCrash
		res.Reason = err.Error()
	} else if raw, readErr := os.ReadFile(outFile); readErr == nil {
		_ = json.Unmarshal(raw, &res)
		res.Name = pkg
	} else {
		res.Status = job.StatusFail
		res.Reason = "result file missing"
	}
	res.Status = res.Status.Normalize()

	if r.logStore != nil && res.Log != "" {
		key := fmt.Sprintf("pkgeval/%s/%s/%s.log", ref.SHA, pkg, "run")
		if url, err := r.logStore.Put(ctx, key, []byte(res.Log), "text/plain; charset=utf-8", true); err == nil {
			res.Log = url
		}
	}

	return res
}

func hasFailures(results []PackageResult) bool {
	for _, r := range results {
		switch r.Status {
		case job.StatusFail, job.StatusCrash:
			return true
		}
	}
	return false
}

func substitute(tmpl []string, vars map[string]string) []string {
	if len(tmpl) == 0 {
		return nil
	}
	out := make([]string, len(tmpl))
	for i, part := range tmpl {
		for k, v := range vars {
			part = strings.ReplaceAll(part, k, v)
		}
		out[i] = part
	}
	return out
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
