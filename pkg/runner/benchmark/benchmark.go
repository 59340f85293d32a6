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

// Package benchmark is the Benchmark Job Runner: it acquires one or two
// build artifacts, runs the external benchmark suite against each,
// computes a ratio judgement between them, and emits a report plus a
// compressed data archive, per spec.md section 4.5.
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nanosoldier/bot/pkg/archive"
	"github.com/nanosoldier/bot/pkg/extcmd"
	"github.com/nanosoldier/bot/pkg/job"
	"github.com/nanosoldier/bot/pkg/joberror"
)

// defaultTolerance is used when the suite does not report a
// per-benchmark tolerance of its own.
const defaultTolerance = 0.05

// Config wires the external, opaque commands this runner delegates to.
// Each command list is a template: %repo%, %sha%, %installdir%,
// %tagpredicate% and %outfile% are substituted before execution.
type Config struct {
	WorkDir string

	// BuildCommand builds a revision into an install directory.
	BuildCommand []string
	// LocalInstallDir is used verbatim when a job requests SkipBuild.
	LocalInstallDir string
	// VersionInfoCommand captures the interpreter's version banner.
	VersionInfoCommand []string
	// SuiteCommand runs the benchmark suite, writing JSON results (a
	// []Stat) to %outfile%.
	SuiteCommand []string
}

// Stat is one benchmark's aggregate result, as emitted by the external
// suite.
type Stat struct {
	Name      string  `json:"name"`
	Min       float64 `json:"min"`
	Median    float64 `json:"median"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Tolerance float64 `json:"tolerance,omitempty"`
}

// Runner executes BenchmarkJobs.
type Runner struct {
	cfg    Config
	exec   extcmd.Executor
	daily  *DailyLookup
	logger *logrus.Entry
}

func New(cfg Config, exec extcmd.Executor, daily *DailyLookup) *Runner {
	return &Runner{cfg: cfg, exec: exec, daily: daily, logger: logrus.WithField("component", "benchmark")}
}

// Run implements dispatcher.RunFunc for job.BenchmarkKind.
func (r *Runner) Run(ctx context.Context, j job.Job) (*job.ResultBundle, error) {
	bj, ok := j.(*job.BenchmarkJob)
	if !ok {
		return nil, joberror.Runf(nil, "benchmark runner invoked with a non-BenchmarkJob")
	}
	start := time.Now()
	sub := bj.Submission()
	r.logger.WithFields(logrus.Fields{"repo": sub.Build.Repo, "sha": sub.Build.SHA}).Info("starting benchmark job")

	var (
		primary      []Stat
		primaryVInfo string
		againstStats []Stat
		againstVInfo string
	)

	// The primary and comparison sides are independent builds and suite
	// runs; running them under an errgroup instead of sequentially
	// keeps the second side from waiting out the first side's build.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, primaryVInfo, err = r.runSide(gctx, sub.Build, bj.SkipBuild, bj.TagPredicate)
		return err
	})
	if bj.Against != nil {
		g.Go(func() error {
			var err error
			againstStats, againstVInfo, err = r.runSide(gctx, *bj.Against, false, bj.TagPredicate)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, joberror.Runf(err, "benchmark side failed")
	}

	bundle := &job.ResultBundle{Primary: sub.Build}
	bundle.Primary.VInfo = primaryVInfo

	entries := []archive.Entry{
		{Name: "primary.json", Data: mustMarshal(primary)},
	}

	switch {
	case bj.Against != nil:
		against := *bj.Against
		against.VInfo = againstVInfo
		bundle.Against = &against
		bundle.Judged = judge(primary, againstStats)
		bundle.HasIssues = hasRegression(bundle.Judged)
		entries = append(entries, archive.Entry{Name: "against.json", Data: mustMarshal(againstStats)})

	case bj.IsDaily && r.daily != nil:
		// The daily baseline is not rebuilt and rerun; the previous
		// daily run's recorded stats are reused directly, per
		// spec.md section 4.5's "Daily path".
		if prevRef, prevStats, ok := r.daily.Baseline(bj.Kind(), time.Now()); ok {
			bundle.Against = &prevRef
			bundle.Judged = judge(primary, prevStats)
			bundle.HasIssues = hasRegression(bundle.Judged)
			entries = append(entries, archive.Entry{Name: "against.json", Data: mustMarshal(prevStats)})
		}
	}

	bundle.Duration = time.Since(start)
	bundle.ReportMD = renderReport(bj, bundle)

	data, err := archive.Write(entries)
	if err != nil {
		return nil, joberror.Runf(err, "archiving results failed")
	}
	bundle.DataArchive = data

	return bundle, nil
}

// runSide acquires an artifact and runs the suite against it, returning
// its aggregate stats and captured version banner.
func (r *Runner) runSide(ctx context.Context, ref job.BuildRef, skipBuild bool, tagPredicate string) ([]Stat, string, error) {
	installDir, err := r.acquireArtifact(ctx, ref, skipBuild)
	if err != nil {
		return nil, "", fmt.Errorf("acquiring artifact for %s@%s: %w", ref.Repo, ref.SHA, err)
	}

	vinfo, err := r.captureVInfo(ctx, installDir)
	if err != nil {
		return nil, "", fmt.Errorf("capturing version info: %w", err)
	}

	stats, err := r.runSuite(ctx, installDir, ref.SHA, tagPredicate)
	if err != nil {
		return nil, "", fmt.Errorf("running benchmark suite: %w", err)
	}
	return stats, vinfo, nil
}

func (r *Runner) acquireArtifact(ctx context.Context, ref job.BuildRef, skipBuild bool) (string, error) {
	if skipBuild {
		return r.cfg.LocalInstallDir, nil
	}
	installDir := filepath.Join(r.cfg.WorkDir, "install", ref.SHA)
	if err := os.MkdirAll(installDir, 0o750); err != nil {
		return "", err
	}
	args := substitute(r.cfg.BuildCommand, map[string]string{
		"%repo%":       ref.Repo,
		"%sha%":        ref.SHA,
		"%installdir%": installDir,
	})
	if len(args) == 0 {
		return "", fmt.Errorf("no build command configured")
	}
	if _, err := r.exec.Run(ctx, r.cfg.WorkDir, args[0], args[1:]...); err != nil {
		return "", err
	}
	return installDir, nil
}

// versionInfoMarker truncates the captured banner before a platform's
// "Environment" section, which may otherwise echo process environment
// variables (and any secret among them).
const versionInfoMarker = "Environment"

func (r *Runner) captureVInfo(ctx context.Context, installDir string) (string, error) {
	args := substitute(r.cfg.VersionInfoCommand, map[string]string{"%installdir%": installDir})
	if len(args) == 0 {
		return "", nil
	}
	out, err := r.exec.Run(ctx, installDir, args[0], args[1:]...)
	if err != nil {
		return "", err
	}
	if idx := strings.Index(string(out), versionInfoMarker); idx >= 0 {
		return string(out[:idx]), nil
	}
	return string(out), nil
}

func (r *Runner) runSuite(ctx context.Context, installDir, sha, tagPredicate string) ([]Stat, error) {
	outFile := filepath.Join(r.cfg.WorkDir, "results", sha+".json")
	if err := os.MkdirAll(filepath.Dir(outFile), 0o750); err != nil {
		return nil, err
	}
	args := substitute(r.cfg.SuiteCommand, map[string]string{
		"%installdir%":   installDir,
		"%tagpredicate%": tagPredicate,
		"%outfile%":      outFile,
	})
	if len(args) == 0 {
		return nil, fmt.Errorf("no suite command configured")
	}
	if _, err := r.exec.Run(ctx, r.cfg.WorkDir, args[0], args[1:]...); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("reading suite output: %w", err)
	}
	var stats []Stat
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("parsing suite output: %w", err)
	}
	return stats, nil
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

// judge compares matching benchmarks by name, classifying each ratio
// against its tolerance, per spec.md section 4.5.
func judge(primary, against []Stat) []job.Judgement {
	byName := make(map[string]Stat, len(against))
	for _, s := range against {
		byName[s.Name] = s
	}
	var out []job.Judgement
	for _, p := range primary {
		a, ok := byName[p.Name]
		if !ok || a.Median == 0 {
			continue
		}
		tol := p.Tolerance
		if tol == 0 {
			tol = defaultTolerance
		}
		ratio := p.Median / a.Median
		out = append(out, job.Judgement{
			Name:      p.Name,
			Ratio:     ratio,
			Mark:      job.MarkRatio(ratio, tol),
			Tolerance: tol,
		})
	}
	return out
}

func hasRegression(judged []job.Judgement) bool {
	for _, j := range judged {
		if j.Mark == job.MarkRegression {
			return true
		}
	}
	return false
}
