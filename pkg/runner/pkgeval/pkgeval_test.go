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

package pkgeval

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nanosoldier/bot/pkg/job"
)

type fakeExecutor struct{}

func (fakeExecutor) Run(ctx context.Context, dir, command string, args ...string) ([]byte, error) {
	for _, a := range args {
		if filepath.Ext(a) == ".json" {
			res := PackageResult{Status: job.StatusOK, Version: "1.0.0"}
			raw, _ := json.Marshal(res)
			if err := os.MkdirAll(filepath.Dir(a), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(a, raw, 0o644); err != nil {
				return nil, err
			}
		}
	}
	return []byte("ok"), nil
}

func TestRunEvaluatesExplicitPackageSelection(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	r := New(Config{
		WorkDir:         work,
		EvaluateCommand: []string{"true", "%package%", "%outfile%"},
	}, fakeExecutor{}, nil, nil)

	j, err := job.NewPackageEvalJob(nil, nil, &job.JobSubmission{
		Func:  "runtests",
		Args:  []string{"PkgA", "PkgB"},
		Build: job.BuildRef{Repo: "JuliaLang/julia", SHA: "abc"},
	}, job.Configuration{}, job.Configuration{}, "JuliaLang/julia", false)
	if err != nil {
		t.Fatalf("NewPackageEvalJob: %v", err)
	}

	bundle, err := r.Run(context.Background(), j)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if bundle.ReportMD == "" {
		t.Error("expected a non-empty rendered report")
	}
	if len(bundle.DataArchive) == 0 {
		t.Error("expected a non-empty data archive")
	}
}

func TestApplyBlocklistFiltersPackages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocklistPath := filepath.Join(dir, "blocklist.json")
	raw, _ := json.Marshal([]string{"Bad"})
	if err := os.WriteFile(blocklistPath, raw, 0o644); err != nil {
		t.Fatalf("write blocklist: %v", err)
	}

	r := New(Config{BlocklistPath: blocklistPath}, fakeExecutor{}, nil, nil)
	got, err := r.applyBlocklist([]string{"Good", "Bad"})
	if err != nil {
		t.Fatalf("applyBlocklist: %v", err)
	}
	if len(got) != 1 || got[0] != "Good" {
		t.Errorf("applyBlocklist() = %v, want [Good]", got)
	}
}
