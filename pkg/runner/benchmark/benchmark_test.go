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

package benchmark

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nanosoldier/bot/pkg/job"
)

// fakeExecutor writes a fixed JSON stats body whenever it sees an
// %outfile%-style argument (the suite command), and is a no-op
// otherwise (build, version-info).
type fakeExecutor struct {
	stats map[string][]Stat // keyed by sha, looked up via the output path
}

func (f *fakeExecutor) Run(ctx context.Context, dir, command string, args ...string) ([]byte, error) {
	for _, a := range args {
		if filepath.Ext(a) == ".json" {
			sha := filepath.Base(a[:len(a)-len(".json")])
			stats, ok := f.stats[sha]
			if !ok {
				stats = []Stat{{Name: "bench1", Median: 1.0, Tolerance: 0.05}}
			}
			raw, _ := json.Marshal(stats)
			if err := os.MkdirAll(filepath.Dir(a), 0o755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(a, raw, 0o644); err != nil {
				return nil, err
			}
		}
	}
	return []byte("julia version 1.0.0\n"), nil
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	work := t.TempDir()
	cfg := Config{
		WorkDir:            work,
		BuildCommand:       []string{"true"},
		VersionInfoCommand: []string{"true"},
		SuiteCommand:       []string{"true", "%outfile%"},
	}
	return New(cfg, &fakeExecutor{stats: map[string][]Stat{}}, nil)
}

func TestRunSingleJobProducesReportWithoutComparison(t *testing.T) {
	t.Parallel()

	r := newRunner(t)
	j, err := job.NewBenchmarkJob(nil, nil, &job.JobSubmission{
		Func:  "runbenchmarks",
		Build: job.BuildRef{Repo: "JuliaLang/julia", SHA: "primarysha"},
	}, "JuliaLang/julia", false)
	if err != nil {
		t.Fatalf("NewBenchmarkJob: %v", err)
	}

	bundle, err := r.Run(context.Background(), j)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if bundle.Against != nil {
		t.Errorf("Against = %v, want nil for a single-run job", bundle.Against)
	}
	if len(bundle.DataArchive) == 0 {
		t.Error("expected a non-empty data archive")
	}
	if bundle.ReportMD == "" {
		t.Error("expected a non-empty rendered report")
	}
}

func TestJudgeClassifiesRegression(t *testing.T) {
	t.Parallel()

	primary := []Stat{{Name: "b", Median: 2.0, Tolerance: 0.05}}
	against := []Stat{{Name: "b", Median: 1.0, Tolerance: 0.05}}

	judged := judge(primary, against)
	if len(judged) != 1 || judged[0].Mark != job.MarkRegression {
		t.Fatalf("judge() = %+v, want one regression", judged)
	}
}
