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
	"fmt"
	"strings"

	"github.com/nanosoldier/bot/pkg/job"
)

// renderReport builds the report.md body: required sections and data
// only, per spec.md section 4.1's note that markdown styling itself is
// out of scope.
func renderReport(bj *job.BenchmarkJob, bundle *job.ResultBundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Benchmark report\n\n")
	fmt.Fprintf(&b, "Primary: `%s@%s`\n\n", bundle.Primary.Repo, bundle.Primary.SHA)
	if bundle.Against != nil {
		fmt.Fprintf(&b, "Against: `%s@%s`\n\n", bundle.Against.Repo, bundle.Against.SHA)
	}
	fmt.Fprintf(&b, "Predicate: `%s`\n\n", bj.TagPredicate)
	fmt.Fprintf(&b, "Duration: %s\n\n", bundle.Duration)

	if len(bundle.Judged) == 0 {
		b.WriteString("No comparison was run.\n")
		return b.String()
	}

	b.WriteString("| benchmark | ratio | mark |\n|---|---|---|\n")
	for _, j := range bundle.Judged {
		fmt.Fprintf(&b, "| %s | %.3f | %s |\n", j.Name, j.Ratio, j.Mark)
	}
	if bundle.HasIssues {
		b.WriteString("\nPossible regressions were detected.\n")
	}
	return b.String()
}
