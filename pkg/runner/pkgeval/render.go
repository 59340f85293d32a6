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
	"fmt"
	"strings"

	"github.com/nanosoldier/bot/pkg/job"
)

func renderReport(pj *job.PackageEvalJob, bundle *job.ResultBundle, primary []PackageResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Package evaluation report\n\n")
	fmt.Fprintf(&b, "Type: %s\n\n", pj.Type)
	fmt.Fprintf(&b, "Primary: `%s@%s`\n\n", bundle.Primary.Repo, bundle.Primary.SHA)
	if bundle.Against != nil {
		fmt.Fprintf(&b, "Against: `%s@%s`\n\n", bundle.Against.Repo, bundle.Against.SHA)
	}
	fmt.Fprintf(&b, "Duration: %s\n\n", bundle.Duration)

	b.WriteString("| package | status | reason | duration |\n|---|---|---|---|\n")
	for _, r := range primary {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Name, r.Status, r.Reason, r.Duration)
	}
	if bundle.HasIssues {
		b.WriteString("\nRegressions were detected: packages fail on the primary side that pass on the comparison side.\n")
	}
	return b.String()
}
