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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nanosoldier/bot/pkg/job"
)

// dailyRecord is the db.json sidecar a daily job writes, per spec.md
// section 4.6's "Daily anchoring".
type dailyRecord struct {
	Build    job.BuildRef    `json:"build"`
	Packages []PackageResult `json:"packages"`
}

// DailyAnchor reads and advances the package-eval "latest daily"
// pointer recorded in the report repository's working copy.
type DailyAnchor struct {
	ReportRepoDir string
}

// Previous returns the build the most recent daily run evaluated, read
// via the latest pointer, so the current daily job can compare against
// it.
func (a *DailyAnchor) Previous() (job.BuildRef, bool) {
	latestPath := filepath.Join(a.ReportRepoDir, "pkgeval", "by_date", "latest")
	target, err := os.ReadFile(latestPath)
	if err != nil {
		return job.BuildRef{}, false
	}
	dir := strings.TrimSpace(string(target))
	raw, err := os.ReadFile(filepath.Join(a.ReportRepoDir, "pkgeval", "by_date", dir, "db.json"))
	if err != nil {
		return job.BuildRef{}, false
	}
	var rec dailyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return job.BuildRef{}, false
	}
	return rec.Build, true
}

// Annotate stashes db.json and the updated latest pointer on bundle,
// for the report publisher to commit alongside report.md.
//
// The pointer is committed as a plain text file rather than a real
// git/filesystem symlink: a plain pointer file reads identically for
// this bot's own Previous() lookup without depending on symlink support
// across checkout environments.
func (a *DailyAnchor) Annotate(bundle *job.ResultBundle, build job.BuildRef, results []PackageResult, now time.Time) {
	rec := dailyRecord{Build: build, Packages: results}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if bundle.Extra == nil {
		bundle.Extra = map[string]interface{}{}
	}
	bundle.Extra["db.json"] = raw

	dateDir := filepath.Join(now.Format("2006-01"), now.Format("02"))
	if bundle.RepoRootFiles == nil {
		bundle.RepoRootFiles = map[string][]byte{}
	}
	bundle.RepoRootFiles[filepath.Join("pkgeval", "by_date", "latest")] = []byte(dateDir + "\n")
}
