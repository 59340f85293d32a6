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

package job

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nanosoldier/bot/pkg/joberror"
)

// RefClient is the slice of the hosting API the Reference Resolver
// needs. It is declared here, narrow, rather than importing the
// concrete client package, so pkg/job stays a leaf the hostapi package
// never has to know about.
type RefClient interface {
	BranchHeadSHA(ctx context.Context, repo, branch string) (string, error)
	TagSHA(ctx context.Context, repo, tag string) (string, error)
	CommitTime(ctx context.Context, repo, sha string) (time.Time, error)
}

// refPattern matches "[owner/name]<sep><ref>" with sep in {":","@","#"}.
var refPattern = regexp.MustCompile(`^(?:([\w.-]+/[\w.-]+))?(:|@|#)(.+)$`)

const selfRef = "%self"

// unquoteVS strips the surrounding quotes a `vs` kwarg keeps as source
// text (`":master"` becomes `:master`).
func unquoteVS(vs string) string {
	return strings.Trim(strings.TrimSpace(vs), `"`)
}

// ResolveVS resolves a `vs` argument to a concrete BuildRef, per
// spec.md section 4.3. defaultRepo is used when the reference carries
// no "owner/name" prefix: the tracked repo for benchmark jobs, the
// submission's own repo for package-eval jobs.
func ResolveVS(ctx context.Context, client RefClient, vs string, self BuildRef, defaultRepo string) (BuildRef, error) {
	vs = unquoteVS(vs)
	if vs == selfRef {
		return self, nil
	}

	m := refPattern.FindStringSubmatch(vs)
	if m == nil || m[2] == "" {
		return BuildRef{}, joberror.Validationf("vs %q is not a recognized reference (expected :branch, @sha, #tag, or %%self)", vs)
	}

	repo := m[1]
	sep := m[2]
	refName := m[3]
	if repo == "" {
		repo = defaultRepo
	}

	switch sep {
	case ":":
		sha, err := client.BranchHeadSHA(ctx, repo, refName)
		if err != nil {
			return BuildRef{}, joberror.Validationf("could not resolve branch %q on %s: %v", refName, repo, err)
		}
		return commitRef(ctx, client, repo, sha)
	case "@":
		return commitRef(ctx, client, repo, refName)
	case "#":
		sha, err := client.TagSHA(ctx, repo, refName)
		if err != nil {
			return BuildRef{}, joberror.Validationf("could not resolve tag %q on %s: %v", refName, repo, err)
		}
		return commitRef(ctx, client, repo, sha)
	default:
		return BuildRef{}, joberror.Validationf("vs %q has an unrecognized separator", vs)
	}
}

func commitRef(ctx context.Context, client RefClient, repo, sha string) (BuildRef, error) {
	t, err := client.CommitTime(ctx, repo, sha)
	if err != nil {
		return BuildRef{}, joberror.Validationf("could not resolve commit %q on %s: %v", sha, repo, err)
	}
	return BuildRef{Repo: repo, SHA: sha, CommitTime: t}, nil
}

// fmtVS renders a BuildRef back as an "owner/name@sha" vs reference.
func fmtVS(b BuildRef) string {
	return fmt.Sprintf("%s@%s", b.Repo, b.SHA)
}
