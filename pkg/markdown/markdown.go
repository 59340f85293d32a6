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

// Package markdown strips fenced code blocks from comment bodies before
// trigger-phrase extraction, so that a trigger phrase pasted inside an
// unrelated code block does not re-trigger a job.
package markdown

import "strings"

// DropCodeBlock removes every fenced code block (``` or ~~~, optionally
// followed by a language tag) whose closing fence is alone on its own
// line. A fence with no matching close, or a close line carrying extra
// trailing text, is not a valid block and is left in place untouched.
func DropCodeBlock(text string) string {
	lines := strings.SplitAfter(text, "\n")
	var out []string

	for i := 0; i < len(lines); {
		fence := fenceToken(strings.TrimRight(lines[i], "\n"))
		if fence == "" {
			out = append(out, lines[i])
			i++
			continue
		}

		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimRight(lines[j], "\n") == fence {
				end = j
				break
			}
		}
		if end == -1 {
			out = append(out, lines[i])
			i++
			continue
		}
		i = end + 1
	}

	return strings.Join(out, "")
}

func fenceToken(line string) string {
	for _, tok := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, tok) {
			return tok
		}
	}
	return ""
}
