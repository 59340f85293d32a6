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

import "html"

// renderHTML wraps the report markdown in a <pre> block for the
// optional object-store mirror. No markdown-to-HTML renderer appears
// anywhere in the example corpus this bot's stack is drawn from, and
// the HTML copy is a convenience mirror of the canonical report.md
// committed to the repository, not a primary surface, so it is not
// worth an ungrounded third-party dependency; a preformatted, escaped
// block is enough to make the report legible in a browser.
func renderHTML(md string) string {
	return "<!DOCTYPE html><html><body><pre>" + html.EscapeString(md) + "</pre></body></html>"
}
