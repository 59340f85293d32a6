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

package joberror

import (
	"errors"
	"testing"
)

func TestErrorHidesCause(t *testing.T) {
	cause := errors.New("curl failed with token ghp_abcdef123")
	err := Runf(cause, "benchmark build failed")

	if err.Error() != "benchmark build failed" {
		t.Fatalf("Error() leaked cause: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should still reach the wrapped cause via Unwrap")
	}
}

func TestKindOf(t *testing.T) {
	err := Validationf("isdaily from a PR is not allowed")
	kind, ok := KindOf(err)
	if !ok || kind != Validation {
		t.Fatalf("KindOf = (%v, %v), want (Validation, true)", kind, ok)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatalf("KindOf should report false for a plain error")
	}
}
