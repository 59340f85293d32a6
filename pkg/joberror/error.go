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

// Package joberror defines the error taxonomy shared by the submission
// pipeline, the dispatcher and the job runners. Each kind wraps a cause
// and exposes only a short, user-safe message; the cause is for
// node-local logs only and must never reach a status description or a
// comment body.
package joberror

import "fmt"

// Kind identifies which stage of the pipeline raised an error.
type Kind int

const (
	// Submission is malformed: the trigger phrase did not parse.
	Submission Kind = iota
	// Validation is syntactically fine but semantically rejected (bad
	// vs reference, daily job from a PR, non-literal configuration...).
	Validation
	// Run failed during job execution.
	Run
	// Publish failed while staging or pushing a report.
	Publish
)

func (k Kind) String() string {
	switch k {
	case Submission:
		return "submission"
	case Validation:
		return "validation"
	case Run:
		return "run"
	case Publish:
		return "publish"
	default:
		return "unknown"
	}
}

// Error wraps a cause with a kind and a short, user-safe message. The
// cause is intentionally excluded from Error() so that command output
// containing tokens never leaks into a GitHub-visible surface; callers
// that need the cause for logging use Unwrap or Cause.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

func Submissionf(format string, args ...interface{}) *Error {
	return &Error{kind: Submission, message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{kind: Validation, message: fmt.Sprintf(format, args...)}
}

func Runf(cause error, format string, args ...interface{}) *Error {
	return &Error{kind: Run, message: fmt.Sprintf(format, args...), cause: cause}
}

func Publishf(cause error, format string, args ...interface{}) *Error {
	return &Error{kind: Publish, message: fmt.Sprintf(format, args...), cause: cause}
}

// Error returns only the user-safe message, never the wrapped cause.
func (e *Error) Error() string {
	return e.message
}

// Unwrap exposes the cause for errors.Is/errors.As and for node-local
// logging; it must not be called anywhere that renders to the user.
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind reports which pipeline stage produced the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Is reports a match when target is a *Error of the same Kind that
// carries no message and no cause, so a bare *Error of a Kind can serve
// as an errors.Is target.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.kind == e.kind && other.message == "" && other.cause == nil
}

// KindOf reports the Kind of err if err itself is a *Error (or any value
// with a Kind method), and ok=false otherwise; wrapped errors are not
// unwrapped.
func KindOf(err error) (Kind, bool) {
	type kinder interface {
		Kind() Kind
	}
	if k, ok := err.(kinder); ok {
		return k.Kind(), true
	}
	return 0, false
}
