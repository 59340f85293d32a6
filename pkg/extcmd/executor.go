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

// Package extcmd runs the opaque external commands the job runners
// depend on: the build toolchain, the benchmark suite, and the package
// test sandbox. None of their internals are this bot's concern; only
// that their combined output is censored before it ever reaches a
// log line or, worse, a user-facing error message.
package extcmd

import (
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Executor runs one external command and returns its combined output.
type Executor interface {
	Run(ctx context.Context, dir, command string, args ...string) ([]byte, error)
}

// Censor redacts secrets from captured command output.
type Censor func(content []byte) []byte

var credentialURLRegex = regexp.MustCompile(`(https?://[^:]+:)([^@]+)(@[^/\s:]+(?::[0-9]+)?)`)

// NewCensor builds a Censor that redacts URL-embedded credentials plus
// any literal secret strings it is given (an auth token, a webhook
// secret).
func NewCensor(secrets ...string) Censor {
	return func(content []byte) []byte {
		out := credentialURLRegex.ReplaceAll(content, []byte("${1}xxxxx${3}"))
		s := string(out)
		for _, secret := range secrets {
			if secret == "" {
				continue
			}
			s = strings.ReplaceAll(s, secret, "xxxxx")
		}
		return []byte(s)
	}
}

// executor shells out via os/exec and censors before logging.
type executor struct {
	logger *logrus.Entry
	censor Censor
}

// New returns the default Executor, grounded on exec.CommandContext.
func New(censor Censor) Executor {
	return &executor{logger: logrus.WithField("component", "extcmd"), censor: censor}
}

func (e *executor) Run(ctx context.Context, dir, command string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, command, args...)
	c.Dir = dir
	out, err := c.CombinedOutput()
	if e.censor != nil {
		out = e.censor(out)
	}
	logger := e.logger.WithFields(logrus.Fields{"command": command, "dir": dir})
	if err != nil {
		logger.WithError(err).Debug("external command failed")
	} else {
		logger.Debug("external command succeeded")
	}
	return out, err
}
