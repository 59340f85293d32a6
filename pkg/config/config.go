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

// Package config loads and serves the bot's static configuration: which
// repo is tracked, which worker nodes exist and their job-type affinity,
// where reports are published, and the secrets needed to talk to the
// hosting service.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/robfig/cron.v2"
	"sigs.k8s.io/yaml"
)

// Duration marshals as a human string ("5s", "24h") in YAML/JSON but
// behaves as a time.Duration everywhere else.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.Duration.String())), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// NodeJobType enumerates the two job types a worker node can be
// affine to. A node's Affinity is a set of these.
type NodeJobType string

const (
	BenchmarkJobType  NodeJobType = "benchmark"
	PackageEvalJobType NodeJobType = "pkgeval"
)

// Node describes one worker node in the pool.
type Node struct {
	// Name identifies the node in logs and status descriptions.
	Name string `json:"name"`
	// Affinity lists the job types this node is willing to run.
	Affinity []NodeJobType `json:"affinity"`
	// AcceptDaily marks the single node per affinity group that is
	// allowed to pick up daily jobs.
	AcceptDaily bool `json:"accept_daily,omitempty"`
	// CPUs bounds pkgeval parallelism on this node.
	CPUs int `json:"cpus,omitempty"`
}

// Bucket configures the optional object-store upload target used for
// package logs and rendered HTML reports.
type Bucket struct {
	Name      string `json:"name"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
}

// Config is the `{user, nodes, auth, secret, trackrepo, reportrepo,
// trigger, admin, bucket?}` surface from spec.md section 6.
type Config struct {
	// User is the bot account the hosting API calls are made as.
	User string `json:"user"`
	// Nodes is the worker pool.
	Nodes []Node `json:"nodes"`
	// AuthToken is the hosting-service API token (never logged). Used
	// as-is unless AppID and AppPrivateKey are also set.
	AuthToken string `json:"auth"`
	// AppID and AppPrivateKey select hosting-app identity instead of a
	// plain personal access token; when both are set, NewClient mints
	// a short-lived app JWT instead of using AuthToken directly.
	AppID         string `json:"app_id,omitempty"`
	AppPrivateKey string `json:"app_private_key,omitempty"`
	// WebhookSecret validates the HMAC signature on inbound webhooks.
	WebhookSecret string `json:"secret"`
	// TrackRepo is the repository whose default-branch commits govern
	// daily-job admission and the implicit vs-reference target.
	TrackRepo string `json:"trackrepo"`
	// TrackBranch is TrackRepo's default branch used for daily-job SHA
	// lookback; defaults to "master".
	TrackBranch string `json:"trackbranch,omitempty"`
	// ReportRepo is the repository that accumulates published reports.
	ReportRepo string `json:"reportrepo"`
	// ReportRepoDir is a local clone of ReportRepo the publisher pushes
	// to; operational glue (provisioning the clone) is out of scope.
	ReportRepoDir string `json:"reportrepo_dir"`
	// Trigger is the regular expression matched against comment bodies;
	// defaults to the nanosoldier trigger phrase.
	Trigger string `json:"trigger"`
	// Admin is the handle mentioned in error comments.
	Admin string `json:"admin"`
	// Bucket is optional; when nil, logs and reports stay local.
	Bucket *Bucket `json:"bucket,omitempty"`
	// PollInterval is loaded and defaulted here; the dispatcher's idle
	// retry uses its own fixed interval and does not read this field.
	PollInterval Duration `json:"poll_interval,omitempty"`
	// DailySchedule is an optional cron expression; when set, the
	// dispatcher logs queue depth on this schedule as a self-health
	// signal (spec.md section 6).
	DailySchedule string `json:"daily_schedule,omitempty"`
}

const defaultTrigger = "@nanosoldier\\s*`runtests\\(.*?\\)`"
const defaultTrackBranch = "master"

// DryRunEnv, when set to "1", disables all outbound writes to the
// hosting service and redirects report publication to a predictable
// local path, mirroring NANOSOLDIER_DRYRUN from spec.md section 6.
const DryRunEnv = "NANOSOLDIER_DRYRUN"

// DryRun reports whether the dry-run environment flag is set.
func DryRun() bool {
	return os.Getenv(DryRunEnv) == "1"
}

// Load reads and validates a Config from a YAML file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Trigger == "" {
		cfg.Trigger = defaultTrigger
	}
	if cfg.PollInterval.Duration == 0 {
		cfg.PollInterval = Duration{5 * time.Second}
	}
	if cfg.TrackBranch == "" {
		cfg.TrackBranch = defaultTrackBranch
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TrackRepo == "" {
		return fmt.Errorf("trackrepo must be set")
	}
	if c.ReportRepo == "" {
		return fmt.Errorf("reportrepo must be set")
	}
	if len(c.Nodes) == 0 {
		return fmt.Errorf("at least one node must be configured")
	}
	if c.DailySchedule != "" {
		if _, err := cron.Parse(c.DailySchedule); err != nil {
			return fmt.Errorf("invalid daily_schedule %q: %w", c.DailySchedule, err)
		}
	}
	if (c.AppID == "") != (c.AppPrivateKey == "") {
		return fmt.Errorf("app_id and app_private_key must be set together")
	}
	dailyByAffinity := map[NodeJobType]int{}
	for _, n := range c.Nodes {
		if n.Name == "" {
			return fmt.Errorf("node with empty name")
		}
		if n.AcceptDaily {
			for _, a := range n.Affinity {
				dailyByAffinity[a]++
			}
		}
	}
	for affinity, count := range dailyByAffinity {
		if count > 1 {
			return fmt.Errorf("more than one node accepts daily %s jobs; only one is allowed per affinity group", affinity)
		}
	}
	return nil
}
