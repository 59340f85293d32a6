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

// Command nanosoldier is the thin entry point wiring the request
// pipeline, job scheduler, and report publisher into a running
// webhook server. Provisioning the report repository clone and the
// build/test toolchain invoked by the job runners is operational
// glue handled outside this binary (spec.md section 1's Non-goals).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/nanosoldier/bot/pkg/blobstore"
	"github.com/nanosoldier/bot/pkg/config"
	"github.com/nanosoldier/bot/pkg/dispatcher"
	"github.com/nanosoldier/bot/pkg/extcmd"
	"github.com/nanosoldier/bot/pkg/hook"
	"github.com/nanosoldier/bot/pkg/hostapi"
	"github.com/nanosoldier/bot/pkg/job"
	"github.com/nanosoldier/bot/pkg/metrics"
	"github.com/nanosoldier/bot/pkg/reply"
	"github.com/nanosoldier/bot/pkg/report"
	"github.com/nanosoldier/bot/pkg/runner/benchmark"
	"github.com/nanosoldier/bot/pkg/runner/pkgeval"
)

type options struct {
	configPath string

	bindAddress string
	port        int
	metricsPort int

	workDir string
}

func gatherOptions(fs *flag.FlagSet, args []string) options {
	var o options
	fs.StringVar(&o.configPath, "config", "/etc/nanosoldier/config.yaml", "Path to the bot's YAML configuration file.")
	fs.StringVar(&o.bindAddress, "bind-address", "", "Address the webhook server listens on.")
	fs.IntVar(&o.port, "port", 8888, "Port the webhook server listens on.")
	fs.IntVar(&o.metricsPort, "metrics-port", 9090, "Port the Prometheus metrics endpoint listens on.")
	fs.StringVar(&o.workDir, "work-dir", "/var/nanosoldier", "Scratch directory for builds, logs, and job working sets.")
	fs.Parse(args)
	return o
}

// runnerConfig reads the opaque external command templates the job
// runners delegate to. Provisioning these commands and the toolchain
// behind them is out of scope (spec.md section 1); the entry point's
// only job is to thread the template strings through.
func runnerConfig(workDir string) (benchmark.Config, pkgeval.Config) {
	split := func(env string) []string {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		return strings.Fields(v)
	}

	bcfg := benchmark.Config{
		WorkDir:            filepath.Join(workDir, "benchmark"),
		BuildCommand:       split("NANOSOLDIER_BUILD_COMMAND"),
		LocalInstallDir:    os.Getenv("NANOSOLDIER_LOCAL_INSTALL_DIR"),
		VersionInfoCommand: split("NANOSOLDIER_VERSION_INFO_COMMAND"),
		SuiteCommand:       split("NANOSOLDIER_SUITE_COMMAND"),
	}
	pcfg := pkgeval.Config{
		WorkDir:             filepath.Join(workDir, "pkgeval"),
		ListPackagesCommand: split("NANOSOLDIER_LIST_PACKAGES_COMMAND"),
		EvaluateCommand:     split("NANOSOLDIER_EVALUATE_COMMAND"),
		BlocklistPath:       os.Getenv("NANOSOLDIER_BLOCKLIST_PATH"),
	}
	return bcfg, pcfg
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("component", "nanosoldier")

	o := gatherOptions(flag.NewFlagSet(os.Args[0], flag.ExitOnError), os.Args[1:])

	agent := &config.Agent{}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	agent.Set(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hostClient := hostapi.NewClient(cfg)
	censor := extcmd.NewCensor(cfg.AuthToken, cfg.WebhookSecret)
	exec := extcmd.New(censor)

	var htmlStore blobstore.Store
	if cfg.Bucket != nil {
		s3Store, err := blobstore.NewS3Store(ctx, cfg.Bucket)
		if err != nil {
			log.WithError(err).Fatal("configuring object-store bucket")
		}
		htmlStore = s3Store
	} else {
		htmlStore = &blobstore.LocalStore{Root: filepath.Join(o.workDir, "html")}
	}

	publisher, err := report.New(cfg.ReportRepoDir, "", cfg.AuthToken, htmlStore)
	if err != nil {
		log.WithError(err).Fatal("opening report repository clone")
	}
	reporter := reply.New(hostClient)

	bcfg, pcfg := runnerConfig(o.workDir)
	benchRunner := benchmark.New(bcfg, exec, &benchmark.DailyLookup{ReportRepoDir: cfg.ReportRepoDir})
	pkgevalRunner := pkgeval.New(pcfg, exec, htmlStore, &pkgeval.DailyAnchor{ReportRepoDir: cfg.ReportRepoDir})

	runners := map[job.Kind]dispatcher.RunFunc{
		job.BenchmarkKind:   benchRunner.Run,
		job.PackageEvalKind: pkgevalRunner.Run,
	}

	d := dispatcher.New(cfg.Nodes, runners, publisher, reporter, cfg.Admin)

	if cfg.DailySchedule != "" {
		c, err := d.StartSelfHealthLog(cfg.DailySchedule)
		if err != nil {
			log.WithError(err).Fatal("scheduling self-health log")
		}
		defer c.Stop()
	}

	go metrics.PollQueueDepth(ctx, 15*time.Second, d.QueueDepth)
	go dispatcherRun(ctx, d, log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: fmt.Sprintf(":%d", o.metricsPort), Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	srv := hook.New(agent, hostClient, d, reporter)
	log.WithField("port", o.port).Info("starting webhook server")
	if err := srv.Run(ctx, o.bindAddress, o.port); err != nil {
		log.WithError(err).Fatal("webhook server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("metrics server did not shut down cleanly")
	}
}

func dispatcherRun(ctx context.Context, d *dispatcher.Dispatcher, log *logrus.Entry) {
	log.Info("starting dispatcher")
	d.Run(ctx)
	log.Info("dispatcher stopped")
}
