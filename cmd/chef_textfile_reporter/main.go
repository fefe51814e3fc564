// Copyright 2026 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command chef_textfile_reporter writes the metrics of a finished Chef client
// run to a node_exporter textfile. It is meant to be called from a Chef
// report handler with the run snapshot on stdin.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/promslog"
	promslogflag "github.com/prometheus/common/promslog/flag"
	"github.com/prometheus/common/version"

	"github.com/prometheus-community/chef_textfile_reporter/config"
	"github.com/prometheus-community/chef_textfile_reporter/report"
	"github.com/prometheus-community/chef_textfile_reporter/snapshot"
)

const programName = "chef_textfile_reporter"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run returns 1 only for usage and configuration errors. Reporting problems
// are logged and exit 0 so that the Chef run is never failed by its handler.
func run(args []string, stderr io.Writer) int {
	var (
		app = kingpin.New(programName, "Writes Chef client run metrics to a node_exporter textfile.")

		configFile = app.Flag("config.file", "Path to the reporter configuration file.").
				String()
		textfilePath = app.Flag("textfile.path", "Textfile to write, overrides the configuration file. Empty disables writing.").
				String()
		snapshotFile = app.Flag("snapshot.file", "Run snapshot in YAML or JSON, '-' for stdin.").
				Default("-").String()
		environment = app.Flag("environment", "Environment for runs whose snapshot has none, overrides the configuration file.").
				String()

		textfileSet bool
	)
	app.GetFlag("textfile.path").IsSetByUser(&textfileSet)

	promslogConfig := &promslog.Config{Writer: stderr}
	promslogflag.AddFlags(app, promslogConfig)
	app.Version(version.Print(programName))
	app.HelpFlag.Short('h')
	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return 1
	}
	logger := promslog.New(promslogConfig)

	cfg := config.DefaultConfig
	if *configFile != "" {
		c, err := config.LoadFile(*configFile)
		if err != nil {
			logger.Error("Error loading config", "file", *configFile, "err", err)
			return 1
		}
		cfg = *c
	}
	if textfileSet {
		cfg.Textfile = *textfilePath
	}
	if *environment != "" {
		cfg.DefaultEnvironment = *environment
	}

	logger.Debug("Starting "+programName, "version", version.Info(), "build_context", version.BuildContext())

	snap, err := snapshot.Load(*snapshotFile)
	if err != nil {
		logger.Error("Error loading run snapshot", "file", *snapshotFile, "kind", report.KindOf(err), "err", err)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := report.NewCollector(logger, report.Options{
		DefaultEnvironment: cfg.DefaultEnvironment,
		LockTimeout:        time.Duration(cfg.LockTimeout),
		FileMode:           os.FileMode(cfg.FileMode),
	})
	res := c.Report(ctx, snap, cfg.Textfile)
	if res.Warning != nil {
		logger.Warn("Metrics not written", "cycle", res.CycleID, "kind", report.KindOf(res.Warning))
		return 0
	}
	logger.Debug("Report finished", slog.String("cycle", res.CycleID), slog.Bool("written", res.Written))
	return 0
}
