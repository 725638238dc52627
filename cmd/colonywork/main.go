// Command colonywork runs a colony's work order loop: it restores saved
// orders, seeds a roster from configuration, ticks, and saves the result.
//
//	colonywork [-config path] [-ticks n] [-archive] [-metrics]
//	colonywork check [-config path] [-json]
//
// The check subcommand reports saved records that would be dropped on load
// and exits 1 when there are any.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"colonywork/internal/blob"
	"colonywork/internal/config"
	"colonywork/internal/core"
	"colonywork/plugins/build"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

type options struct {
	configPath string
	ticks      int
	archive    bool
	metrics    bool
}

func cli(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "check" {
		return checkCLI(args[1:], stdout, stderr)
	}
	fs := flag.NewFlagSet("colonywork", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "path to colonywork yaml config")
	fs.IntVar(&opts.ticks, "ticks", 1, "number of ticks to run")
	fs.BoolVar(&opts.archive, "archive", false, "write a colony archive after saving")
	fs.BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics after the run")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.ticks < 0 {
		_, _ = fmt.Fprintln(stderr, "ticks must not be negative")
		return 2
	}
	if err := run(context.Background(), opts, stdout, stderr); err != nil {
		_, _ = fmt.Fprintf(stderr, "colonywork: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) (err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	store, err := core.OpenRecordStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	promReg := prometheus.NewRegistry()
	recorder, err := core.NewPrometheusRecorder(promReg, cfg.Metrics.Namespace)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("register metrics: %w", err)
	}
	svcOpts := []core.Option{core.WithLogger(logger), core.WithMetricsRecorder(recorder)}
	if opts.archive {
		archive, err := blob.Open(ctx, cfg.Archive)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("open archive store: %w", err)
		}
		svcOpts = append(svcOpts, core.WithArchive(archive))
	}
	svc := core.NewService(store, svcOpts...)
	defer func() {
		if closeErr := svc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := svc.InstallPlugin(build.New()); err != nil {
		return err
	}
	roster, err := rosterFromConfig(cfg.Colony)
	if err != nil {
		return err
	}
	colony, report, err := svc.OpenColony(ctx, cfg.Colony.ID, roster...)
	if err != nil {
		return err
	}
	seeded := 0
	if report.Loaded == 0 && len(report.Dropped) == 0 {
		seeded = seedOrders(svc.Registry(), colony, cfg.Colony.Orders, logger)
	}

	var claims []core.Claim
	for i := 0; i < opts.ticks; i++ {
		claims = append(claims, svc.Tick(ctx)...)
	}
	if err := svc.SaveColony(ctx, colony.ID()); err != nil {
		return err
	}

	var archiveKey string
	if opts.archive {
		info, err := svc.ArchiveColony(ctx, colony.ID())
		if err != nil {
			return err
		}
		archiveKey = info.Key
	}

	writeSummary(stdout, colony, report, seeded, claims, archiveKey)
	if opts.metrics {
		return writeMetrics(stdout, promReg)
	}
	return nil
}

func newLogger(cfg config.Log, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

func writeSummary(w io.Writer, colony *core.Colony, report core.LoadReport, seeded int, claims []core.Claim, archiveKey string) {
	_, _ = fmt.Fprintf(w, "colony %s: loaded=%d dropped=%d released=%d seeded=%d claims=%d\n",
		colony.ID(), report.Loaded, len(report.Dropped), report.Released, seeded, len(claims))
	for _, order := range colony.Orders() {
		holder := "-"
		if workerID, ok := order.ClaimedBy(); ok {
			holder = workerID.String()
			if citizen, found := colony.Citizen(workerID); found {
				holder = citizen.Name()
			}
		}
		_, _ = fmt.Fprintf(w, "  %-8s %s claimed_by=%s\n", order.Kind(), order.ID(), holder)
	}
	if archiveKey != "" {
		_, _ = fmt.Fprintf(w, "archived to %s\n", archiveKey)
	}
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var errs []error
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
