package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lineaops/internal/benchmark"
	"lineaops/internal/config"
	"lineaops/internal/history"
	"lineaops/internal/loadgen"
	"lineaops/internal/metrics"
	"lineaops/internal/notify"
	"lineaops/internal/probe"
	"lineaops/internal/rpc"
	"lineaops/internal/telemetry"
	"lineaops/internal/ui"

	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the full benchmark pipeline",
	Long: `Runs, in order: the connectivity check, the load test at every concurrency level,
the sustained load test, the cache probe and the report. The output directory is cleared
of previous artifacts first. A failed connectivity or load stage aborts the run.`,
	RunE: runBench,
}

// newGenerator is swapped in tests.
var newGenerator = loadgen.New

func init() {
	addBenchFlags(benchCmd.Flags())
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := ui.NewConsole(cmd.OutOrStdout())
	p, cleanup, err := buildPipeline(cfg, out)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := p.Execute(ctx)
	if err != nil {
		return err
	}

	out.Section("Summary")
	printRunSummary(cmd.OutOrStdout(), *run)
	out.Pass("Benchmark complete, results in %s", cfg.Output.Dir)
	return nil
}

// buildPipeline wires every stage from cfg. cleanup releases the metrics server and the
// history store and is safe to call when err is nil.
func buildPipeline(cfg config.Config, out ui.Printer) (*benchmark.Pipeline, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	client := rpc.NewClient(cfg.Target.URL, cfg.Target.HealthPath, cfg.Target.Timeout)
	gen, err := newGenerator(cfg.Load.Tool, loadgen.Options{
		InstallMissing: cfg.Load.InstallMissing,
		InstallCommand: cfg.Load.InstallCommand,
	})
	if err != nil {
		return nil, cleanup, err
	}

	arts := benchmark.NewArtifacts(cfg.Output.Dir)
	m := metrics.NewMetrics()

	p := &benchmark.Pipeline{
		Target:    cfg.Target.URL,
		Artifacts: arts,
		Prober:    probe.New(client, cfg.Target.WSURL, cfg.Target.Timeout, out),
		Load: &benchmark.LoadDriver{
			Generator:         gen,
			URL:               cfg.Target.URL,
			Levels:            cfg.Load.Levels,
			RequestsPerClient: cfg.Load.RequestsPerClient,
			Cooldown:          cfg.Load.Cooldown,
			Timeout:           cfg.Target.Timeout,
			Artifacts:         arts,
			Metrics:           m,
			Out:               out,
		},
		Sustained: &benchmark.SustainedDriver{
			Sender:    client,
			Duration:  cfg.Sustained.Duration,
			Delay:     cfg.Sustained.Delay,
			Artifacts: arts,
			Metrics:   m,
			Out:       out,
		},
		Cache: &benchmark.CacheProbe{
			Sender:    client,
			Requests:  cfg.Cache.Requests,
			Artifacts: arts,
			Metrics:   m,
			Out:       out,
		},
		Metrics: m,
		Out:     out,
	}

	if cfg.Metrics.Port > 0 {
		srv, err := telemetry.StartMetricsServer(fmt.Sprintf(":%d", cfg.Metrics.Port), m.Registry)
		if err != nil {
			out.Warn("Failed to start metrics server: %v", err)
		} else {
			out.Info("Serving metrics on %s/metrics", srv.Addr())
			closers = append(closers, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			})
		}
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		p.History = store
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				telemetry.LogError("failed to close history", err)
			}
		})
	}

	if mgr := notify.NewManager(cfg.Notify); mgr.Enabled() {
		p.Notifier = mgr
	}
	return p, cleanup, nil
}
