package main

import (
	"fmt"
	"os"

	"lineaops/internal/config"
	"lineaops/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lineaops",
	Short: "Benchmark and operate a load-balanced Linea RPC node",
	Long: `lineaops runs the connectivity check, the load sweep, the sustained load test and
the cache probe against a Linea JSON-RPC endpoint, and writes an HTML performance report.
It also renders and inspects the docker compose stack (node, nginx, Redis, Prometheus)
that serves the endpoint.

Running lineaops without a subcommand is the same as "lineaops bench".`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runBench,
}

// flagKeys maps command-line flags onto configuration keys. Flags win over the config
// file and environment only when set.
var flagKeys = map[string]string{
	"verbose":             "verbose",
	"log-file":            "log_file",
	"target":              "target.url",
	"ws-url":              "target.ws_url",
	"output":              "output.dir",
	"history":             "history.path",
	"tool":                "load.tool",
	"levels":              "load.levels",
	"requests-per-client": "load.requests_per_client",
	"cooldown":            "load.cooldown",
	"install":             "load.install_missing",
	"duration":            "sustained.duration",
	"delay":               "sustained.delay",
	"cache-requests":      "cache.requests",
	"metrics-port":        "metrics.port",
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./lineaops.yaml)")
	pf.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	pf.String("log-file", "", "Also write JSON logs to this file")
	pf.String("target", "", "JSON-RPC endpoint under test (overrides target.url and RPC_URL)")
	pf.String("ws-url", "", "WebSocket endpoint for the optional WS check")
	pf.StringP("output", "o", "", "Directory for benchmark artifacts")
	pf.String("history", "", "Run history file (.json or sqlite)")

	addBenchFlags(rootCmd.Flags())
}

func addBenchFlags(fs *pflag.FlagSet) {
	fs.String("tool", "", "Load generator: ab or native")
	fs.String("levels", "", "Comma separated concurrency levels")
	fs.Int("requests-per-client", 0, "Requests per concurrent client at each level")
	fs.Duration("cooldown", 0, "Pause between concurrency levels")
	fs.Bool("install", false, "Install the load generator if it is missing")
	fs.Duration("duration", 0, "Sustained load duration")
	fs.Duration("delay", 0, "Delay between sustained requests")
	fs.Int("cache-requests", 0, "Requests sent by the cache probe")
	fs.Int("metrics-port", 0, "Serve /metrics on this port while the benchmark runs")
}

// initConfig binds the flags of the command being run, loads the configuration and
// installs the logger.
func initConfig(cmd *cobra.Command, args []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}
	if err := config.Load(cfgFile); err != nil {
		return err
	}

	verbose := viper.GetBool("verbose")
	telemetry.InitLogger(verbose, viper.GetString("log_file"), !verbose)
	if used := viper.ConfigFileUsed(); used != "" {
		telemetry.LogDebug("using config file", "path", used)
	}
	return nil
}

// loadConfig resolves and validates the configuration for the current command.
func loadConfig() (config.Config, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return cfg, err
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
