package main

import (
	"context"
	"fmt"
	"io"

	"lineaops/internal/config"
	"lineaops/internal/docker"
	"lineaops/internal/rpc"
	"lineaops/internal/stack"
	"lineaops/internal/ui"

	"github.com/spf13/cobra"
)

// dockerClient is the part of docker.Client the stack commands use.
type dockerClient interface {
	stack.DockerInspector
	CheckImage(ctx context.Context, imageRef string) (bool, error)
	PullImage(ctx context.Context, imageRef string) error
	Close() error
}

type composeRunner interface {
	Up(ctx context.Context) (string, error)
	Down(ctx context.Context) (string, error)
	Ps(ctx context.Context) (string, error)
}

// Constructors swapped in tests.
var (
	newDockerClient = func() (dockerClient, error) {
		c, err := docker.NewClient()
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	newCompose = func(cfg config.StackConfig) composeRunner {
		return &stack.Compose{File: cfg.ComposeFile, Project: cfg.Project}
	}
	newRedis = func(addr string) stack.RedisPinger {
		return stack.NewRedis(addr)
	}
	newPrometheus = func(addr string) (stack.PromQuerier, error) {
		return stack.NewPrometheus(addr)
	}
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Operate the docker compose deployment",
}

var stackUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the stack in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompose(cmd, "up")
	},
}

var stackDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove the stack's containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompose(cmd, "down")
	},
}

var stackPsCmd = &cobra.Command{
	Use:   "ps",
	Short: "List the stack's containers as docker compose sees them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompose(cmd, "ps")
	},
}

var stackPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the node, nginx, Redis and Prometheus images",
	RunE:  runStackPull,
}

var stackStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check containers, Redis, Prometheus targets and the RPC endpoint",
	Long: `Runs every check independently and prints one line per check: docker daemon,
each compose container, Redis PING, each Prometheus scrape target, and the endpoint's
health and block number. Fails when any check fails.`,
	RunE: runStackStatus,
}

func init() {
	stackPullCmd.Flags().Bool("force", false, "Pull images that are already present")
	stackCmd.AddCommand(stackUpCmd, stackDownCmd, stackPsCmd, stackPullCmd, stackStatusCmd)
	rootCmd.AddCommand(stackCmd)
}

func runCompose(cmd *cobra.Command, action string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := ui.NewConsole(cmd.OutOrStdout())

	compose := newCompose(cfg.Stack)
	var output string
	switch action {
	case "up":
		out.Info("Starting stack %s from %s", cfg.Stack.Project, cfg.Stack.ComposeFile)
		output, err = compose.Up(cmd.Context())
	case "down":
		out.Info("Stopping stack %s", cfg.Stack.Project)
		output, err = compose.Down(cmd.Context())
	default:
		output, err = compose.Ps(cmd.Context())
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprint(cmd.OutOrStdout(), output)
	}
	if action != "ps" {
		out.Pass("docker compose %s finished", action)
	}
	return nil
}

func runStackPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	out := ui.NewConsole(cmd.OutOrStdout())

	cli, err := newDockerClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	if err := cli.CheckDaemon(cmd.Context()); err != nil {
		return err
	}
	for _, img := range cfg.Stack.Images.List() {
		if !force {
			present, err := cli.CheckImage(cmd.Context(), img)
			if err != nil {
				return err
			}
			if present {
				out.Info("%s already present", img)
				continue
			}
		}
		out.Info("Pulling %s", img)
		if err := cli.PullImage(cmd.Context(), img); err != nil {
			return err
		}
		out.Pass("Pulled %s", img)
	}
	return nil
}

func runStackStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := ui.NewConsole(cmd.OutOrStdout())

	status := &stack.Status{
		Project: cfg.Stack.Project,
		Target:  rpc.NewClient(cfg.Target.URL, cfg.Target.HealthPath, cfg.Target.Timeout),
	}
	var extra []stack.Check

	if cli, err := newDockerClient(); err != nil {
		extra = append(extra, stack.Check{Name: "docker", Detail: err.Error()})
	} else {
		defer cli.Close()
		status.Docker = cli
	}
	if cfg.Stack.RedisAddr != "" {
		r := newRedis(cfg.Stack.RedisAddr)
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}
		status.Redis = r
	}
	if cfg.Stack.PrometheusURL != "" {
		prom, err := newPrometheus(cfg.Stack.PrometheusURL)
		if err != nil {
			extra = append(extra, stack.Check{Name: "prometheus", Detail: err.Error()})
		} else {
			status.Prometheus = prom
		}
	}

	checks := append(extra, status.Run(cmd.Context())...)
	out.Section(fmt.Sprintf("Stack %s", cfg.Stack.Project))
	printChecks(cmd.OutOrStdout(), checks)

	if !stack.Healthy(checks) {
		failed := 0
		for _, c := range checks {
			if !c.OK {
				failed++
			}
		}
		return fmt.Errorf("stack is unhealthy: %d of %d checks failed", failed, len(checks))
	}
	out.Pass("All %d checks passed", len(checks))
	return nil
}
