package main

import (
	"lineaops/internal/probe"
	"lineaops/internal/rpc"
	"lineaops/internal/ui"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run only the connectivity check",
	Long: `Checks the load balancer health endpoint, then asks the node for its latest block
number over JSON-RPC (and over WebSocket when --ws-url is set). Only a failed JSON-RPC
check is an error.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := ui.NewConsole(cmd.OutOrStdout())
	out.Section("Connectivity check")
	client := rpc.NewClient(cfg.Target.URL, cfg.Target.HealthPath, cfg.Target.Timeout)
	_, err = probe.New(client, cfg.Target.WSURL, cfg.Target.Timeout, out).Check(cmd.Context())
	return err
}
