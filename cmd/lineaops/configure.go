package main

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"

	"lineaops/internal/stack"
	"lineaops/internal/ui"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Wrappers for survey and the IP lookup to allow mocking in tests
var (
	askOneFunc     = survey.AskOne
	detectPublicIP = stack.DetectPublicIP
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Render the deployment files for this host",
	Long: `Renders docker-compose.yml, nginx.conf, prometheus.yml and .env into the deploy
directory. The public IP comes from --ip, the configuration, or a lookup service; the
domain from --domain or the configuration. Unless --yes is given both are confirmed
interactively.`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().String("domain", "", "Domain name served by nginx")
	configureCmd.Flags().String("ip", "", "Public IP address of this host")
	configureCmd.Flags().Bool("detect-ip", true, "Look up the public IP when none is configured")
	configureCmd.Flags().BoolP("yes", "y", false, "Do not prompt")
	configureCmd.Flags().Bool("save", false, "Store the domain and IP in the config file")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := ui.NewConsole(cmd.OutOrStdout())

	domain, _ := cmd.Flags().GetString("domain")
	ip, _ := cmd.Flags().GetString("ip")
	detect, _ := cmd.Flags().GetBool("detect-ip")
	yes, _ := cmd.Flags().GetBool("yes")
	save, _ := cmd.Flags().GetBool("save")

	if domain == "" {
		domain = cfg.Stack.Domain
	}
	if ip == "" {
		ip = cfg.Stack.PublicIP
	}
	if ip == "" && detect {
		detected, err := detectPublicIP(cmd.Context(), nil, cfg.Stack.IPLookupURL)
		if err != nil {
			out.Warn("Could not detect public IP: %v", err)
		} else {
			out.Info("Detected public IP %s", detected)
			ip = detected
		}
	}

	if !yes {
		if err := askOneFunc(&survey.Input{Message: "Domain name (optional):", Default: domain}, &domain); err != nil {
			return err
		}
		if err := askOneFunc(&survey.Input{Message: "Public IP address:", Default: ip}, &ip,
			survey.WithValidator(validateIP)); err != nil {
			return err
		}
	}
	if err := validateIP(ip); err != nil {
		return err
	}

	cfg.Stack.Domain = domain
	cfg.Stack.PublicIP = ip

	files, err := stack.Render(stack.RenderOptions{
		TemplatesDir: cfg.Stack.TemplatesDir,
		OutDir:       cfg.Stack.DeployDir,
		Vars:         stack.VarsFromConfig(cfg.Stack),
	})
	for _, f := range files {
		out.Pass("Wrote %s", f.Path)
		for _, name := range f.Unresolved {
			out.Warn("%s: ${%s} is not a known variable and was left as is", filepath.Base(f.Path), name)
		}
	}
	if err != nil {
		return err
	}

	if save {
		path := cfgFile
		if path == "" {
			path = "lineaops.yaml"
		}
		viper.Set("stack.domain", domain)
		viper.Set("stack.public_ip", ip)
		if err := viper.WriteConfigAs(path); err != nil {
			return fmt.Errorf("failed to write config to %s: %w", path, err)
		}
		out.Pass("Configuration saved to %s", path)
	}
	out.Info("Start the stack with: lineaops stack up")
	return nil
}

func validateIP(v interface{}) error {
	s, _ := v.(string)
	if s == "" {
		return errors.New("public IP is required")
	}
	if net.ParseIP(s) == nil {
		return fmt.Errorf("%q is not a valid IP address", s)
	}
	return nil
}
