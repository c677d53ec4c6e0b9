package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration values and reports every violation at once.
func Validate(cfg Config) error {
	var errors []string

	if err := validateURL(cfg.Target.URL, "http", "https"); err != nil {
		errors = append(errors, fmt.Sprintf("target.url %v", err))
	}
	if cfg.Target.WSURL != "" {
		if err := validateURL(cfg.Target.WSURL, "ws", "wss"); err != nil {
			errors = append(errors, fmt.Sprintf("target.ws_url %v", err))
		}
	}
	if cfg.Target.Timeout <= 0 {
		errors = append(errors, fmt.Sprintf("target.timeout must be positive, got: %v", cfg.Target.Timeout))
	}

	switch cfg.Load.Tool {
	case "ab", "native":
	default:
		errors = append(errors, fmt.Sprintf("load.tool must be one of ab, native, got: %q", cfg.Load.Tool))
	}
	if len(cfg.Load.Levels) == 0 {
		errors = append(errors, "load.levels must list at least one concurrency level")
	}
	seen := make(map[int]bool, len(cfg.Load.Levels))
	for _, level := range cfg.Load.Levels {
		if level <= 0 {
			errors = append(errors, fmt.Sprintf("load.levels must be positive, got: %d", level))
		}
		if seen[level] {
			errors = append(errors, fmt.Sprintf("load.levels must not repeat a level, got duplicate: %d", level))
		}
		seen[level] = true
	}
	if cfg.Load.RequestsPerClient <= 0 {
		errors = append(errors, fmt.Sprintf("load.requests_per_client must be positive, got: %d", cfg.Load.RequestsPerClient))
	}
	if cfg.Load.Cooldown < 0 {
		errors = append(errors, fmt.Sprintf("load.cooldown must not be negative, got: %v", cfg.Load.Cooldown))
	}

	if cfg.Sustained.Duration <= 0 {
		errors = append(errors, fmt.Sprintf("sustained.duration must be positive, got: %v", cfg.Sustained.Duration))
	}
	if cfg.Sustained.Delay < 0 {
		errors = append(errors, fmt.Sprintf("sustained.delay must not be negative, got: %v", cfg.Sustained.Delay))
	}
	if cfg.Cache.Requests <= 0 {
		errors = append(errors, fmt.Sprintf("cache.requests must be positive, got: %d", cfg.Cache.Requests))
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		errors = append(errors, "output.dir must not be empty")
	}
	if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
		errors = append(errors, fmt.Sprintf("metrics.port must be between 0 and 65535, got: %d", cfg.Metrics.Port))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("must include a host, got: %q", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("must use scheme %s, got: %q", strings.Join(schemes, " or "), u.Scheme)
}
