// Package notify announces completed benchmark runs on chat channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lineaops/internal/benchmark"
	"lineaops/internal/config"
	"lineaops/internal/telemetry"
)

// Sender delivers one plain-text message.
type Sender interface {
	Name() string
	Send(ctx context.Context, message string) error
}

// Manager fans a run summary out to every configured sender.
type Manager struct {
	senders []Sender
}

// NewManager builds the senders enabled in cfg. A provider that is enabled but lacks
// credentials is skipped with a warning.
func NewManager(cfg config.NotifyConfig) *Manager {
	m := &Manager{}
	if cfg.SlackEnabled {
		switch {
		case cfg.SlackToken != "":
			m.senders = append(m.senders, NewSlackBot(cfg.SlackToken, cfg.SlackChannel))
		case cfg.SlackWebhookURL != "":
			m.senders = append(m.senders, NewSlackWebhook(cfg.SlackWebhookURL))
		default:
			telemetry.LogWarn("SLACK_BOT_USER_TOKEN not set, slack notifications disabled")
		}
	}
	if cfg.DiscordEnabled {
		if cfg.DiscordWebhookURL != "" {
			m.senders = append(m.senders, NewDiscordWebhook(cfg.DiscordWebhookURL))
		} else {
			telemetry.LogWarn("discord webhook URL not set, discord notifications disabled")
		}
	}
	return m
}

// Enabled reports whether any sender is configured.
func (m *Manager) Enabled() bool { return len(m.senders) > 0 }

// NotifyRun sends the run summary to every sender and joins their errors.
func (m *Manager) NotifyRun(ctx context.Context, run benchmark.Run) error {
	message := Message(run)
	var errs []error
	for _, s := range m.senders {
		if err := s.Send(ctx, message); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		telemetry.LogDebug("notification sent", "provider", s.Name(), "run", run.ID)
	}
	return errors.Join(errs...)
}

// Message renders a short run summary.
func Message(run benchmark.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Benchmark %s against %s finished", run.ID, run.Target)
	if run.Block != "" {
		fmt.Fprintf(&b, " (block %s)", run.Block)
	}
	b.WriteString("\n")

	if rate, ok := run.WorstSuccessRate(); ok {
		best := run.Loads[0]
		for _, l := range run.Loads {
			if l.RequestsPerSecond > best.RequestsPerSecond {
				best = l
			}
		}
		fmt.Fprintf(&b, "Levels: %d, peak %.2f req/s at %d clients, worst success rate %.2f%%\n",
			len(run.Loads), best.RequestsPerSecond, best.Concurrency, rate)
	} else {
		b.WriteString("Levels: none completed\n")
	}

	if s := run.Sustained; s != nil {
		if rate, ok := s.ErrorRate(); ok {
			fmt.Fprintf(&b, "Sustained: %ds, %.2f req/s, %.2f%% errors\n", s.ElapsedSeconds(), s.RequestsPerSecond(), rate)
		} else {
			fmt.Fprintf(&b, "Sustained: %ds, error rate undefined\n", s.ElapsedSeconds())
		}
	}
	if c := run.Cache; c != nil {
		fmt.Fprintf(&b, "Cache probe: %.2f ms avg, %.2f req/s\n", c.AvgMs(), c.RequestsPerSecond())
	}
	return strings.TrimRight(b.String(), "\n")
}
