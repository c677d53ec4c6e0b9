package config

import "time"

// Config is the run-scoped configuration, built once at startup and handed to every stage.
type Config struct {
	Target    TargetConfig
	Load      LoadConfig
	Sustained SustainedConfig
	Cache     CacheConfig
	Output    OutputConfig
	History   HistoryConfig
	Metrics   MetricsConfig
	Notify    NotifyConfig
	Stack     StackConfig
	Verbose   bool
	LogFile   string
}

// TargetConfig describes the JSON-RPC endpoint under test.
type TargetConfig struct {
	URL        string
	WSURL      string
	HealthPath string
	Timeout    time.Duration
}

// LoadConfig drives the concurrency sweep.
type LoadConfig struct {
	Tool              string
	Levels            []int
	RequestsPerClient int
	Cooldown          time.Duration
	InstallMissing    bool
	InstallCommand    string
}

type SustainedConfig struct {
	Duration time.Duration
	Delay    time.Duration
}

type CacheConfig struct {
	Requests int
}

type OutputConfig struct {
	Dir string
}

// HistoryConfig enables the sqlite run history when Path is non-empty.
type HistoryConfig struct {
	Path string
}

// MetricsConfig exposes the run's prometheus registry on Port while a benchmark runs (0 disables).
type MetricsConfig struct {
	Port int
}

// NotifyConfig selects where a finished run is announced. The bot token wins over the
// Slack webhook when both are set.
type NotifyConfig struct {
	SlackEnabled      bool
	SlackChannel      string
	SlackToken        string
	SlackWebhookURL   string
	DiscordEnabled    bool
	DiscordWebhookURL string
}

// StackConfig covers the docker compose deployment that lineaops configures and inspects.
type StackConfig struct {
	ComposeFile   string
	Project       string
	TemplatesDir  string
	DeployDir     string
	Domain        string
	PublicIP      string
	IPLookupURL   string
	RedisAddr     string
	PrometheusURL string
	Images        ImagesConfig
}

type ImagesConfig struct {
	Node       string
	Nginx      string
	Redis      string
	Prometheus string
}

// List returns the images in the order they are pulled.
func (i ImagesConfig) List() []string {
	var out []string
	for _, img := range []string{i.Node, i.Nginx, i.Redis, i.Prometheus} {
		if img != "" {
			out = append(out, img)
		}
	}
	return out
}
