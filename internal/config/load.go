package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// DefaultLevels is the concurrency sweep used when none is configured.
var DefaultLevels = []int{10, 50, 100, 200, 500, 1000}

// SetDefaults registers every default value with viper.
func SetDefaults() {
	viper.SetDefault("target.url", "http://localhost")
	viper.SetDefault("target.ws_url", "")
	viper.SetDefault("target.health_path", "/health")
	viper.SetDefault("target.timeout", "10s")

	viper.SetDefault("load.tool", "ab")
	viper.SetDefault("load.levels", DefaultLevels)
	viper.SetDefault("load.requests_per_client", 10)
	viper.SetDefault("load.cooldown", "5s")
	viper.SetDefault("load.install_missing", false)
	viper.SetDefault("load.install_command", "apt-get install -y apache2-utils")

	viper.SetDefault("sustained.duration", "60s")
	viper.SetDefault("sustained.delay", "100ms")
	viper.SetDefault("cache.requests", 100)

	viper.SetDefault("output.dir", "./benchmark_results")
	viper.SetDefault("history.path", "")
	viper.SetDefault("metrics.port", 0)

	viper.SetDefault("notifications.slack.enabled", os.Getenv("SLACK_BOT_USER_TOKEN") != "")
	viper.SetDefault("notifications.slack.channel", "#benchmarks")
	viper.SetDefault("notifications.slack.webhook_url", "")
	viper.SetDefault("notifications.discord.enabled", false)
	viper.SetDefault("notifications.discord.webhook_url", "")

	viper.SetDefault("stack.compose_file", "deploy/docker-compose.yml")
	viper.SetDefault("stack.project", "linea")
	viper.SetDefault("stack.templates_dir", "")
	viper.SetDefault("stack.deploy_dir", "deploy")
	viper.SetDefault("stack.domain", "")
	viper.SetDefault("stack.public_ip", "")
	viper.SetDefault("stack.ip_lookup_url", "https://api.ipify.org")
	viper.SetDefault("stack.redis_addr", "localhost:6379")
	viper.SetDefault("stack.prometheus_url", "http://localhost:9090")
	viper.SetDefault("stack.images.node", "consensys/linea-besu:latest")
	viper.SetDefault("stack.images.nginx", "nginx:1.27-alpine")
	viper.SetDefault("stack.images.redis", "redis:7-alpine")
	viper.SetDefault("stack.images.prometheus", "prom/prometheus:latest")

	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
}

// Load initializes the configuration from .env, the config file and environment variables.
// A missing config file is not an error.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("lineaops")
	}

	viper.SetEnvPrefix("LINEAOPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	// The deployment scripts exported plain RPC_URL / WS_URL.
	if os.Getenv("LINEAOPS_TARGET_URL") == "" && os.Getenv("RPC_URL") != "" {
		viper.SetDefault("target.url", os.Getenv("RPC_URL"))
	}
	if os.Getenv("LINEAOPS_TARGET_WS_URL") == "" && os.Getenv("WS_URL") != "" {
		viper.SetDefault("target.ws_url", os.Getenv("WS_URL"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// FromViper builds the Config from the values viper has resolved.
func FromViper() (Config, error) {
	levels, err := parseLevels(viper.Get("load.levels"))
	if err != nil {
		return Config{}, err
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{"target.timeout", "load.cooldown", "sustained.duration", "sustained.delay"} {
		d, err := getDuration(key)
		if err != nil {
			return Config{}, err
		}
		durations[key] = d
	}

	return Config{
		Target: TargetConfig{
			URL:        viper.GetString("target.url"),
			WSURL:      viper.GetString("target.ws_url"),
			HealthPath: viper.GetString("target.health_path"),
			Timeout:    durations["target.timeout"],
		},
		Load: LoadConfig{
			Tool:              strings.ToLower(viper.GetString("load.tool")),
			Levels:            levels,
			RequestsPerClient: viper.GetInt("load.requests_per_client"),
			Cooldown:          durations["load.cooldown"],
			InstallMissing:    viper.GetBool("load.install_missing"),
			InstallCommand:    viper.GetString("load.install_command"),
		},
		Sustained: SustainedConfig{
			Duration: durations["sustained.duration"],
			Delay:    durations["sustained.delay"],
		},
		Cache:   CacheConfig{Requests: viper.GetInt("cache.requests")},
		Output:  OutputConfig{Dir: viper.GetString("output.dir")},
		History: HistoryConfig{Path: viper.GetString("history.path")},
		Metrics: MetricsConfig{Port: viper.GetInt("metrics.port")},
		Notify: NotifyConfig{
			SlackEnabled:      viper.GetBool("notifications.slack.enabled"),
			SlackChannel:      viper.GetString("notifications.slack.channel"),
			SlackToken:        os.Getenv("SLACK_BOT_USER_TOKEN"),
			SlackWebhookURL:   viper.GetString("notifications.slack.webhook_url"),
			DiscordEnabled:    viper.GetBool("notifications.discord.enabled"),
			DiscordWebhookURL: viper.GetString("notifications.discord.webhook_url"),
		},
		Stack: StackConfig{
			ComposeFile:   viper.GetString("stack.compose_file"),
			Project:       viper.GetString("stack.project"),
			TemplatesDir:  viper.GetString("stack.templates_dir"),
			DeployDir:     viper.GetString("stack.deploy_dir"),
			Domain:        viper.GetString("stack.domain"),
			PublicIP:      viper.GetString("stack.public_ip"),
			IPLookupURL:   viper.GetString("stack.ip_lookup_url"),
			RedisAddr:     viper.GetString("stack.redis_addr"),
			PrometheusURL: viper.GetString("stack.prometheus_url"),
			Images: ImagesConfig{
				Node:       viper.GetString("stack.images.node"),
				Nginx:      viper.GetString("stack.images.nginx"),
				Redis:      viper.GetString("stack.images.redis"),
				Prometheus: viper.GetString("stack.images.prometheus"),
			},
		},
		Verbose: viper.GetBool("verbose"),
		LogFile: viper.GetString("log_file"),
	}, nil
}

// getDuration accepts Go duration strings or bare numbers, which are read as seconds.
func getDuration(key string) (time.Duration, error) {
	switch v := viper.Get(key).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case int, int32, int64, float32, float64:
		return time.Duration(cast.ToFloat64(v) * float64(time.Second)), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d, nil
		}
		if f, err := cast.ToFloat64E(v); err == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	default:
		d, err := cast.ToDurationE(v)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid duration %v: %w", key, v, err)
		}
		return d, nil
	}
}

// parseLevels accepts a YAML list or a comma/space separated string (env overrides).
func parseLevels(raw any) ([]int, error) {
	var items []any
	switch v := raw.(type) {
	case nil:
		return append([]int(nil), DefaultLevels...), nil
	case string:
		for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			items = append(items, f)
		}
	case []int:
		return append([]int(nil), v...), nil
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("load.levels: unsupported value %v", raw)
	}

	levels := make([]int, 0, len(items))
	for _, item := range items {
		n, err := cast.ToIntE(item)
		if err != nil {
			return nil, fmt.Errorf("load.levels: invalid concurrency level %v: %w", item, err)
		}
		levels = append(levels, n)
	}
	return levels, nil
}
