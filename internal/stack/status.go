package stack

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/redis/go-redis/v9"

	"lineaops/internal/docker"
	"lineaops/internal/probe"
	"lineaops/internal/telemetry"
)

// DockerInspector is the part of the docker client the status check needs.
type DockerInspector interface {
	CheckDaemon(ctx context.Context) error
	ProjectContainers(ctx context.Context, project string) ([]docker.Container, error)
	ServerVersion(ctx context.Context) (string, error)
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
	DBSize(ctx context.Context) *redis.IntCmd
}

// PromQuerier is satisfied by promv1.API.
type PromQuerier interface {
	Query(ctx context.Context, query string, ts time.Time, opts ...promv1.Option) (model.Value, promv1.Warnings, error)
}

// Check is one line of the status report.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Status inspects every component of a running deployment. Nil components are skipped.
type Status struct {
	Docker     DockerInspector
	Project    string
	Redis      RedisPinger
	Prometheus PromQuerier
	Target     probe.Target
	Now        func() time.Time
}

// NewRedis connects to the cache behind nginx.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewPrometheus creates a query client for the Prometheus server at addr.
func NewPrometheus(addr string) (promv1.API, error) {
	client, err := api.NewClient(api.Config{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	return promv1.NewAPI(client), nil
}

// Run performs all checks. It never fails; failures are reported as checks.
func (s *Status) Run(ctx context.Context) []Check {
	var checks []Check
	if s.Docker != nil {
		checks = append(checks, s.dockerChecks(ctx)...)
	}
	if s.Redis != nil {
		checks = append(checks, s.redisCheck(ctx))
	}
	if s.Prometheus != nil {
		checks = append(checks, s.prometheusChecks(ctx)...)
	}
	if s.Target != nil {
		checks = append(checks, s.targetCheck(ctx))
	}
	return checks
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}

func (s *Status) dockerChecks(ctx context.Context) []Check {
	if err := s.Docker.CheckDaemon(ctx); err != nil {
		return []Check{{Name: "docker", Detail: err.Error()}}
	}
	detail := "daemon reachable"
	if version, err := s.Docker.ServerVersion(ctx); err == nil && version != "" {
		detail = fmt.Sprintf("daemon reachable (v%s)", version)
	}
	checks := []Check{{Name: "docker", OK: true, Detail: detail}}

	containers, err := s.Docker.ProjectContainers(ctx, s.Project)
	if err != nil {
		return append(checks, Check{Name: "containers", Detail: err.Error()})
	}
	if len(containers) == 0 {
		return append(checks, Check{Name: "containers", Detail: fmt.Sprintf("no containers for project %q", s.Project)})
	}
	for _, c := range containers {
		name := c.Service
		if name == "" {
			name = c.Name
		}
		checks = append(checks, Check{Name: "container " + name, OK: c.Running(), Detail: c.Status})
	}
	return checks
}

func (s *Status) redisCheck(ctx context.Context) Check {
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return Check{Name: "redis", Detail: err.Error()}
	}
	keys, err := s.Redis.DBSize(ctx).Result()
	if err != nil {
		telemetry.LogWarn("redis dbsize failed", "error", err)
		return Check{Name: "redis", OK: true, Detail: "PONG"}
	}
	return Check{Name: "redis", OK: true, Detail: fmt.Sprintf("PONG, %d cached keys", keys)}
}

// prometheusChecks reports every scrape target's `up` series.
func (s *Status) prometheusChecks(ctx context.Context) []Check {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	value, warnings, err := s.Prometheus.Query(ctx, "up", now())
	if err != nil {
		return []Check{{Name: "prometheus", Detail: err.Error()}}
	}
	for _, w := range warnings {
		telemetry.LogWarn("prometheus query warning", "warning", w)
	}

	vector, ok := value.(model.Vector)
	if !ok {
		return []Check{{Name: "prometheus", Detail: fmt.Sprintf("unexpected result type %s", value.Type())}}
	}
	checks := []Check{{Name: "prometheus", OK: true, Detail: fmt.Sprintf("%d scrape targets", len(vector))}}

	sort.Slice(vector, func(i, j int) bool {
		return vector[i].Metric.String() < vector[j].Metric.String()
	})
	for _, sample := range vector {
		job := string(sample.Metric["job"])
		instance := string(sample.Metric["instance"])
		up := sample.Value == 1
		detail := "down"
		if up {
			detail = "up"
		}
		checks = append(checks, Check{
			Name:   strings.TrimSpace("scrape " + job + " " + instance),
			OK:     up,
			Detail: detail,
		})
	}
	return checks
}

func (s *Status) targetCheck(ctx context.Context) Check {
	body, err := s.Target.Health(ctx)
	if err != nil {
		return Check{Name: "endpoint", Detail: err.Error()}
	}
	if body != probe.ExpectedHealthBody {
		return Check{Name: "endpoint", Detail: fmt.Sprintf("unexpected health body %q", body)}
	}
	block, err := s.Target.BlockNumber(ctx)
	if err != nil {
		return Check{Name: "endpoint", Detail: err.Error()}
	}
	return Check{Name: "endpoint", OK: true, Detail: "block " + block}
}
