package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lineaops/internal/benchmark"
	"lineaops/internal/config"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() benchmark.Run {
	run := benchmark.NewRun("http://node.example.com", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	run.Block = "0x1a"
	run.Loads = []benchmark.LoadResult{
		{Concurrency: 10, RequestsPerSecond: 800, SuccessRate: 100},
		{Concurrency: 100, RequestsPerSecond: 1953.12, SuccessRate: 95},
		{Concurrency: 1000, RequestsPerSecond: 900, SuccessRate: 70},
	}
	run.Sustained = &benchmark.SustainedResult{Elapsed: 61 * time.Second, Requests: 549, Errors: 61}
	run.Cache = &benchmark.CacheResult{Requests: 100, Elapsed: 2 * time.Second}
	return *run
}

func TestMessage(t *testing.T) {
	msg := Message(sampleRun())
	assert.Equal(t,
		"Benchmark 20260301T120000.000Z against http://node.example.com finished (block 0x1a)\n"+
			"Levels: 3, peak 1953.12 req/s at 100 clients, worst success rate 70.00%\n"+
			"Sustained: 61s, 9.00 req/s, 10.00% errors\n"+
			"Cache probe: 20.00 ms avg, 50.00 req/s",
		msg)
}

func TestMessage_EmptyRun(t *testing.T) {
	run := benchmark.Run{ID: "r1", Target: "http://localhost", Sustained: &benchmark.SustainedResult{}}
	msg := Message(run)
	assert.Contains(t, msg, "Levels: none completed")
	assert.Contains(t, msg, "error rate undefined")
}

type mockPoster struct {
	channel string
	calls   int
	err     error
}

func (m *mockPoster) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.calls++
	m.channel = channelID
	return channelID, "1700000000.000100", m.err
}

func TestSlackBot_Send(t *testing.T) {
	mock := &mockPoster{}
	bot := &SlackBot{client: mock, channel: "#benchmarks"}

	require.NoError(t, bot.Send(context.Background(), "hello"))
	assert.Equal(t, 1, mock.calls)
	assert.Equal(t, "#benchmarks", mock.channel)

	mock.err = errors.New("channel_not_found")
	assert.ErrorContains(t, bot.Send(context.Background(), "hello"), "channel_not_found")
}

func TestWebhooks(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = nil
		json.Unmarshal(body, &got)
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewSlackWebhook(srv.URL+"/slack").Send(context.Background(), "hi slack"))
	assert.Equal(t, "hi slack", got["text"])

	require.NoError(t, NewDiscordWebhook(srv.URL+"/discord").Send(context.Background(), "hi discord"))
	assert.Equal(t, "hi discord", got["content"])

	err := NewDiscordWebhook(srv.URL+"/fail").Send(context.Background(), "x")
	assert.ErrorContains(t, err, "403")

	err = NewSlackWebhook("").Send(context.Background(), "x")
	assert.ErrorContains(t, err, "not configured")
}

type fakeSender struct {
	name     string
	err      error
	messages []string
}

func (f *fakeSender) Name() string { return f.name }
func (f *fakeSender) Send(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

func TestManager_NotifyRun(t *testing.T) {
	ok := &fakeSender{name: "slack"}
	bad := &fakeSender{name: "discord", err: errors.New("rate limited")}
	m := &Manager{senders: []Sender{ok, bad}}

	err := m.NotifyRun(context.Background(), sampleRun())
	assert.ErrorContains(t, err, "discord: rate limited")
	assert.Len(t, ok.messages, 1)
	assert.Len(t, bad.messages, 1)
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.NotifyConfig
		names []string
	}{
		{name: "disabled", cfg: config.NotifyConfig{SlackToken: "xoxb-1"}},
		{name: "slack without credentials", cfg: config.NotifyConfig{SlackEnabled: true}},
		{name: "slack bot", cfg: config.NotifyConfig{SlackEnabled: true, SlackToken: "xoxb-1", SlackWebhookURL: "http://hook"}, names: []string{"*notify.SlackBot"}},
		{name: "slack webhook", cfg: config.NotifyConfig{SlackEnabled: true, SlackWebhookURL: "http://hook"}, names: []string{"*notify.SlackWebhook"}},
		{name: "discord", cfg: config.NotifyConfig{DiscordEnabled: true, DiscordWebhookURL: "http://hook"}, names: []string{"*notify.DiscordWebhook"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.cfg)
			var names []string
			for _, s := range m.senders {
				names = append(names, typeName(s))
			}
			assert.Equal(t, tt.names, names)
			assert.Equal(t, len(tt.names) > 0, m.Enabled())
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *SlackBot:
		return "*notify.SlackBot"
	case *SlackWebhook:
		return "*notify.SlackWebhook"
	case *DiscordWebhook:
		return "*notify.DiscordWebhook"
	}
	return "unknown"
}
