package loadgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abSample = `This is ApacheBench, Version 2.3 <$Revision: 1903618 $>
Copyright 1996 Adam Twiss, Zeus Technology Ltd, http://www.zeustech.net/
Licensed to The Apache Software Foundation, http://www.apache.org/

Benchmarking localhost (be patient)


Server Software:        nginx/1.27.0
Server Hostname:        localhost
Server Port:            80

Document Path:          /
Document Length:        40 bytes

Concurrency Level:      100
Time taken for tests:   0.512 seconds
Complete requests:      1000
Failed requests:        50
   (Connect: 0, Receive: 0, Length: 50, Exceptions: 0)
Non-2xx responses:      12
Total transferred:      187000 bytes
Total body sent:        226000
HTML transferred:       40000 bytes
Requests per second:    1953.12 [#/sec] (mean)
Time per request:       51.200 [ms] (mean)
Time per request:       0.512 [ms] (mean, across all concurrent requests)
Transfer rate:          356.67 [Kbytes/sec] received
`

func TestParseApacheBench(t *testing.T) {
	sum, err := ParseApacheBench(abSample)
	require.NoError(t, err)

	assert.Equal(t, 1000, sum.Complete)
	assert.Equal(t, 50, sum.Failed)
	assert.Equal(t, 12, sum.Non2xx)
	assert.Equal(t, 512*time.Millisecond, sum.Elapsed)
	assert.Equal(t, 1953.12, sum.RequestsPerSecond)
	assert.Equal(t, 51.2, sum.MeanLatencyMs)
}

func TestParseApacheBench_MissingComplete(t *testing.T) {
	_, err := ParseApacheBench("apr_socket_recv: Connection refused (111)\n")
	assert.ErrorContains(t, err, "Complete requests")
}

func TestABArgs(t *testing.T) {
	b := Burst{URL: "http://localhost", Concurrency: 100, Requests: 1000, Timeout: 10 * time.Second}
	assert.Equal(t,
		[]string{"-n", "1000", "-c", "100", "-s", "10", "-T", "application/json", "-p", "/tmp/p.json", "http://localhost/"},
		abArgs(b, "/tmp/p.json"))

	b = Burst{URL: "http://node:8545/rpc", Concurrency: 1, Requests: 10, ContentType: "text/plain"}
	assert.Equal(t,
		[]string{"-n", "10", "-c", "1", "-T", "text/plain", "-p", "p", "http://node:8545/rpc"},
		abArgs(b, "p"))
}

func fakeExecCommand(env ...string) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestABHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		cmd.Env = append(cmd.Env, env...)
		return cmd
	}
}

func TestApacheBench_Generate(t *testing.T) {
	origExec := execCommand
	defer func() { execCommand = origExec }()

	t.Run("success", func(t *testing.T) {
		execCommand = fakeExecCommand()
		ab := &ApacheBench{Binary: "ab"}

		sum, raw, err := ab.Generate(context.Background(), Burst{
			URL:         "http://localhost",
			Concurrency: 100,
			Requests:    1000,
			Payload:     []byte(`{"jsonrpc":"2.0"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, 1000, sum.Complete)
		assert.Equal(t, 50, sum.Failed)
		assert.Contains(t, string(raw), "Concurrency Level:      100")
		assert.Contains(t, string(raw), `payload {"jsonrpc":"2.0"}`)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		execCommand = fakeExecCommand("MOCK_AB_EXIT=22")
		ab := &ApacheBench{Binary: "ab"}

		_, _, err := ab.Generate(context.Background(), Burst{URL: "http://localhost", Concurrency: 1, Requests: 10})
		assert.ErrorIs(t, err, ErrToolFailed)
		assert.ErrorContains(t, err, "socket: Too many open files")
	})

	t.Run("unparseable output", func(t *testing.T) {
		execCommand = fakeExecCommand("MOCK_AB_GARBAGE=1")
		ab := &ApacheBench{Binary: "ab"}

		_, _, err := ab.Generate(context.Background(), Burst{URL: "http://localhost", Concurrency: 1, Requests: 10})
		assert.ErrorIs(t, err, ErrToolFailed)
	})
}

func TestApacheBench_EnsureAvailable(t *testing.T) {
	origExec, origLook := execCommand, lookPath
	defer func() { execCommand, lookPath = origExec, origLook }()

	t.Run("on path", func(t *testing.T) {
		lookPath = func(string) (string, error) { return "/usr/bin/ab", nil }
		assert.NoError(t, (&ApacheBench{Binary: "ab"}).EnsureAvailable(context.Background()))
	})

	t.Run("missing without install", func(t *testing.T) {
		lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
		err := (&ApacheBench{Binary: "ab"}).EnsureAvailable(context.Background())
		assert.ErrorIs(t, err, ErrToolMissing)
	})

	t.Run("installed on demand", func(t *testing.T) {
		calls := 0
		lookPath = func(string) (string, error) {
			calls++
			if calls == 1 {
				return "", exec.ErrNotFound
			}
			return "/usr/bin/ab", nil
		}
		execCommand = fakeExecCommand()
		ab := &ApacheBench{Binary: "ab", InstallMissing: true, InstallCommand: "apt-get install -y apache2-utils"}
		assert.NoError(t, ab.EnsureAvailable(context.Background()))
		assert.Equal(t, 2, calls)
	})

	t.Run("install does not help", func(t *testing.T) {
		lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
		execCommand = fakeExecCommand()
		ab := &ApacheBench{Binary: "ab", InstallMissing: true, InstallCommand: "true"}
		err := ab.EnsureAvailable(context.Background())
		assert.True(t, errors.Is(err, ErrToolMissing))
		assert.ErrorContains(t, err, "still not found")
	})
}

func TestABHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	name, args := args[1], args[2:]

	if name == "sh" {
		// install command
		return
	}

	if code := os.Getenv("MOCK_AB_EXIT"); code != "" {
		fmt.Fprintln(os.Stderr, "socket: Too many open files (24)")
		os.Exit(22)
	}
	if os.Getenv("MOCK_AB_GARBAGE") == "1" {
		fmt.Println("nothing useful here")
		return
	}

	var concurrency, payloadPath string
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-c":
			concurrency = args[i+1]
		case "-p":
			payloadPath = args[i+1]
		}
	}
	payload, _ := os.ReadFile(payloadPath)

	fmt.Print(strings.Replace(abSample, "Concurrency Level:      100", "Concurrency Level:      "+concurrency, 1))
	fmt.Printf("payload %s\n", payload)
}
