package loadgen

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lineaops/internal/telemetry"
)

var (
	execCommand = exec.CommandContext
	lookPath    = exec.LookPath
)

var (
	completeRegex = regexp.MustCompile(`^Complete requests:\s+(\d+)`)
	failedRegex   = regexp.MustCompile(`^Failed requests:\s+(\d+)`)
	non2xxRegex   = regexp.MustCompile(`^Non-2xx responses:\s+(\d+)`)
	takenRegex    = regexp.MustCompile(`^Time taken for tests:\s+([\d.]+) seconds`)
	rpsRegex      = regexp.MustCompile(`^Requests per second:\s+([\d.]+)`)
	// The first "Time per request" line is the per-client mean; the second is across all clients.
	meanRegex = regexp.MustCompile(`^Time per request:\s+([\d.]+) \[ms\] \(mean\)`)
)

// ApacheBench runs Apache Bench as one blocking subprocess per burst.
type ApacheBench struct {
	Binary         string
	InstallMissing bool
	InstallCommand string
}

func (a *ApacheBench) Name() string { return "ab" }

// EnsureAvailable looks the binary up on PATH, runs the install command once when allowed,
// and returns ErrToolMissing if it is still not found.
func (a *ApacheBench) EnsureAvailable(ctx context.Context) error {
	if _, err := lookPath(a.Binary); err == nil {
		return nil
	}
	if !a.InstallMissing || strings.TrimSpace(a.InstallCommand) == "" {
		return fmt.Errorf("%w: %s not found in PATH", ErrToolMissing, a.Binary)
	}

	telemetry.LogInfo("installing load generation tool", "command", a.InstallCommand)
	cmd := execCommand(ctx, "sh", "-c", a.InstallCommand)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: install command failed: %v\nOutput:\n%s", ErrToolMissing, err, out)
	}
	if _, err := lookPath(a.Binary); err != nil {
		return fmt.Errorf("%w: %s still not found after install", ErrToolMissing, a.Binary)
	}
	return nil
}

// Generate runs ab -n N -c C against the burst URL and parses its summary.
func (a *ApacheBench) Generate(ctx context.Context, b Burst) (Summary, []byte, error) {
	payload, err := os.CreateTemp("", "lineaops-payload-*.json")
	if err != nil {
		return Summary{}, nil, fmt.Errorf("failed to create payload file: %w", err)
	}
	defer os.Remove(payload.Name())
	if _, err := payload.Write(b.Payload); err != nil {
		payload.Close()
		return Summary{}, nil, fmt.Errorf("failed to write payload file: %w", err)
	}
	if err := payload.Close(); err != nil {
		return Summary{}, nil, fmt.Errorf("failed to write payload file: %w", err)
	}

	args := abArgs(b, payload.Name())
	telemetry.LogDebug("running ab", "args", strings.Join(args, " "))

	cmd := execCommand(ctx, a.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Summary{}, stdout.Bytes(), fmt.Errorf("%w: %s exited: %v\nOutput:\n%s", ErrToolFailed, a.Binary, err, stderr.String())
	}

	sum, err := ParseApacheBench(stdout.String())
	if err != nil {
		return Summary{}, stdout.Bytes(), fmt.Errorf("%w: %w", ErrToolFailed, err)
	}
	return sum, stdout.Bytes(), nil
}

func abArgs(b Burst, payloadPath string) []string {
	contentType := b.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	args := []string{
		"-n", strconv.Itoa(b.Requests),
		"-c", strconv.Itoa(b.Concurrency),
	}
	if b.Timeout > 0 {
		args = append(args, "-s", strconv.Itoa(int(math.Ceil(b.Timeout.Seconds()))))
	}
	args = append(args, "-T", contentType, "-p", payloadPath, abURL(b.URL))
	return args
}

// abURL adds the trailing slash ab insists on when the URL has no path.
func abURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path != "" {
		return raw
	}
	u.Path = "/"
	return u.String()
}

// ParseApacheBench extracts the summary from ab's text report.
func ParseApacheBench(output string) (Summary, error) {
	var sum Summary
	var sawComplete, sawMean bool

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := completeRegex.FindStringSubmatch(line); m != nil {
			sum.Complete, _ = strconv.Atoi(m[1])
			sawComplete = true
		} else if m := failedRegex.FindStringSubmatch(line); m != nil {
			sum.Failed, _ = strconv.Atoi(m[1])
		} else if m := non2xxRegex.FindStringSubmatch(line); m != nil {
			sum.Non2xx, _ = strconv.Atoi(m[1])
		} else if m := takenRegex.FindStringSubmatch(line); m != nil {
			if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
				sum.Elapsed = time.Duration(secs * float64(time.Second))
			}
		} else if m := rpsRegex.FindStringSubmatch(line); m != nil {
			sum.RequestsPerSecond, _ = strconv.ParseFloat(m[1], 64)
		} else if m := meanRegex.FindStringSubmatch(line); m != nil && !sawMean {
			sum.MeanLatencyMs, _ = strconv.ParseFloat(m[1], 64)
			sawMean = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Summary{}, fmt.Errorf("failed to read ab output: %w", err)
	}
	if !sawComplete {
		return Summary{}, fmt.Errorf("ab output has no \"Complete requests\" line")
	}
	return sum, nil
}
