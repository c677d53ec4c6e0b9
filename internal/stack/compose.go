package stack

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"lineaops/internal/telemetry"
)

var execCommand = exec.CommandContext

// Compose runs docker compose against one project file.
type Compose struct {
	File    string
	Project string
}

func (c *Compose) args(sub ...string) []string {
	args := []string{"compose", "-f", c.File}
	if c.Project != "" {
		args = append(args, "-p", c.Project)
	}
	return append(args, sub...)
}

func (c *Compose) run(ctx context.Context, sub ...string) (string, error) {
	args := c.args(sub...)
	telemetry.LogDebug("running docker", "args", strings.Join(args, " "))

	cmd := execCommand(ctx, "docker", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("docker compose %s failed: %w\nOutput:\n%s", sub[0], err, out.String())
	}
	return out.String(), nil
}

// Up starts the stack detached.
func (c *Compose) Up(ctx context.Context) (string, error) {
	return c.run(ctx, "up", "-d")
}

// Down stops and removes the stack's containers.
func (c *Compose) Down(ctx context.Context) (string, error) {
	return c.run(ctx, "down")
}

// Ps lists the stack's containers.
func (c *Compose) Ps(ctx context.Context) (string, error) {
	return c.run(ctx, "ps")
}
