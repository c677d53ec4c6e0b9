package stack

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeExecCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestComposeHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	return cmd
}

func TestComposeHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if os.Getenv("MOCK_COMPOSE_FAIL") == "1" {
		fmt.Fprint(os.Stderr, "no such service")
		os.Exit(1)
	}
	fmt.Print(strings.Join(args, " "))
}

func TestCompose(t *testing.T) {
	execCommand = fakeExecCommand
	defer func() { execCommand = exec.CommandContext }()

	c := &Compose{File: "deploy/docker-compose.yml", Project: "linea"}

	out, err := c.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docker compose -f deploy/docker-compose.yml -p linea up -d", out)

	out, err = c.Down(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docker compose -f deploy/docker-compose.yml -p linea down", out)

	noProject := &Compose{File: "c.yml"}
	out, err = noProject.Ps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docker compose -f c.yml ps", out)
}

func TestCompose_Failure(t *testing.T) {
	execCommand = fakeExecCommand
	defer func() { execCommand = exec.CommandContext }()
	t.Setenv("MOCK_COMPOSE_FAIL", "1")

	c := &Compose{File: "c.yml"}
	_, err := c.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker compose up failed")
	assert.Contains(t, err.Error(), "no such service")
}
