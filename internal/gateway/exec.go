package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecResponder shells out to an external agent backend. The configured
// command is invoked with the agent id appended to its arguments, the input
// text on stdin, and the caller id in the environment. The reply is read
// from stdout.
type ExecResponder struct {
	Command string
	Args    []string
}

// NewExecResponder builds a responder from a shell-style command line, e.g.
// "agentd respond --format plain". The first word is the binary.
func NewExecResponder(commandLine string) (*ExecResponder, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("empty agent command")
	}
	return &ExecResponder{Command: fields[0], Args: fields[1:]}, nil
}

// Respond runs the backend once and returns its trimmed stdout. A non-zero
// exit, a killed process, or blank output is an error; the caller decides
// what the user sees instead.
func (r *ExecResponder) Respond(ctx context.Context, agentID, input, callerID string) (string, error) {
	args := append(append([]string{}, r.Args...), agentID)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = append(cmd.Environ(), "CHAT_CALLER_ID="+callerID)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("agent backend: %w", ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("agent backend: %w: %s", err, detail)
		}
		return "", fmt.Errorf("agent backend: %w", err)
	}

	reply := strings.TrimSpace(stdout.String())
	if reply == "" {
		return "", errors.New("agent backend: empty reply")
	}
	return reply, nil
}
