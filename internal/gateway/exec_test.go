package gateway

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewExecResponder(t *testing.T) {
	r, err := NewExecResponder("agentd respond --format plain")
	if err != nil {
		t.Fatal(err)
	}
	if r.Command != "agentd" || len(r.Args) != 3 {
		t.Fatalf("unexpected parse: %q %v", r.Command, r.Args)
	}

	if _, err := NewExecResponder("   "); err == nil {
		t.Fatal("expected error for empty command line")
	}
}

func TestExecResponderReadsStdout(t *testing.T) {
	// cat echoes the input text back as the reply; the appended agent id
	// lands in $0.
	r := &ExecResponder{Command: "sh", Args: []string{"-c", "cat"}}

	reply, err := r.Respond(context.Background(), "nova", "what is your status?", "operator")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "what is your status?" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestExecResponderNonZeroExit(t *testing.T) {
	r := &ExecResponder{Command: "false"}

	if _, err := r.Respond(context.Background(), "nova", "hi", "operator"); err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}

func TestExecResponderEmptyReply(t *testing.T) {
	r := &ExecResponder{Command: "true"}

	if _, err := r.Respond(context.Background(), "nova", "hi", "operator"); err == nil {
		t.Fatal("expected error for empty reply")
	}
}

func TestExecResponderTimeout(t *testing.T) {
	r := &ExecResponder{Command: "sh", Args: []string{"-c", "sleep 10"}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Respond(ctx, "nova", "hi", "operator")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
