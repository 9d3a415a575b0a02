package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FerryF19999/chatinterface/internal/gateway"
	"github.com/FerryF19999/chatinterface/internal/models"
	"github.com/FerryF19999/chatinterface/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	roster := []models.Participant{
		{ID: "alice", Name: "Alice", Status: models.StatusOnline, Role: models.RoleAgent},
		{ID: "bob", Name: "Bob", Status: models.StatusOnline, Role: models.RoleOwner, CanCallAgents: true},
	}
	s, err := store.New(roster, nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func staticResponder(reply string, err error) gateway.Responder {
	return gateway.ResponderFunc(func(ctx context.Context, agentID, input, callerID string) (string, error) {
		return reply, err
	})
}

func TestOwnerCallEndToEnd(t *testing.T) {
	s := newTestStore(t)
	d := New(s, staticResponder("All systems go.", nil), time.Second, zerolog.Nop())

	before, err := s.Participant("alice")
	if err != nil {
		t.Fatal(err)
	}

	msgID, err := d.DispatchOwner(context.Background(), "alice", "status?", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if msgID == "" {
		t.Fatal("expected a command message id")
	}
	d.Wait()

	var ownerCalls, responses int
	for _, msg := range s.Messages(0, "") {
		switch msg.Kind {
		case models.KindOwnerCall:
			ownerCalls++
			if msg.ID != msgID || msg.From != "bob" || msg.To != "alice" {
				t.Fatalf("unexpected owner-call message %+v", msg)
			}
		case models.KindAgentResponse:
			responses++
			if msg.From != "alice" || msg.To != "bob" || msg.Content != "All systems go." {
				t.Fatalf("unexpected response message %+v", msg)
			}
		}
	}
	if ownerCalls != 1 || responses != 1 {
		t.Fatalf("expected exactly one owner-call and one response, got %d/%d", ownerCalls, responses)
	}

	after, err := s.Participant("alice")
	if err != nil {
		t.Fatal(err)
	}
	if after.Status != before.Status || after.CurrentTask != before.CurrentTask {
		t.Fatalf("status not restored: %s/%q, want %s/%q",
			after.Status, after.CurrentTask, before.Status, before.CurrentTask)
	}
}

func TestDispatchOwnerForbidden(t *testing.T) {
	s := newTestStore(t)
	d := New(s, staticResponder("ok", nil), time.Second, zerolog.Nop())

	_, err := d.DispatchOwner(context.Background(), "alice", "do it", "alice")
	if !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// A rejected call makes no store mutations at all.
	if n := len(s.Messages(0, "")); n != 0 {
		t.Fatalf("forbidden dispatch recorded %d messages", n)
	}
	if n := len(s.Activities(0)); n != 0 {
		t.Fatalf("forbidden dispatch recorded %d activities", n)
	}
}

func TestDispatchUnknownParticipants(t *testing.T) {
	s := newTestStore(t)
	d := New(s, staticResponder("ok", nil), time.Second, zerolog.Nop())

	if _, err := d.Dispatch(context.Background(), "ghost", "hi", "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown agent: expected ErrNotFound, got %v", err)
	}
	if _, err := d.Dispatch(context.Background(), "alice", "hi", "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown caller: expected ErrNotFound, got %v", err)
	}
	// The owner is not a dispatchable agent.
	if _, err := d.Dispatch(context.Background(), "bob", "hi", "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("owner target: expected ErrNotFound, got %v", err)
	}
}

func TestDispatchFallbackOnFailure(t *testing.T) {
	s := newTestStore(t)
	d := New(s, staticResponder("", errors.New("backend exploded")), time.Second, zerolog.Nop())

	if _, err := d.Dispatch(context.Background(), "alice", "hi", "bob"); err != nil {
		t.Fatal(err)
	}
	d.Wait()

	var response *models.Message
	for _, msg := range s.Messages(0, "") {
		if msg.Kind == models.KindAgentResponse {
			cp := msg
			response = &cp
		}
	}
	if response == nil {
		t.Fatal("failed call produced no response message")
	}
	if response.Content != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", response.Content)
	}

	p, err := s.Participant("alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusOnline {
		t.Fatalf("status not restored after fallback, got %s", p.Status)
	}
}

func TestDispatchTimeoutUsesFallback(t *testing.T) {
	s := newTestStore(t)
	hung := gateway.ResponderFunc(func(ctx context.Context, agentID, input, callerID string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	d := New(s, hung, 50*time.Millisecond, zerolog.Nop())

	if _, err := d.Dispatch(context.Background(), "alice", "hi", "bob"); err != nil {
		t.Fatal(err)
	}
	d.Wait()

	var found bool
	for _, msg := range s.Messages(0, "") {
		if msg.Kind == models.KindAgentResponse && msg.Content == FallbackReply {
			found = true
		}
	}
	if !found {
		t.Fatal("timeout did not settle into the fallback reply")
	}
}

func TestDispatchTransientBusyStatus(t *testing.T) {
	s := newTestStore(t)

	release := make(chan struct{})
	blocking := gateway.ResponderFunc(func(ctx context.Context, agentID, input, callerID string) (string, error) {
		<-release
		return "done", nil
	})
	d := New(s, blocking, time.Second, zerolog.Nop())

	if _, err := d.Dispatch(context.Background(), "alice", "scan the logs", "bob"); err != nil {
		t.Fatal(err)
	}

	p, err := s.Participant("alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusBusy {
		t.Fatalf("expected busy while call outstanding, got %s", p.Status)
	}
	if p.CurrentTask != "Bob: scan the logs" {
		t.Fatalf("unexpected transient task %q", p.CurrentTask)
	}

	close(release)
	d.Wait()

	p, err = s.Participant("alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusOnline || p.CurrentTask != "" {
		t.Fatalf("status not restored, got %s/%q", p.Status, p.CurrentTask)
	}
}

func TestSettleDoesNotRelogPriorTask(t *testing.T) {
	s := newTestStore(t)
	d := New(s, staticResponder("ok", nil), time.Second, zerolog.Nop())

	task := "tending the garden"
	if _, err := s.SetStatus("alice", models.StatusOnline, &task); err != nil {
		t.Fatal(err)
	}

	if _, err := d.Dispatch(context.Background(), "alice", "report", "bob"); err != nil {
		t.Fatal(err)
	}
	d.Wait()

	p, err := s.Participant("alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.CurrentTask != task {
		t.Fatalf("prior task not restored, got %q", p.CurrentTask)
	}

	// One task activity for the original assignment, one for the transient
	// busy task. Restoring the prior task must not log a third.
	var taskActivities int
	for _, a := range s.Activities(0) {
		if a.Type == models.ActivityTask {
			taskActivities++
		}
	}
	if taskActivities != 2 {
		t.Fatalf("expected 2 task activities, got %d", taskActivities)
	}
}

func TestDispatchLogsCommandActivity(t *testing.T) {
	s := newTestStore(t)
	d := New(s, staticResponder("ok", nil), time.Second, zerolog.Nop())

	msgID, err := d.DispatchOwner(context.Background(), "alice", "report", "bob")
	if err != nil {
		t.Fatal(err)
	}
	d.Wait()

	var cmd *models.Activity
	for _, a := range s.Activities(0) {
		if a.Type == models.ActivityCommand {
			cp := a
			cmd = &cp
		}
	}
	if cmd == nil {
		t.Fatal("no command activity recorded")
	}
	if cmd.Metadata[models.MetaMessageID] != msgID {
		t.Fatal("command activity does not reference the command message")
	}
	if cmd.Metadata[models.MetaOwnerCall] != "true" {
		t.Fatal("owner-call flag missing from metadata")
	}
	if cmd.Metadata[models.MetaCommand] != "report" {
		t.Fatal("command text missing from metadata")
	}
}
