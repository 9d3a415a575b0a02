package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/FerryF19999/chatinterface/internal/broadcast"
	"github.com/FerryF19999/chatinterface/internal/models"
)

// recorder captures emitted events in order.
type recorder struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (r *recorder) Emit(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, broadcast.Event{Name: event, Data: payload})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func testRoster() []models.Participant {
	return []models.Participant{
		{ID: "alice", Name: "Alice", Status: models.StatusOffline, Role: models.RoleAgent},
		{ID: "bob", Name: "Bob", Status: models.StatusOffline, Role: models.RoleOwner, CanCallAgents: true},
	}
}

func newTestStore(t *testing.T, messageCap, activityCap int) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := New(testRoster(), rec, messageCap, activityCap)
	if err != nil {
		t.Fatal(err)
	}
	return s, rec
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	roster := testRoster()
	roster = append(roster, models.Participant{ID: "alice", Role: models.RoleAgent})
	if _, err := New(roster, nil, 0, 0); err == nil {
		t.Fatal("expected error for duplicate participant id")
	}
}

func TestPostMessageIDsUniqueAndOrdered(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	seen := make(map[string]bool)
	var ids []string
	for i := 0; i < 50; i++ {
		msg, err := s.PostMessage("alice", "", "hello", models.KindText)
		if err != nil {
			t.Fatal(err)
		}
		if seen[msg.ID] {
			t.Fatalf("duplicate message id %s", msg.ID)
		}
		seen[msg.ID] = true
		ids = append(ids, msg.ID)
	}

	got := s.Messages(0, "")
	if len(got) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(got))
	}
	for i, msg := range got {
		if msg.ID != ids[i] {
			t.Fatalf("message %d out of order: got %s, want %s", i, msg.ID, ids[i])
		}
		if i > 0 && got[i].ID <= got[i-1].ID {
			t.Fatalf("ids not increasing at %d: %s <= %s", i, got[i].ID, got[i-1].ID)
		}
	}
}

func TestPostMessageEmptyContent(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	for _, content := range []string{"", "   ", "\t\n"} {
		if _, err := s.PostMessage("alice", "", content, models.KindText); !errors.Is(err, ErrEmptyContent) {
			t.Fatalf("content %q: expected ErrEmptyContent, got %v", content, err)
		}
	}
	if n := len(s.Activities(0)); n != 0 {
		t.Fatalf("rejected message produced %d activity entries", n)
	}
}

func TestPostMessageInvalidSender(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	if _, err := s.PostMessage("mallory", "", "hi", models.KindText); !errors.Is(err, ErrInvalidSender) {
		t.Fatalf("expected ErrInvalidSender, got %v", err)
	}
	if _, err := s.PostMessage("alice", "mallory", "hi", models.KindText); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown recipient, got %v", err)
	}
}

func TestPostMessageActivityCorrelation(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	msg, err := s.PostMessage("alice", "bob", "hi bob", models.KindDirect)
	if err != nil {
		t.Fatal(err)
	}

	activities := s.Activities(0)
	if len(activities) != 1 {
		t.Fatalf("expected exactly one activity, got %d", len(activities))
	}
	a := activities[0]
	if a.Type != models.ActivityMessage {
		t.Fatalf("expected message activity, got %s", a.Type)
	}
	if a.Metadata[models.MetaMessageID] != msg.ID {
		t.Fatalf("activity metadata references %q, want %q", a.Metadata[models.MetaMessageID], msg.ID)
	}
	if a.ActorID != "alice" {
		t.Fatalf("activity attributed to %q, want alice", a.ActorID)
	}
}

func TestMessageCapEvictsOldestFirst(t *testing.T) {
	s, _ := newTestStore(t, 5, 0)

	var ids []string
	for i := 0; i < 8; i++ {
		msg, err := s.PostMessage("alice", "", "hello", models.KindText)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, msg.ID)
	}

	got := s.Messages(0, "")
	if len(got) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(got))
	}
	for i, msg := range got {
		if msg.ID != ids[3+i] {
			t.Fatalf("expected suffix of send order after eviction, got %s at %d", msg.ID, i)
		}
	}
}

func TestActivityCapKeepsNewest(t *testing.T) {
	s, _ := newTestStore(t, 0, 3)

	var lastMsg *models.Message
	for i := 0; i < 6; i++ {
		var err error
		lastMsg, err = s.PostMessage("alice", "", "hello", models.KindText)
		if err != nil {
			t.Fatal(err)
		}
	}

	activities := s.Activities(0)
	if len(activities) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(activities))
	}
	if activities[0].Metadata[models.MetaMessageID] != lastMsg.ID {
		t.Fatal("newest activity should correlate with the last message")
	}
	for i := 1; i < len(activities); i++ {
		if activities[i].ID >= activities[i-1].ID {
			t.Fatal("activities not newest-first")
		}
	}
}

func TestSetStatusOfflineClearsTask(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	task := "indexing the archive"
	if _, err := s.SetStatus("alice", models.StatusOnline, &task); err != nil {
		t.Fatal(err)
	}

	p, err := s.SetStatus("alice", models.StatusOffline, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.CurrentTask != "" {
		t.Fatalf("offline participant kept task %q", p.CurrentTask)
	}
}

func TestSetStatusTaskActivity(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	// Status-only change records nothing.
	if _, err := s.SetStatus("alice", models.StatusAway, nil); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Activities(0)); n != 0 {
		t.Fatalf("status-only change produced %d activities", n)
	}

	task := "triage"
	if _, err := s.SetStatus("alice", models.StatusBusy, &task); err != nil {
		t.Fatal(err)
	}
	activities := s.Activities(0)
	if len(activities) != 1 || activities[0].Type != models.ActivityTask {
		t.Fatalf("expected one task activity, got %+v", activities)
	}
}

func TestSetStatusUnknownParticipant(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)
	if _, err := s.SetStatus("nobody", models.StatusOnline, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatusInvalidStatus(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)
	if _, err := s.SetStatus("alice", "sleeping", nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRestoreSkipsTaskActivity(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	task := "tending the garden"
	if _, err := s.SetStatus("alice", models.StatusOnline, &task); err != nil {
		t.Fatal(err)
	}
	busy := "Bob: scan the logs"
	if _, err := s.SetStatus("alice", models.StatusBusy, &busy); err != nil {
		t.Fatal(err)
	}

	p, err := s.Restore("alice", models.StatusOnline, task)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusOnline || p.CurrentTask != task {
		t.Fatalf("restore left alice at %s %q", p.Status, p.CurrentTask)
	}

	var taskActivities int
	for _, a := range s.Activities(0) {
		if a.Type == models.ActivityTask {
			taskActivities++
		}
	}
	if taskActivities != 2 {
		t.Fatalf("expected the two SetStatus task activities only, got %d", taskActivities)
	}
}

func TestRestoreOfflineClearsTask(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)
	p, err := s.Restore("alice", models.StatusOffline, "stale task")
	if err != nil {
		t.Fatal(err)
	}
	if p.CurrentTask != "" {
		t.Fatalf("offline restore kept task %q", p.CurrentTask)
	}
}

func TestRecordLoginLogout(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	p, err := s.RecordLogin("alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusOnline {
		t.Fatalf("expected online after login, got %s", p.Status)
	}

	task := "thinking"
	if _, err := s.SetStatus("alice", "", &task); err != nil {
		t.Fatal(err)
	}

	p, err = s.RecordLogout("alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusOffline || p.CurrentTask != "" {
		t.Fatalf("expected offline with no task after logout, got %s / %q", p.Status, p.CurrentTask)
	}

	activities := s.Activities(0)
	if activities[0].Type != models.ActivityLogout {
		t.Fatalf("newest activity should be logout, got %s", activities[0].Type)
	}
	var foundLogin bool
	for _, a := range activities {
		if a.Type == models.ActivityLogin {
			foundLogin = true
		}
	}
	if !foundLogin {
		t.Fatal("login activity missing")
	}
}

func TestMarkRead(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	msg, err := s.PostMessage("alice", "", "hello", models.KindText)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.MarkRead(msg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Read {
		t.Fatal("message not marked read")
	}
	if got := s.Messages(0, ""); !got[0].Read {
		t.Fatal("read flag not persisted in the log")
	}

	if _, err := s.MarkRead("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMessagesFilter(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	broadcastMsg, _ := s.PostMessage("alice", "", "to everyone", models.KindText)
	toBob, _ := s.PostMessage("alice", "bob", "to bob", models.KindDirect)
	fromBob, _ := s.PostMessage("bob", "alice", "to alice", models.KindDirect)

	got := s.Messages(10, "bob")
	if len(got) != 3 {
		t.Fatalf("bob should see all three messages, got %d", len(got))
	}
	// Append order is stable under filtering.
	wantOrder := []string{broadcastMsg.ID, toBob.ID, fromBob.ID}
	for i, msg := range got {
		if msg.ID != wantOrder[i] {
			t.Fatalf("filtered order wrong at %d", i)
		}
	}
}

func TestBroadcastMessageListing(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	msg, err := s.PostMessage("alice", "", "hello", models.KindText)
	if err != nil {
		t.Fatal(err)
	}

	got := s.Messages(10, "")
	if len(got) != 1 {
		t.Fatalf("expected one message, got %d", len(got))
	}
	if got[0].ID != msg.ID || !got[0].Broadcast() {
		t.Fatalf("expected the broadcast message back, got %+v", got[0])
	}
}

func TestEventOrderingMessageBeforeActivity(t *testing.T) {
	s, rec := newTestStore(t, 0, 0)

	if _, err := s.PostMessage("alice", "", "hello", models.KindText); err != nil {
		t.Fatal(err)
	}

	names := rec.names()
	if len(names) != 2 || names[0] != broadcast.EventMessageNew || names[1] != broadcast.EventActivityNew {
		t.Fatalf("expected [message-new activity-new], got %v", names)
	}
}

func TestRecordActivityDirectWrite(t *testing.T) {
	s, rec := newTestStore(t, 0, 0)

	a, err := s.RecordActivity("bob", models.ActivityCommand, "Bob ran a drill", map[string]string{"detail": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.Metadata["detail"] != "x" {
		t.Fatalf("unexpected activity %+v", a)
	}
	if _, err := s.RecordActivity("ghost", models.ActivityCommand, "boo", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	names := rec.names()
	if names[len(names)-1] != broadcast.EventActivityNew {
		t.Fatalf("expected activity-new emission, got %v", names)
	}
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestStore(t, 0, 0)

	if _, err := s.PostMessage("alice", "", "one", models.KindText); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PostMessage("bob", "", "two", models.KindText); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if len(snap.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(snap.Participants))
	}
	if len(snap.Messages) != 2 || snap.Messages[0].Content != "one" {
		t.Fatalf("unexpected snapshot messages %+v", snap.Messages)
	}
	if len(snap.Activities) != 2 || snap.Activities[0].ActorID != "bob" {
		t.Fatal("snapshot activities should be newest-first")
	}
}
