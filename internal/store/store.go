// Package store holds the canonical in-memory state: the participant
// roster, the bounded message log, and the bounded activity log. All
// mutations go through the Store's mutator methods so invariants and fan-out
// cannot be bypassed; the whole store is guarded by one mutex since the
// dataset is small and contention is not a concern.
package store

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/FerryF19999/chatinterface/internal/broadcast"
	"github.com/FerryF19999/chatinterface/internal/metrics"
	"github.com/FerryF19999/chatinterface/internal/models"
)

const (
	// DefaultMessageCap bounds the message log (oldest evicted first).
	DefaultMessageCap = 500
	// DefaultActivityCap bounds the activity log (kept newest-first).
	DefaultActivityCap = 100

	// snapshotMessages is how much of the message tail a snapshot carries.
	snapshotMessages = 100
)

// ReadReceipt is the payload of the message-read event.
type ReadReceipt struct {
	ID string `json:"id"`
}

// Store owns the three collections. Mutators apply atomically under one
// lock and never block: the broadcaster contract requires Emit to buffer or
// drop, not wait.
type Store struct {
	mu           sync.Mutex
	participants map[string]*models.Participant
	order        []string // roster order, for stable listings
	messages     []models.Message
	activities   []models.Activity // newest first
	messageCap   int
	activityCap  int
	entropy      *ulid.MonotonicEntropy
	broadcaster  broadcast.Broadcaster
	now          func() time.Time
}

// New seeds a store from the given roster. Duplicate participant ids are
// rejected. Caps of zero or below fall back to the defaults.
func New(roster []models.Participant, b broadcast.Broadcaster, messageCap, activityCap int) (*Store, error) {
	if b == nil {
		b = broadcast.Nop{}
	}
	if messageCap <= 0 {
		messageCap = DefaultMessageCap
	}
	if activityCap <= 0 {
		activityCap = DefaultActivityCap
	}

	s := &Store{
		participants: make(map[string]*models.Participant, len(roster)),
		messageCap:   messageCap,
		activityCap:  activityCap,
		entropy:      ulid.Monotonic(rand.Reader, 0),
		broadcaster:  b,
		now:          time.Now,
	}

	for _, p := range roster {
		if _, dup := s.participants[p.ID]; dup {
			return nil, fmt.Errorf("duplicate participant id %q", p.ID)
		}
		cp := p
		s.participants[p.ID] = &cp
		s.order = append(s.order, p.ID)
	}
	return s, nil
}

// newID generates a ULID. Called under s.mu; monotonic entropy keeps id
// order equal to append order even within one millisecond.
func (s *Store) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

// prependActivity creates an activity at the head of the log, evicting the
// oldest entry beyond the cap. Called under s.mu. The caller emits the
// activity-new event after any event it must trail.
func (s *Store) prependActivity(now time.Time, actorID string, typ models.ActivityType, description string, meta map[string]string) models.Activity {
	a := models.Activity{
		ID:          s.newID(now),
		ActorID:     actorID,
		Type:        typ,
		Description: description,
		Timestamp:   now.UnixMilli(),
		Metadata:    meta,
	}
	s.activities = append([]models.Activity{a}, s.activities...)
	if len(s.activities) > s.activityCap {
		s.activities = s.activities[:s.activityCap]
	}
	metrics.ActivitiesRecorded.Inc()
	return a
}

// SetStatus updates a participant's status and/or current task. An empty
// status leaves it unchanged; a nil task leaves the task unchanged, a
// pointer to the empty string clears it. Going offline always clears the
// task. Setting a non-empty task records a task activity.
func (s *Store) SetStatus(id string, status models.Status, task *string) (*models.Participant, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidStatus)
	}

	s.mu.Lock()
	p, ok := s.participants[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("participant %q: %w", id, ErrNotFound)
	}

	now := s.now()
	if status != "" {
		p.Status = status
	}
	if task != nil {
		p.CurrentTask = *task
	}
	if p.Status == models.StatusOffline {
		p.CurrentTask = ""
	}
	p.LastActive = &now

	var activity *models.Activity
	if task != nil && *task != "" && p.CurrentTask != "" {
		a := s.prependActivity(now, id, models.ActivityTask,
			fmt.Sprintf("%s is working on: %s", p.Name, p.CurrentTask), nil)
		activity = &a
	}

	updated := *p
	s.mu.Unlock()

	s.broadcaster.Emit(broadcast.EventParticipantUpdated, updated)
	if activity != nil {
		s.broadcaster.Emit(broadcast.EventActivityNew, *activity)
	}
	return &updated, nil
}

// Restore resets a participant's status and task to previously captured
// values. Unlike SetStatus it never synthesizes a task activity: the task
// being put back was already logged when it was first set.
func (s *Store) Restore(id string, status models.Status, task string) (*models.Participant, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidStatus)
	}

	s.mu.Lock()
	p, ok := s.participants[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("participant %q: %w", id, ErrNotFound)
	}

	if status != "" {
		p.Status = status
	}
	p.CurrentTask = task
	if p.Status == models.StatusOffline {
		p.CurrentTask = ""
	}
	now := s.now()
	p.LastActive = &now

	updated := *p
	s.mu.Unlock()

	s.broadcaster.Emit(broadcast.EventParticipantUpdated, updated)
	return &updated, nil
}

// RecordLogin marks a participant online and logs the login.
func (s *Store) RecordLogin(id string) (*models.Participant, error) {
	return s.recordSession(id, models.StatusOnline, models.ActivityLogin, "%s logged in")
}

// RecordLogout marks a participant offline, clears any current task, and
// logs the logout.
func (s *Store) RecordLogout(id string) (*models.Participant, error) {
	return s.recordSession(id, models.StatusOffline, models.ActivityLogout, "%s logged out")
}

func (s *Store) recordSession(id string, status models.Status, typ models.ActivityType, format string) (*models.Participant, error) {
	s.mu.Lock()
	p, ok := s.participants[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("participant %q: %w", id, ErrNotFound)
	}

	now := s.now()
	p.Status = status
	if status == models.StatusOffline {
		p.CurrentTask = ""
	}
	p.LastActive = &now

	a := s.prependActivity(now, id, typ, fmt.Sprintf(format, p.Name), nil)
	updated := *p
	s.mu.Unlock()

	s.broadcaster.Emit(broadcast.EventParticipantUpdated, updated)
	s.broadcaster.Emit(broadcast.EventActivityNew, a)
	return &updated, nil
}

// PostMessage appends a message to the bounded log and synthesizes its
// correlated activity. The message-new event is emitted before the derived
// activity-new so observers can correlate without racing.
func (s *Store) PostMessage(from, to, content string, kind models.MessageKind) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if kind == "" {
		kind = models.KindText
	}

	s.mu.Lock()
	sender, ok := s.participants[from]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("sender %q: %w", from, ErrInvalidSender)
	}
	if to != "" {
		if _, ok := s.participants[to]; !ok {
			s.mu.Unlock()
			return nil, fmt.Errorf("recipient %q: %w", to, ErrNotFound)
		}
	}

	now := s.now()
	msg := models.Message{
		ID:        s.newID(now),
		From:      from,
		To:        to,
		Content:   content,
		Kind:      kind,
		Timestamp: now.UnixMilli(),
	}
	s.messages = append(s.messages, msg)
	if len(s.messages) > s.messageCap {
		s.messages = s.messages[len(s.messages)-s.messageCap:]
	}
	sender.LastActive = &now

	description := fmt.Sprintf("%s sent a message", sender.Name)
	if to != "" {
		if rcpt := s.participants[to]; rcpt != nil {
			description = fmt.Sprintf("%s sent a message to %s", sender.Name, rcpt.Name)
		}
	}
	a := s.prependActivity(now, from, models.ActivityMessage, description,
		map[string]string{models.MetaMessageID: msg.ID})
	s.mu.Unlock()

	metrics.MessagesPosted.WithLabelValues(string(kind)).Inc()
	s.broadcaster.Emit(broadcast.EventMessageNew, msg)
	s.broadcaster.Emit(broadcast.EventActivityNew, a)
	return &msg, nil
}

// MarkRead flips a message's read flag.
func (s *Store) MarkRead(messageID string) (*models.Message, error) {
	s.mu.Lock()
	var msg *models.Message
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].Read = true
			cp := s.messages[i]
			msg = &cp
			break
		}
	}
	s.mu.Unlock()

	if msg == nil {
		return nil, fmt.Errorf("message %q: %w", messageID, ErrNotFound)
	}
	s.broadcaster.Emit(broadcast.EventMessageRead, ReadReceipt{ID: messageID})
	return msg, nil
}

// RecordActivity is the direct-write path used by command dispatch and
// external instrumentation.
func (s *Store) RecordActivity(actorID string, typ models.ActivityType, description string, meta map[string]string) (*models.Activity, error) {
	s.mu.Lock()
	if _, ok := s.participants[actorID]; !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("actor %q: %w", actorID, ErrNotFound)
	}
	a := s.prependActivity(s.now(), actorID, typ, description, meta)
	s.mu.Unlock()

	s.broadcaster.Emit(broadcast.EventActivityNew, a)
	return &a, nil
}

// Participant returns a copy of the participant with the given id.
func (s *Store) Participant(id string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %q: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// Participants returns all participants in roster order.
func (s *Store) Participants() []models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participantsLocked()
}

func (s *Store) participantsLocked() []models.Participant {
	out := make([]models.Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.participants[id])
	}
	return out
}

// Messages returns up to limit of the most recent messages in append order.
// A non-empty participant filter keeps only messages the participant sent,
// received, or that were broadcast.
func (s *Store) Messages(limit int, participant string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.messages
	if participant != "" {
		src = make([]models.Message, 0, len(s.messages))
		for _, m := range s.messages {
			if m.From == participant || m.To == participant || m.Broadcast() {
				src = append(src, m)
			}
		}
	}
	if limit > 0 && len(src) > limit {
		src = src[len(src)-limit:]
	}
	out := make([]models.Message, len(src))
	copy(out, src)
	return out
}

// Activities returns up to limit activities, newest first.
func (s *Store) Activities(limit int) []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activitiesLocked(limit)
}

func (s *Store) activitiesLocked(limit int) []models.Activity {
	src := s.activities
	if limit > 0 && len(src) > limit {
		src = src[:limit]
	}
	out := make([]models.Activity, len(src))
	copy(out, src)
	return out
}

// Snapshot returns the full current view: all participants, the recent
// message tail, and the activity log head.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages
	if len(msgs) > snapshotMessages {
		msgs = msgs[len(msgs)-snapshotMessages:]
	}
	messages := make([]models.Message, len(msgs))
	copy(messages, msgs)

	return models.Snapshot{
		Participants: s.participantsLocked(),
		Messages:     messages,
		Activities:   s.activitiesLocked(0),
	}
}
