package chat

import (
	"encoding/json"
	"fmt"
)

// Event names pushed by the server.
const (
	EventParticipantUpdated = "participant-updated"
	EventMessageNew         = "message-new"
	EventMessageRead        = "message-read"
	EventActivityNew        = "activity-new"
	EventInit               = "init"
)

// Event is one fan-out frame: an SSE frame from the push channel or a relay
// envelope. Data stays raw until Apply decodes it by name.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// View is an observer's local reconciliation of the server state. Apply is
// idempotent: the same message-new or activity-new applied twice changes
// nothing, so at-least-once transports and strategy switches are safe.
type View struct {
	Participants map[string]Participant
	Messages     []Message  // append order
	Activities   []Activity // newest first

	seenMessages   map[string]bool
	seenActivities map[string]bool
}

// NewView creates an empty view.
func NewView() *View {
	return &View{
		Participants:   make(map[string]Participant),
		seenMessages:   make(map[string]bool),
		seenActivities: make(map[string]bool),
	}
}

// Apply reconciles one event into the view. It reports whether the event
// changed anything; duplicates by entity id are skipped.
func (v *View) Apply(e Event) (bool, error) {
	switch e.Name {
	case EventInit:
		var snap Snapshot
		if err := json.Unmarshal(e.Data, &snap); err != nil {
			return false, fmt.Errorf("decode init: %w", err)
		}
		v.Reset(snap)
		return true, nil

	case EventParticipantUpdated:
		var p Participant
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return false, fmt.Errorf("decode participant: %w", err)
		}
		v.Participants[p.ID] = p
		return true, nil

	case EventMessageNew:
		var m Message
		if err := json.Unmarshal(e.Data, &m); err != nil {
			return false, fmt.Errorf("decode message: %w", err)
		}
		return v.addMessage(m), nil

	case EventMessageRead:
		var receipt struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(e.Data, &receipt); err != nil {
			return false, fmt.Errorf("decode read receipt: %w", err)
		}
		for i := range v.Messages {
			if v.Messages[i].ID == receipt.ID {
				if v.Messages[i].Read {
					return false, nil
				}
				v.Messages[i].Read = true
				return true, nil
			}
		}
		return false, nil

	case EventActivityNew:
		var a Activity
		if err := json.Unmarshal(e.Data, &a); err != nil {
			return false, fmt.Errorf("decode activity: %w", err)
		}
		return v.addActivity(a), nil
	}

	return false, fmt.Errorf("unknown event %q", e.Name)
}

// Reset replaces the view wholesale, as the init event requires.
func (v *View) Reset(snap Snapshot) {
	v.Participants = make(map[string]Participant, len(snap.Participants))
	for _, p := range snap.Participants {
		v.Participants[p.ID] = p
	}

	v.Messages = append([]Message(nil), snap.Messages...)
	v.seenMessages = make(map[string]bool, len(snap.Messages))
	for _, m := range snap.Messages {
		v.seenMessages[m.ID] = true
	}

	v.Activities = append([]Activity(nil), snap.Activities...)
	v.seenActivities = make(map[string]bool, len(snap.Activities))
	for _, a := range snap.Activities {
		v.seenActivities[a.ID] = true
	}
}

// ApplySnapshot reconciles a polled snapshot into the view by id
// comparison: participants are replaced, unseen messages are appended in
// order, unseen activities join the head. Given the same mutation sequence
// it converges on the same view push delivery would produce.
func (v *View) ApplySnapshot(snap Snapshot) (changed bool) {
	for _, p := range snap.Participants {
		cur, ok := v.Participants[p.ID]
		if !ok || cur.Status != p.Status || cur.CurrentTask != p.CurrentTask {
			changed = true
		}
	}
	v.Participants = make(map[string]Participant, len(snap.Participants))
	for _, p := range snap.Participants {
		v.Participants[p.ID] = p
	}

	for _, m := range snap.Messages {
		if v.addMessage(m) {
			changed = true
		} else {
			// Read flags can flip after the message was first seen.
			for i := range v.Messages {
				if v.Messages[i].ID == m.ID && v.Messages[i].Read != m.Read {
					v.Messages[i].Read = m.Read
					changed = true
				}
			}
		}
	}

	// Snapshot activities are newest-first; collect the unseen prefix and
	// splice it onto the head in the same order.
	var fresh []Activity
	for _, a := range snap.Activities {
		if !v.seenActivities[a.ID] {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) > 0 {
		for _, a := range fresh {
			v.seenActivities[a.ID] = true
		}
		v.Activities = append(fresh, v.Activities...)
		changed = true
	}
	return changed
}

func (v *View) addMessage(m Message) bool {
	if v.seenMessages[m.ID] {
		return false
	}
	v.seenMessages[m.ID] = true
	v.Messages = append(v.Messages, m)
	return true
}

func (v *View) addActivity(a Activity) bool {
	if v.seenActivities[a.ID] {
		return false
	}
	v.seenActivities[a.ID] = true
	v.Activities = append([]Activity{a}, v.Activities...)
	return true
}
