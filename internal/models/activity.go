package models

// ActivityType represents the kind of state-affecting event an activity records.
type ActivityType string

const (
	ActivityLogin      ActivityType = "login"
	ActivityLogout     ActivityType = "logout"
	ActivityMessage    ActivityType = "message"
	ActivityTask       ActivityType = "task"
	ActivityCommand    ActivityType = "command"
	ActivityDisconnect ActivityType = "disconnect"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityLogin, ActivityLogout, ActivityMessage, ActivityTask,
		ActivityCommand, ActivityDisconnect:
		return true
	}
	return false
}

// Metadata keys used to correlate activities with other records.
const (
	MetaMessageID = "message_id"
	MetaCommand   = "command"
	MetaOwnerCall = "owner_call"
)

// Activity is a derived, human-readable audit record of a state-affecting
// event. Immutable once created; evicted only by the log cap.
type Activity struct {
	ID          string            `json:"id"` // ULID
	ActorID     string            `json:"actor_id"`
	Type        ActivityType      `json:"type"`
	Description string            `json:"description"`
	Timestamp   int64             `json:"ts"` // Unix ms
	Metadata    map[string]string `json:"metadata,omitempty"`
}
