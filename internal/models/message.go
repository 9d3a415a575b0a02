package models

// MessageKind classifies how a message entered the chat.
type MessageKind string

const (
	KindText          MessageKind = "text"
	KindCommand       MessageKind = "command"
	KindDirect        MessageKind = "direct"
	KindOwnerCall     MessageKind = "owner-call"
	KindAgentResponse MessageKind = "agent-response"
)

// Valid reports whether k is one of the known message kinds.
func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindCommand, KindDirect, KindOwnerCall, KindAgentResponse:
		return true
	}
	return false
}

// Message represents a unit of chat content held in the in-memory log.
type Message struct {
	ID        string      `json:"id"` // ULID; generation order == append order
	From      string      `json:"from"`
	To        string      `json:"to,omitempty"` // empty = broadcast to all
	Content   string      `json:"content"`
	Kind      MessageKind `json:"kind"`
	Timestamp int64       `json:"ts"` // Unix ms, advisory only
	Read      bool        `json:"read"`
}

// Broadcast reports whether the message is addressed to everyone.
func (m *Message) Broadcast() bool {
	return m.To == ""
}
