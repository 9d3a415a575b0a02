package models

import "time"

// Status represents a participant's presence state.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusBusy    Status = "busy"
	StatusAway    Status = "away"
)

// Valid reports whether s is one of the known presence states.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusBusy, StatusAway:
		return true
	}
	return false
}

// Role distinguishes agent personas from the single owner identity.
type Role string

const (
	RoleAgent Role = "agent"
	RoleOwner Role = "owner"
)

// Participant represents a chat identity: an agent persona or the owner.
type Participant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	Status      Status     `json:"status"`
	CurrentTask string     `json:"current_task,omitempty"`
	LastActive  *time.Time `json:"last_active,omitempty"`
	Role        Role       `json:"role"`

	// Capability flags, set only on the owner.
	CanManageAgents bool `json:"can_manage_agents,omitempty"`
	CanCallAgents   bool `json:"can_call_agents,omitempty"`
}

// IsOwner reports whether the participant is the privileged owner.
func (p *Participant) IsOwner() bool {
	return p.Role == RoleOwner
}
