package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/FerryF19999/chatinterface/internal/models"
)

// OwnerID is the id of the single privileged participant in the default
// roster.
const OwnerID = "operator"

// DefaultRoster returns the built-in participant set: four agent personas
// and the owner. All participants start offline.
func DefaultRoster() []models.Participant {
	return []models.Participant{
		{ID: "nova", Name: "Nova", Color: "#7c3aed", Avatar: "🛰️", Status: models.StatusOffline, Role: models.RoleAgent},
		{ID: "atlas", Name: "Atlas", Color: "#0ea5e9", Avatar: "🗺️", Status: models.StatusOffline, Role: models.RoleAgent},
		{ID: "echo", Name: "Echo", Color: "#f59e0b", Avatar: "📡", Status: models.StatusOffline, Role: models.RoleAgent},
		{ID: "quill", Name: "Quill", Color: "#10b981", Avatar: "🪶", Status: models.StatusOffline, Role: models.RoleAgent},
		{
			ID: OwnerID, Name: "Operator", Color: "#ef4444", Avatar: "🎛️",
			Status: models.StatusOffline, Role: models.RoleOwner,
			CanManageAgents: true, CanCallAgents: true,
		},
	}
}

// LoadRoster reads a participant roster from a JSON file. Each entry must
// carry an id and a role; missing statuses default to offline.
func LoadRoster(path string) ([]models.Participant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var roster []models.Participant
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	for i := range roster {
		p := &roster[i]
		if p.ID == "" {
			return nil, fmt.Errorf("roster entry %d: id is required", i)
		}
		if p.Role != models.RoleAgent && p.Role != models.RoleOwner {
			return nil, fmt.Errorf("roster entry %q: role must be agent or owner", p.ID)
		}
		if p.Status == "" {
			p.Status = models.StatusOffline
		}
		if !p.Status.Valid() {
			return nil, fmt.Errorf("roster entry %q: invalid status %q", p.ID, p.Status)
		}
	}
	return roster, nil
}
