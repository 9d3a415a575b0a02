// Package probe overlays computed liveness onto participant listings. The
// overlay is advisory: it informs the status returned at query time and
// never persists into the store.
package probe

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/FerryF19999/chatinterface/internal/models"
)

const (
	onlineWindow = 2 * time.Minute
	awayWindow   = 10 * time.Minute
)

// AgentHealth is collaborator-reported liveness for one agent.
type AgentHealth struct {
	RecentSessionAge time.Duration
	HeartbeatEnabled bool
}

// Prober reports per-agent liveness. Implementations are consulted
// opportunistically; an error means the overlay is skipped.
type Prober interface {
	Probe(ctx context.Context) (map[string]AgentHealth, error)
}

// FileProber derives liveness from a session directory: the age of
// "<id>.session" gives recent activity, and a fresh "<id>.heartbeat" file
// marks an active heartbeat.
type FileProber struct {
	Dir string
	now func() time.Time
}

// NewFileProber creates a prober over the given session directory.
func NewFileProber(dir string) *FileProber {
	return &FileProber{Dir: dir, now: time.Now}
}

// Probe scans the session directory. Agents without session files are
// simply absent from the result.
func (p *FileProber) Probe(ctx context.Context) (map[string]AgentHealth, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, err
	}

	now := p.now()
	health := make(map[string]AgentHealth)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		id := name[:len(name)-len(ext)]
		if id == "" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		h := health[id]
		switch ext {
		case ".session":
			h.RecentSessionAge = now.Sub(info.ModTime())
		case ".heartbeat":
			h.HeartbeatEnabled = now.Sub(info.ModTime()) < onlineWindow
		default:
			continue
		}
		health[id] = h
	}
	return health, nil
}

// Overlay applies probed liveness to a copy of the participants. An active
// heartbeat forces online; otherwise recent session activity maps to
// online, then away, then offline. Owners and unprobed agents pass through
// untouched.
func Overlay(participants []models.Participant, health map[string]AgentHealth) []models.Participant {
	if len(health) == 0 {
		return participants
	}
	out := make([]models.Participant, len(participants))
	copy(out, participants)

	for i := range out {
		p := &out[i]
		if p.Role != models.RoleAgent {
			continue
		}
		h, ok := health[p.ID]
		if !ok {
			continue
		}
		switch {
		case h.HeartbeatEnabled:
			p.Status = models.StatusOnline
		case h.RecentSessionAge > 0 && h.RecentSessionAge < onlineWindow:
			p.Status = models.StatusOnline
		case h.RecentSessionAge > 0 && h.RecentSessionAge < awayWindow:
			p.Status = models.StatusAway
		default:
			p.Status = models.StatusOffline
			p.CurrentTask = ""
		}
	}
	return out
}
