package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FerryF19999/chatinterface/internal/models"
)

func TestDefaultRosterHasOneOwner(t *testing.T) {
	roster := DefaultRoster()

	owners := 0
	for _, p := range roster {
		if p.Role == models.RoleOwner {
			owners++
			if !p.CanCallAgents || !p.CanManageAgents {
				t.Fatal("owner missing capability flags")
			}
		}
	}
	if owners != 1 {
		t.Fatalf("expected exactly one owner, got %d", owners)
	}

	if _, err := New(roster, nil, 0, 0); err != nil {
		t.Fatalf("default roster should seed cleanly: %v", err)
	}
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	data := `[
		{"id": "zed", "name": "Zed", "role": "agent"},
		{"id": "boss", "name": "Boss", "role": "owner", "status": "online"}
	]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(roster))
	}
	if roster[0].Status != models.StatusOffline {
		t.Fatal("missing status should default to offline")
	}
	if roster[1].Status != models.StatusOnline {
		t.Fatal("explicit status not kept")
	}
}

func TestLoadRosterRejectsBadEntries(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"missing id":   `[{"name": "X", "role": "agent"}]`,
		"bad role":     `[{"id": "x", "role": "visitor"}]`,
		"bad status":   `[{"id": "x", "role": "agent", "status": "sleepy"}]`,
		"not an array": `{"id": "x"}`,
	}
	for name, data := range cases {
		path := filepath.Join(dir, "r.json")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRoster(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	if _, err := LoadRoster(filepath.Join(dir, "absent.json")); err == nil {
		t.Fatal("missing file: expected error")
	}
}
