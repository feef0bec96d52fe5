package zen

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/arczen/internal/sidebar"
)

// containers.json contextual identities. Zen renders these with a fixed icon
// and color vocabulary, so imported spaces cycle through it.
var (
	containerIcons = []string{
		"briefcase", "cart", "circle", "dollar", "fence", "fingerprint",
		"food", "fruit", "gift", "pet", "tree", "vacation", "chill",
	}
	containerColors = []string{
		"blue", "turquoise", "green", "yellow", "orange", "red", "pink", "purple",
	}
)

type containerIdentity struct {
	Icon          string `json:"icon"`
	Color         string `json:"color"`
	L10nID        string `json:"l10nId,omitempty"`
	Name          string `json:"name,omitempty"`
	Public        bool   `json:"public"`
	UserContextID int    `json:"userContextId"`
}

func (ci containerIdentity) displayName() string {
	if ci.Name != "" {
		return ci.Name
	}
	return strings.TrimPrefix(ci.L10nID, "user-context-")
}

type containerConfig struct {
	Version           int                 `json:"version"`
	LastUserContextID int                 `json:"lastUserContextId"`
	Identities        []containerIdentity `json:"identities"`
}

func defaultContainerConfig() *containerConfig {
	return &containerConfig{
		Version:           5,
		LastUserContextID: 1,
		Identities: []containerIdentity{{
			Icon:          "fingerprint",
			Color:         "blue",
			L10nID:        "user-context-personal",
			Public:        true,
			UserContextID: 1,
		}},
	}
}

// AssignContainers gives every space a contextual identity in the profile's
// containers.json, creating missing ones, and returns spaceID → userContextId.
// Existing identities are matched by name so re-runs do not multiply them.
// With dryRun set, the file is left untouched and new ids are only simulated.
func AssignContainers(profileDir string, spaces []*sidebar.Space, dryRun bool, logger *slog.Logger) (map[string]int, error) {
	path := filepath.Join(profileDir, "containers.json")

	cfg := defaultContainerConfig()
	if data, err := os.ReadFile(path); err == nil {
		cfg = &containerConfig{}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("zen: parse containers.json: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("zen: read containers.json: %w", err)
	}

	byName := make(map[string]int)
	for _, id := range cfg.Identities {
		byName[strings.ToLower(id.displayName())] = id.UserContextID
	}

	assignments := make(map[string]int, len(spaces))
	created := 0
	for i, space := range spaces {
		if id, ok := byName[strings.ToLower(space.Name)]; ok {
			assignments[space.ID] = id
			continue
		}
		cfg.LastUserContextID++
		identity := containerIdentity{
			Icon:          containerIcons[i%len(containerIcons)],
			Color:         containerColors[i%len(containerColors)],
			Name:          space.Name,
			Public:        true,
			UserContextID: cfg.LastUserContextID,
		}
		cfg.Identities = append(cfg.Identities, identity)
		byName[strings.ToLower(space.Name)] = identity.UserContextID
		assignments[space.ID] = identity.UserContextID
		created++
		logger.Info("containers: assigned identity",
			slog.String("space", space.Name),
			slog.Int("userContextId", identity.UserContextID),
			slog.Bool("dry_run", dryRun))
	}

	if created > 0 && !dryRun {
		data, err := json.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("zen: encode containers.json: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("zen: write containers.json: %w", err)
		}
	}
	return assignments, nil
}
