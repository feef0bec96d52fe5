package zen

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/starford/arczen/internal/apperr"
)

// Profile is one entry from a Zen profiles.ini.
type Profile struct {
	Name    string
	Dir     string
	Default bool
}

// PlacesPath returns the profile's places.sqlite location.
func (p Profile) PlacesPath() string { return filepath.Join(p.Dir, "places.sqlite") }

// DefaultProfilesRoot returns the platform-specific Zen data directory.
func DefaultProfilesRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("zen: resolve home dir: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "zen"), nil
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "zen"), nil
	default:
		return filepath.Join(home, ".zen"), nil
	}
}

// FindProfile resolves a Zen profile by name from root/profiles.ini. An empty
// name selects the default profile, falling back to the first one listed.
func FindProfile(root, name string) (Profile, error) {
	profiles, err := readProfilesINI(filepath.Join(root, "profiles.ini"), root)
	if err != nil {
		return Profile{}, err
	}
	if len(profiles) == 0 {
		return Profile{}, fmt.Errorf("zen: %w: no profiles in %s", apperr.ErrNotFound, root)
	}
	if name == "" {
		for _, p := range profiles {
			if p.Default {
				return p, nil
			}
		}
		return profiles[0], nil
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("zen: %w: profile %q", apperr.ErrNotFound, name)
}

// readProfilesINI parses the [ProfileN] sections of a Firefox-family
// profiles.ini. The format is a flat ini dialect; the handful of keys needed
// here does not warrant a full parser dependency.
func readProfilesINI(path, root string) ([]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("zen: read profiles.ini: %w", err)
	}
	defer f.Close()

	var (
		profiles  []Profile
		current   *Profile
		inProfile bool
		relative  = true
	)
	flush := func() {
		if current != nil && current.Dir != "" {
			if relative {
				current.Dir = filepath.Join(root, filepath.FromSlash(current.Dir))
			}
			profiles = append(profiles, *current)
		}
		current = nil
		relative = true
	}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "["):
			flush()
			inProfile = strings.HasPrefix(line, "[Profile")
			if inProfile {
				current = &Profile{}
			}
		case inProfile && current != nil:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			switch strings.TrimSpace(key) {
			case "Name":
				current.Name = strings.TrimSpace(value)
			case "Path":
				current.Dir = strings.TrimSpace(value)
			case "IsRelative":
				relative = strings.TrimSpace(value) != "0"
			case "Default":
				current.Default = strings.TrimSpace(value) == "1"
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("zen: scan profiles.ini: %w", err)
	}
	flush()
	return profiles, nil
}

var activeWorkspacePref = regexp.MustCompile(`user_pref\("zen\.workspaces\.active", "([^"]*)"\)`)

// SetActiveWorkspace points prefs.js at the given workspace so Zen opens on
// it after the import. Must only be called while the browser is closed.
func SetActiveWorkspace(profileDir, workspaceUUID string) error {
	prefsPath := filepath.Join(profileDir, "prefs.js")
	data, err := os.ReadFile(prefsPath)
	if err != nil {
		return fmt.Errorf("zen: read prefs.js: %w", err)
	}
	pref := fmt.Sprintf(`user_pref("zen.workspaces.active", "%s")`, workspaceUUID)
	var out string
	if activeWorkspacePref.Match(data) {
		out = activeWorkspacePref.ReplaceAllString(string(data), pref)
	} else {
		out = strings.TrimRight(string(data), "\n") + "\n" + pref + ";\n"
	}
	if err := os.WriteFile(prefsPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("zen: write prefs.js: %w", err)
	}
	return nil
}

// ActiveWorkspace returns the workspace uuid prefs.js currently points at, or
// "" when the pref is absent.
func ActiveWorkspace(profileDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(profileDir, "prefs.js"))
	if err != nil {
		return "", fmt.Errorf("zen: read prefs.js: %w", err)
	}
	m := activeWorkspacePref.FindSubmatch(data)
	if m == nil {
		return "", nil
	}
	return string(m[1]), nil
}

// RetargetActiveWorkspace re-points prefs.js after a consolidation pass when
// the active workspace was one of the temporary uuids the pass just removed.
// Returns the final uuid written, or "" when the pointer was left alone.
func RetargetActiveWorkspace(profileDir string, mapping map[string]string) (string, error) {
	active, err := ActiveWorkspace(profileDir)
	if err != nil || active == "" {
		return "", err
	}
	final, ok := mapping[active]
	if !ok || final == active {
		return "", nil
	}
	if err := SetActiveWorkspace(profileDir, final); err != nil {
		return "", err
	}
	return final, nil
}
