package sidebar

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultSidebarPath returns the platform-specific location of Arc's
// StorableSidebar.json for the current user.
func DefaultSidebarPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("sidebar: resolve home dir: %w", err)
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home,
			"AppData", "Local", "Packages", "TheBrowserCompany.Arc_ttt1ap7aakyb4",
			"LocalCache", "Local", "Arc", "StorableSidebar.json"), nil
	default:
		return filepath.Join(home, "Library", "Application Support", "Arc", "StorableSidebar.json"), nil
	}
}

// DefaultHistoryPath returns the Chromium History database for an Arc
// profile. profile is the directory basename ("Default" for the main one).
func DefaultHistoryPath(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("sidebar: resolve home dir: %w", err)
	}
	if profile == "" {
		profile = "Default"
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home,
			"AppData", "Local", "Packages", "TheBrowserCompany.Arc_ttt1ap7aakyb4",
			"LocalCache", "Local", "Arc", "User Data", profile, "History"), nil
	default:
		return filepath.Join(home, "Library", "Application Support", "Arc", "User Data", profile, "History"), nil
	}
}

// LoadFile reads and parses a sidebar document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sidebar: read %s: %w", path, err)
	}
	return ParseDocument(data)
}
