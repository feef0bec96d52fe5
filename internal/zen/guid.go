package zen

import (
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// NewWorkspaceUUID mints a zen_workspaces / zen_pins identifier in the
// brace-wrapped form Zen stores ("{xxxxxxxx-...}").
func NewWorkspaceUUID() string {
	return "{" + uuid.NewString() + "}"
}

// NewGUID mints a 12-character Places-style guid for moz_places and
// moz_bookmarks rows.
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// URLHash fills the moz_places url_hash column. Places recomputes its own
// hash during maintenance, so a stable non-zero value is sufficient here.
func URLHash(rawURL string) int64 {
	h := fnv.New32a()
	h.Write([]byte(rawURL))
	return int64(h.Sum32())
}

// RevHost returns the dot-reversed host used by moz_places for suffix
// matching ("com.example." for "example.com").
func RevHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	parts := strings.Split(u.Hostname(), ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".") + "."
}

// Frecency approximates the Places frecency score from a visit count, capped
// the way the browser caps freshly imported entries.
func Frecency(visits int) int {
	if visits < 1 {
		visits = 1
	}
	f := visits * 100
	if f > 2000 {
		f = 2000
	}
	return f
}
