package sidebar

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// VisitStats maps a URL to its recorded visit count in Arc's Chromium
// History database.
type VisitStats map[string]int

// LoadVisitStats reads visit counts from an Arc History database, opened
// read-only so a running Arc instance is never disturbed. A missing database
// yields empty stats, not an error: visit counts only gate the bookmark
// projection and default to 1.
func LoadVisitStats(path string, logger *slog.Logger) (VisitStats, error) {
	if _, err := os.Stat(path); err != nil {
		logger.Debug("history: database not found", slog.String("path", path))
		return VisitStats{}, nil
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=1000")
	if err != nil {
		return nil, fmt.Errorf("sidebar: open history db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT url, visit_count FROM urls WHERE visit_count > 0`)
	if err != nil {
		return nil, fmt.Errorf("sidebar: query history: %w", err)
	}
	defer rows.Close()

	stats := make(VisitStats)
	for rows.Next() {
		var url string
		var count int
		if err := rows.Scan(&url, &count); err != nil {
			return nil, fmt.Errorf("sidebar: scan history row: %w", err)
		}
		stats[url] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sidebar: read history rows: %w", err)
	}

	logger.Debug("history: loaded visit stats", slog.Int("urls", len(stats)))
	return stats, nil
}

// Apply copies visit counts onto tabs by URL. Tabs without history keep the
// default count of 1.
func (v VisitStats) Apply(spaces []*Space) {
	if len(v) == 0 {
		return
	}
	for _, s := range spaces {
		for _, t := range s.Tabs {
			if n, ok := v[t.URL]; ok && n > t.VisitCount {
				t.VisitCount = n
			}
		}
	}
}
