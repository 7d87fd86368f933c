package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string         `json:"db_path"`
	DBSizeBytes     int64          `json:"db_size_bytes"`
	TotalSnapshots  int            `json:"total_snapshots"`
	ActiveSnapshots int            `json:"active_snapshots"`
	TotalPoints     int            `json:"total_points"`
	Projects        []ProjectStats `json:"projects"`
}

// ProjectStats holds per-project counts.
type ProjectStats struct {
	Project   string `json:"project"`
	Count     int    `json:"count"`
	Functions int    `json:"functions"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM snapshots`, &st.TotalSnapshots},
		{`SELECT COUNT(*) FROM snapshots WHERE deleted_at IS NULL`, &st.ActiveSnapshots},
		{`SELECT COUNT(*) FROM snapshot_points`, &st.TotalPoints},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return st, err
	}
	st.Projects = projects
	return st, nil
}

// ListProjects returns per-project snapshot counts, busiest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]ProjectStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project, COUNT(*) AS cnt, COUNT(DISTINCT function_id) AS fns
		FROM snapshots WHERE deleted_at IS NULL
		GROUP BY project ORDER BY cnt DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []ProjectStats
	for rows.Next() {
		var ps ProjectStats
		if err := rows.Scan(&ps.Project, &ps.Count, &ps.Functions); err != nil {
			return nil, err
		}
		projects = append(projects, ps)
	}
	return projects, rows.Err()
}
