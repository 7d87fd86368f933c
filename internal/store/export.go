package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/geofunc/internal/model"
)

// ExportAll returns all non-deleted snapshots with their points, optionally
// filtered by project.
func (s *SQLiteStore) ExportAll(ctx context.Context, project string) ([]model.Snapshot, error) {
	where := []string{"s.deleted_at IS NULL"}
	args := []interface{}{}

	if project != "" {
		where = append(where, "s.project = ?")
		args = append(args, project)
	}

	query := `SELECT ` + snapshotColumns + `
	          FROM snapshots s WHERE ` + strings.Join(where, " AND ") + `
	          ORDER BY s.project, s.function_id, s.version`

	snaps, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.loadPoints(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// Import stores snapshots from an export as new versions, in order. A
// snapshot whose raw table cannot be materialized stops the import.
func (s *SQLiteStore) Import(ctx context.Context, snaps []model.Snapshot) (int, error) {
	imported := 0
	for _, snap := range snaps {
		f, err := snap.Function()
		if f == nil {
			return imported, fmt.Errorf("import %s: %w", snap.ID, err)
		}
		_, err = s.Put(ctx, PutParams{
			Project:  snap.Project,
			Function: f,
			Note:     snap.Note,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
