package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/geofunc/internal/model"
)

// SearchParams holds parameters for searching snapshots.
type SearchParams struct {
	Project string
	Query   string
	Limit   int
}

// Search finds the latest snapshots whose name, spec string or note contains
// the query. Points are not loaded.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Snapshot, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{"s.deleted_at IS NULL"}
	args := []interface{}{}

	if p.Project != "" {
		where = append(where, "s.project = ?")
		args = append(args, p.Project)
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM snapshots s
		INNER JOIN (
			SELECT project, function_id, MAX(version) AS max_ver
			FROM snapshots WHERE deleted_at IS NULL
			GROUP BY project, function_id
		) latest ON s.project = latest.project AND s.function_id = latest.function_id AND s.version = latest.max_ver
		WHERE %s AND (s.name LIKE ? OR s.spec LIKE ? OR s.note LIKE ?)
		ORDER BY s.created_at DESC
		LIMIT ?`, snapshotColumns, strings.Join(where, " AND "))

	args = append(args, query, query, query, limit)

	return s.query(ctx, sql, args...)
}
