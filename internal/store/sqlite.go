package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/geofunc/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id          TEXT PRIMARY KEY,
		project     TEXT NOT NULL,
		function_id INTEGER NOT NULL,
		name        TEXT NOT NULL,
		spec        TEXT NOT NULL,
		estimate    TEXT,
		types       TEXT,
		header      TEXT NOT NULL,
		point_count INTEGER NOT NULL DEFAULT 0,
		version     INTEGER NOT NULL DEFAULT 1,
		supersedes  TEXT,
		note        TEXT,
		created_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_fn ON snapshots(project, function_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_snapshots_deleted ON snapshots(deleted_at);

	CREATE TABLE IF NOT EXISTS snapshot_points (
		id          TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id),
		seq         INTEGER NOT NULL,
		tag         TEXT NOT NULL,
		x           TEXT NOT NULL,
		y           TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_points_snapshot ON snapshot_points(snapshot_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

const snapshotColumns = `s.id, s.project, s.function_id, s.name, s.spec, s.estimate, s.types, s.header,
	s.point_count, s.version, s.supersedes, s.note, s.created_at, s.deleted_at`

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.Snapshot, error) {
	if p.Function == nil {
		return nil, errors.New("put: function is required")
	}
	raw, err := p.Function.ToRaw()
	if err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}

	now := time.Now().UTC()
	id := s.newID()

	headerJSON, _ := json.Marshal(raw.Points[0])
	var typesJSON *string
	if len(raw.Types) > 0 {
		b, _ := json.Marshal(raw.Types)
		types := string(b)
		typesJSON = &types
	}
	var notePtr *string
	if p.Note != "" {
		notePtr = &p.Note
	}
	rows := raw.Points[1:]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Check for existing latest version
	var prevID string
	var prevVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT id, version FROM snapshots
		 WHERE project = ? AND function_id = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, p.Project, raw.ID).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	if err == nil {
		version = prevVersion + 1
		supersedes = &prevID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, project, function_id, name, spec, estimate, types, header,
		                        point_count, version, supersedes, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Project, raw.ID, raw.Name, raw.Function, raw.Estimate, typesJSON, string(headerJSON),
		len(rows), version, supersedes, notePtr, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	for i, row := range rows {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_points (id, snapshot_id, seq, tag, x, y)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.newID(), id, i, row[0], row[1], row[2])
		if err != nil {
			return nil, fmt.Errorf("insert point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		ID:         id,
		Project:    p.Project,
		FunctionID: raw.ID,
		Name:       raw.Name,
		Version:    version,
		Note:       p.Note,
		CreatedAt:  now,
		PointCount: len(rows),
		Raw:        raw,
	}
	if supersedes != nil {
		snap.Supersedes = *supersedes
	}
	return snap, nil
}

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) ([]model.Snapshot, error) {
	var query string
	var args []interface{}

	if p.History {
		query = `SELECT ` + snapshotColumns + `
				 FROM snapshots s WHERE s.project = ? AND s.function_id = ? AND s.deleted_at IS NULL
				 ORDER BY s.version DESC`
		args = []interface{}{p.Project, p.FunctionID}
	} else if p.Version > 0 {
		query = `SELECT ` + snapshotColumns + `
				 FROM snapshots s WHERE s.project = ? AND s.function_id = ? AND s.version = ? AND s.deleted_at IS NULL
				 LIMIT 1`
		args = []interface{}{p.Project, p.FunctionID, p.Version}
	} else {
		query = `SELECT ` + snapshotColumns + `
				 FROM snapshots s WHERE s.project = ? AND s.function_id = ? AND s.deleted_at IS NULL
				 ORDER BY s.version DESC LIMIT 1`
		args = []interface{}{p.Project, p.FunctionID}
	}

	snaps, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("snapshot not found: %s/%d", p.Project, p.FunctionID)
	}
	if err := s.loadPoints(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Snapshot, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	// Only the latest version of each project+function
	where := []string{"s.deleted_at IS NULL"}
	args := []interface{}{}

	if p.Project != "" {
		where = append(where, "s.project = ?")
		args = append(args, p.Project)
	}
	if p.Name != "" {
		where = append(where, "s.name LIKE ?")
		args = append(args, "%"+p.Name+"%")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM snapshots s
		INNER JOIN (
			SELECT project, function_id, MAX(version) AS max_ver
			FROM snapshots WHERE deleted_at IS NULL
			GROUP BY project, function_id
		) latest ON s.project = latest.project AND s.function_id = latest.function_id AND s.version = latest.max_ver
		WHERE %s
		ORDER BY s.created_at DESC
		LIMIT ?`, snapshotColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	if p.Hard {
		if p.AllVersions {
			// Delete points first
			_, err := s.db.ExecContext(ctx,
				`DELETE FROM snapshot_points WHERE snapshot_id IN
				 (SELECT id FROM snapshots WHERE project = ? AND function_id = ?)`,
				p.Project, p.FunctionID)
			if err != nil {
				return err
			}
			_, err = s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE project = ? AND function_id = ?`, p.Project, p.FunctionID)
			return err
		}
		id, err := s.latestID(ctx, p.Project, p.FunctionID)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshot_points WHERE snapshot_id = ?`, id); err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if p.AllVersions {
		_, err := s.db.ExecContext(ctx,
			`UPDATE snapshots SET deleted_at = ? WHERE project = ? AND function_id = ? AND deleted_at IS NULL`,
			now, p.Project, p.FunctionID)
		return err
	}

	// Soft-delete latest version only
	id, err := s.latestID(ctx, p.Project, p.FunctionID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE snapshots SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) latestID(ctx context.Context, project string, functionID int) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots WHERE project = ? AND function_id = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, project, functionID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("snapshot not found: %s/%d", project, functionID)
	}
	return id, nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// loadPoints fills in the point rows of each snapshot's raw table.
func (s *SQLiteStore) loadPoints(ctx context.Context, snaps []model.Snapshot) error {
	for i := range snaps {
		rows, err := s.db.QueryContext(ctx,
			`SELECT tag, x, y FROM snapshot_points WHERE snapshot_id = ? ORDER BY seq`, snaps[i].ID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var tag, x, y string
			if err := rows.Scan(&tag, &x, &y); err != nil {
				rows.Close()
				return err
			}
			snaps[i].Raw.Points = append(snaps[i].Raw.Points, model.Row{tag, x, y})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSnapshot reads one row. The raw points table holds only the header;
// loadPoints appends the rest.
func scanSnapshot(row scanner) (model.Snapshot, error) {
	var snap model.Snapshot
	var estimate, typesJSON, supersedes, note, deletedAt sql.NullString
	var header, createdAt string

	err := row.Scan(
		&snap.ID, &snap.Project, &snap.FunctionID, &snap.Name, &snap.Raw.Function,
		&estimate, &typesJSON, &header, &snap.PointCount, &snap.Version,
		&supersedes, &note, &createdAt, &deletedAt,
	)
	if err != nil {
		return snap, err
	}

	snap.Raw.ID = snap.FunctionID
	snap.Raw.Name = snap.Name
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	var headerRow model.Row
	if err := json.Unmarshal([]byte(header), &headerRow); err != nil {
		return snap, fmt.Errorf("decode header of %s: %w", snap.ID, err)
	}
	if headerRow == nil {
		headerRow = model.Row{}
	}
	snap.Raw.Points = model.Table{headerRow}

	if estimate.Valid {
		snap.Raw.Estimate = estimate.String
	}
	if typesJSON.Valid {
		json.Unmarshal([]byte(typesJSON.String), &snap.Raw.Types)
	}
	if supersedes.Valid {
		snap.Supersedes = supersedes.String
	}
	if note.Valid {
		snap.Note = note.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		snap.DeletedAt = &t
	}

	return snap, nil
}
