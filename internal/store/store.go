// Package store provides the function snapshot storage interface and its
// SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/geofunc/internal/model"
)

// PutParams holds parameters for storing a snapshot.
type PutParams struct {
	Project  string
	Function *model.Function
	Note     string
}

// GetParams holds parameters for retrieving a snapshot.
type GetParams struct {
	Project    string
	FunctionID int
	History    bool
	Version    int // 0 means latest
}

// ListParams holds parameters for listing snapshots.
type ListParams struct {
	Project string
	Name    string // substring match on the function name
	Limit   int
}

// RmParams holds parameters for deleting a snapshot.
type RmParams struct {
	Project     string
	FunctionID  int
	AllVersions bool
	Hard        bool
}

// Store defines the snapshot storage interface.
type Store interface {
	// Put stores a new version of a function. Returns the created snapshot.
	Put(ctx context.Context, p PutParams) (*model.Snapshot, error)

	// Get retrieves snapshots of one function, points included.
	// Returns a slice (single element normally, multiple with History=true).
	Get(ctx context.Context, p GetParams) ([]model.Snapshot, error)

	// List lists the latest snapshot of each function. Points are not loaded.
	List(ctx context.Context, p ListParams) ([]model.Snapshot, error)

	// Rm soft-deletes (or hard-deletes) snapshots of a function.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
