package model

import "time"

// Snapshot is a stored version of a function taken from a project.
type Snapshot struct {
	ID         string      `json:"id"`
	Project    string      `json:"project"`
	FunctionID int         `json:"function_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	Supersedes string      `json:"supersedes,omitempty"`
	Note       string      `json:"note,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	DeletedAt  *time.Time  `json:"deleted_at,omitempty"`
	PointCount int         `json:"point_count"`
	Raw        RawFunction `json:"raw"`
}

// Function materializes the stored raw values.
func (s Snapshot) Function() (*Function, error) {
	return FromRaw(s.Raw)
}
