package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one classification run: which years were requested, which
// method produced the categories, and how many areas survived the merge.
type Run struct {
	ID        string    `json:"id"`
	Years     []int     `json:"years"`
	Method    string    `json:"method"`
	Language  string    `json:"language"`
	Status    RunStatus `json:"status"`
	AreaCount int       `json:"area_count"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
