package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPrintRequested EventType = "print_requested"
	EventPrintFailed    EventType = "print_failed"
	EventPrintJobs      EventType = "print_jobs"
)

// Event is broadcast to dashboards and brokers. Jobs is set only for
// print_jobs snapshots, where an empty list still encodes as [].
type Event struct {
	ID        string     `json:"id"`
	Type      EventType  `json:"type"`
	EntityID  string     `json:"entity_id,omitempty"`
	Error     string     `json:"error,omitempty"`
	Jobs      []PrintJob `json:"jobs,omitzero"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewSnapshotEvent wraps a job list in a print_jobs event.
func NewSnapshotEvent(jobs []PrintJob) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      EventPrintJobs,
		Jobs:      SnapshotJobs(jobs),
		Timestamp: time.Now(),
	}
}

// SnapshotJobs returns jobs, or an empty non-nil list when jobs is nil.
func SnapshotJobs(jobs []PrintJob) []PrintJob {
	if jobs == nil {
		return []PrintJob{}
	}
	return jobs
}
