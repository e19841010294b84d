package queue

import "github.com/OFFIS-RIT/atlas/pkg/graph"

// IngestJobMsg is the payload of an ingest_queue message: one harvested
// pair batch to record and link.
type IngestJobMsg struct {
	JobID string          `json:"job_id"`
	Batch graph.PairBatch `json:"batch"`
}

// UnifyJobMsg is the payload of a unify_queue message: one identifier
// co-occurrence table to unify.
type UnifyJobMsg struct {
	JobID string      `json:"job_id"`
	Table graph.Table `json:"table"`
}

// JobEventMsg is published on the events exchange when a job finishes.
type JobEventMsg struct {
	JobID    string `json:"job_id"`
	Kind     string `json:"kind"`
	Progress string `json:"progress,omitempty"`
	Groups   int    `json:"groups,omitempty"`
	Linked   int    `json:"linked"`
	Dropped  int    `json:"dropped,omitempty"`
	Skipped  int    `json:"skipped,omitempty"`
}
