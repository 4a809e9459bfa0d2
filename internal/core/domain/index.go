package domain

import "time"

// FailedChunk is a chunk that could not be embedded or stored during an index build.
type FailedChunk struct {
	ChunkID string `json:"chunk_id"`
	Error   string `json:"error"`
}

// IndexReport summarises one index build run.
type IndexReport struct {
	// RunID identifies the build in logs and the failed-chunks file.
	RunID string `json:"run_id"`

	// Total is the number of chunks read from the chunk file.
	Total int `json:"total"`

	// Indexed is the number of chunks embedded and stored.
	Indexed int `json:"indexed"`

	// Failed lists the chunks that were not stored.
	Failed []FailedChunk `json:"failed"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the build took.
func (r *IndexReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
