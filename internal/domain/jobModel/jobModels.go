package jobModel

import (
	"context"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusError      JobStatus = "ERROR"
)

// IsTerminal reports whether polling has nothing left to do for the status.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// Job is the client-side record of one submitted extraction.
// Progress is synthetic and only meant for UI feedback.
type Job struct {
	Id          string    `json:"id"`
	FileName    string    `json:"file_name,omitempty"`
	TraceId     string    `json:"trace_id,omitempty"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"`
	Failures    int       `json:"consecutive_failures"`
	Checks      int       `json:"checks"`
	Error       *JobError `json:"error,omitempty"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
	EndTime     time.Time `json:"end_time,omitempty"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
