package models

import (
	"encoding/json"
	"time"
)

// JobStatus enumerates the lifecycle states of a parse job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is one of the two final states.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress stage names, in the order a job moves through them.
const (
	StagePending   = "pending"
	StageReading   = "reading"
	StageParsing   = "parsing"
	StageSummary   = "generating_summary"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Progress describes the most recent stage a job reached. It is overwritten
// on every update; only the latest value is kept.
type Progress struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Result is the success payload of a completed job.
type Result struct {
	Filename string  `json:"filename"`
	FileType string  `json:"file_type"`
	SizeKB   float64 `json:"size_kb"`
	Summary  string  `json:"summary"`
	KeyInfo  any     `json:"key_info"`
}

// Job is the authoritative record of one submitted file. The store owns the
// canonical copy; everything handed out is a clone.
type Job struct {
	ID          string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	FileType    string     `json:"file_type"`
	Filename    string     `json:"filename"`
	FileSizeKB  float64    `json:"file_size_kb"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Result      *Result    `json:"result,omitempty"`
	Progress    Progress   `json:"progress"`

	// Temp-file ownership, released when the job is deleted. Never serialized.
	TempDir  string `json:"-"`
	TempFile string `json:"-"`
}

// Clone returns a deep copy so callers never alias store-owned state.
func (j Job) Clone() Job {
	c := j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return c
}

// JobUpdate is a partial update applied atomically by the store. Only
// non-nil fields are merged into the record.
type JobUpdate struct {
	Status      *JobStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
	Error       *string
	Result      *Result
	Progress    *Progress
}

// JobDetail is the external view of a job: the full record minus the
// internal temp-file fields.
type JobDetail struct {
	JobID       string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	FileType    string     `json:"file_type"`
	Filename    string     `json:"filename"`
	FileSizeKB  float64    `json:"file_size_kb"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Result      *Result    `json:"result,omitempty"`
	Progress    Progress   `json:"progress"`
}

// Detail builds the sanitized view returned by the status endpoint.
func (j Job) Detail() JobDetail {
	c := j.Clone()
	return JobDetail{
		JobID:       c.ID,
		Status:      c.Status,
		FileType:    c.FileType,
		Filename:    c.Filename,
		FileSizeKB:  c.FileSizeKB,
		CreatedAt:   c.CreatedAt,
		StartedAt:   c.StartedAt,
		CompletedAt: c.CompletedAt,
		Error:       c.Error,
		Result:      c.Result,
		Progress:    c.Progress,
	}
}

// JobListItem is the view used by the bulk listing endpoint. Completed jobs
// carry a bounded result preview instead of the full result.
type JobListItem struct {
	JobID         string     `json:"job_id"`
	Status        JobStatus  `json:"status"`
	FileType      string     `json:"file_type"`
	Filename      string     `json:"filename"`
	FileSizeKB    float64    `json:"file_size_kb"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Error         *string    `json:"error,omitempty"`
	ResultPreview *Result    `json:"result_preview,omitempty"`
	Progress      Progress   `json:"progress"`
}

// KeyInfoPlaceholder replaces key_info in list previews when the encoded
// payload exceeds the preview limit. The full result stays available on the
// single-job endpoint.
const KeyInfoPlaceholder = "[key_info omitted - data too large]"

// ListItem builds the listing view. previewLimit bounds the JSON size of
// key_info inside the preview; zero or negative disables the bound.
func (j Job) ListItem(previewLimit int) JobListItem {
	c := j.Clone()
	item := JobListItem{
		JobID:       c.ID,
		Status:      c.Status,
		FileType:    c.FileType,
		Filename:    c.Filename,
		FileSizeKB:  c.FileSizeKB,
		CreatedAt:   c.CreatedAt,
		StartedAt:   c.StartedAt,
		CompletedAt: c.CompletedAt,
		Error:       c.Error,
		Progress:    c.Progress,
	}
	if c.Status == StatusCompleted && c.Result != nil {
		preview := *c.Result
		if previewLimit > 0 {
			if encoded, err := json.Marshal(preview.KeyInfo); err == nil && len(encoded) > previewLimit {
				preview.KeyInfo = KeyInfoPlaceholder
			}
		}
		item.ResultPreview = &preview
	}
	return item
}
