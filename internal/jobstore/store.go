package jobstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arifrhm/file-parser-summarizer/models"
)

// Store is the in-memory job table. A single mutex serializes every
// operation, so readers never observe a half-applied update. All jobs handed
// out are clones; the map holds the only authoritative copies.
type Store struct {
	mu    sync.RWMutex
	jobs  map[string]*models.Job
	order []string // insertion order, so List snapshots are stable
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*models.Job),
	}
}

// Create inserts a new pending job and returns its id.
func (s *Store) Create(fileType, filename string, fileSizeKB float64) string {
	id := uuid.NewString()
	job := &models.Job{
		ID:         id,
		Status:     models.StatusPending,
		FileType:   fileType,
		Filename:   filename,
		FileSizeKB: fileSizeKB,
		CreatedAt:  time.Now(),
		Progress: models.Progress{
			Stage:   models.StagePending,
			Message: "Waiting to be processed...",
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = job
	s.order = append(s.order, id)
	return id
}

// Update merges the non-nil fields of the patch into the record. Returns
// false when the id is absent, which callers must tolerate: the job may have
// been deleted while its update was in flight.
func (s *Store) Update(id string, patch models.JobUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.StartedAt != nil {
		t := *patch.StartedAt
		job.StartedAt = &t
	}
	if patch.CompletedAt != nil {
		t := *patch.CompletedAt
		job.CompletedAt = &t
	}
	if patch.Error != nil {
		e := *patch.Error
		job.Error = &e
	}
	if patch.Result != nil {
		r := *patch.Result
		job.Result = &r
	}
	if patch.Progress != nil {
		job.Progress = *patch.Progress
	}
	return true
}

// SetProgress atomically replaces the progress pair.
func (s *Store) SetProgress(id, stage, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	job.Progress = models.Progress{Stage: stage, Message: message}
	return true
}

// SetInternalPaths records the temp artifacts owned by the job so deletion
// can release them later.
func (s *Store) SetInternalPaths(id, tempDir, tempFile string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	job.TempDir = tempDir
	job.TempFile = tempFile
	return true
}

// Get returns a point-in-time copy of the job.
func (s *Store) Get(id string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return job.Clone(), true
}

// List returns a snapshot of every job in insertion order.
func (s *Store) List() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Job, 0, len(s.order))
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok {
			out = append(out, job.Clone())
		}
	}
	return out
}

// Delete removes the job and returns it, so the caller can release any
// resources the record owns. Returns false if the id is unknown.
func (s *Store) Delete(id string) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	delete(s.jobs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return job.Clone(), true
}

// ActiveCount counts jobs that are pending or processing.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, job := range s.jobs {
		if job.Status == models.StatusPending || job.Status == models.StatusProcessing {
			n++
		}
	}
	return n
}
