// Package jobservice binds upload validation, the job store, the worker
// pool and the parser registry into the externally visible job lifecycle.
package jobservice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/arifrhm/file-parser-summarizer/internal/jobstore"
	"github.com/arifrhm/file-parser-summarizer/internal/parser"
	"github.com/arifrhm/file-parser-summarizer/internal/worker"
	"github.com/arifrhm/file-parser-summarizer/models"
)

// MaxFileSize caps accepted uploads at 5 MiB.
const MaxFileSize = 5 * 1024 * 1024

// listPreviewLimit bounds the encoded key_info size in list views; larger
// payloads are replaced with a placeholder.
const listPreviewLimit = 2048

// Validation errors returned synchronously by Submit. None of these ever
// create a job.
var (
	ErrUnsupportedType = fmt.Errorf("unsupported file type. Use: %s", supportedTypeList())
	ErrEmptyFile       = errors.New("uploaded file is empty")
	ErrFileTooLarge    = fmt.Errorf("file too large. Maximum size is %dMB", MaxFileSize/(1024*1024))
)

func supportedTypeList() string {
	names := make([]string, len(parser.SupportedTypes))
	for i, t := range parser.SupportedTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// submission carries the constraints checked before a job is created.
type submission struct {
	Filename  string `validate:"required"`
	FileType  string `validate:"required,oneof=sql json txt csv"`
	SizeBytes int    `validate:"gt=0,lte=5242880"`
}

// Service is the job-lifecycle façade.
type Service struct {
	store    *jobstore.Store
	pool     *worker.Dispatcher
	parsers  parser.Registry
	validate *validator.Validate
	log      *logrus.Logger
}

// NewService wires the façade from its collaborators.
func NewService(store *jobstore.Store, pool *worker.Dispatcher, log *logrus.Logger) *Service {
	return &Service{
		store:    store,
		pool:     pool,
		parsers:  parser.NewRegistry(),
		validate: validator.New(),
		log:      log,
	}
}

// Submit validates the upload, creates a pending job, stashes the content
// in a job-owned temp file and schedules execution. It returns as soon as
// the job is queued; the caller polls for the outcome.
func (s *Service) Submit(filename string, content []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	sub := submission{Filename: filename, FileType: ext, SizeBytes: len(content)}
	if err := s.validate.Struct(sub); err != nil {
		return "", mapValidationError(err)
	}
	fileType, ok := parser.ParseFileType(ext)
	if !ok {
		return "", ErrUnsupportedType
	}

	sizeKB := float64(len(content)) / 1024
	id := s.store.Create(ext, filename, sizeKB)

	tempDir, err := os.MkdirTemp("", "parsejob-")
	if err != nil {
		s.store.Delete(id)
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	tempFile := filepath.Join(tempDir, fmt.Sprintf("%s.%s", id, ext))
	if err := os.WriteFile(tempFile, content, 0o600); err != nil {
		os.RemoveAll(tempDir)
		s.store.Delete(id)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	s.store.SetInternalPaths(id, tempDir, tempFile)

	job := &parseJob{
		id:       id,
		fileType: fileType,
		filename: filename,
		sizeKB:   sizeKB,
		path:     tempFile,
		store:    s.store,
		parsers:  s.parsers,
	}
	if err := s.pool.Submit(job); err != nil {
		os.RemoveAll(tempDir)
		s.store.Delete(id)
		return "", fmt.Errorf("schedule job: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"job_id":    id,
		"filename":  filename,
		"file_type": ext,
	}).Info("Job submitted")
	return id, nil
}

// mapValidationError converts validator field errors into the service's
// submission error taxonomy.
func mapValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "FileType", "Filename":
			return ErrUnsupportedType
		case "SizeBytes":
			if fe.Tag() == "lte" {
				return ErrFileTooLarge
			}
			return ErrEmptyFile
		}
	}
	return err
}

// Status returns the sanitized view of one job.
func (s *Service) Status(id string) (models.JobDetail, bool) {
	job, ok := s.store.Get(id)
	if !ok {
		return models.JobDetail{}, false
	}
	return job.Detail(), true
}

// List returns sanitized list views of every job, with bounded result
// previews for completed ones.
func (s *Service) List() []models.JobListItem {
	jobs := s.store.List()
	items := make([]models.JobListItem, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, job.ListItem(listPreviewLimit))
	}
	return items
}

// Remove deletes the job record and releases its temp artifacts. Returns
// false for unknown ids.
func (s *Service) Remove(id string) bool {
	job, ok := s.store.Delete(id)
	if !ok {
		return false
	}
	if job.TempFile != "" {
		if err := os.Remove(job.TempFile); err != nil && !os.IsNotExist(err) {
			s.log.WithField("job_id", id).WithError(err).Warn("Could not remove temp file")
		}
	}
	if job.TempDir != "" {
		if err := os.RemoveAll(job.TempDir); err != nil {
			s.log.WithField("job_id", id).WithError(err).Warn("Could not remove temp dir")
		}
	}
	s.log.WithField("job_id", id).Info("Job deleted")
	return true
}

// ActiveCount reports how many jobs are pending or processing.
func (s *Service) ActiveCount() int {
	return s.store.ActiveCount()
}
