package jobservice

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arifrhm/file-parser-summarizer/internal/jobstore"
	"github.com/arifrhm/file-parser-summarizer/internal/parser"
	"github.com/arifrhm/file-parser-summarizer/models"
)

// parseJob is one scheduled parse execution. It drives the record through
// processing to exactly one terminal state; every failure inside the
// pipeline is converted into a failed transition and never escapes the
// worker.
type parseJob struct {
	id       string
	fileType parser.FileType
	filename string
	sizeKB   float64
	path     string
	store    *jobstore.Store
	parsers  parser.Registry

	terminal bool // set once a terminal transition has been recorded
}

func (j *parseJob) ID() string { return j.id }

func (j *parseJob) Execute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during processing: %v", r)
			j.fail(err)
		}
	}()

	typeName := strings.ToUpper(string(j.fileType))

	started := time.Now()
	processing := models.StatusProcessing
	updated := j.store.Update(j.id, models.JobUpdate{
		Status:    &processing,
		StartedAt: &started,
		Progress: &models.Progress{
			Stage:   models.StageReading,
			Message: fmt.Sprintf("Reading %s file...", typeName),
		},
	})
	if !updated {
		// Job was deleted before execution started; nothing to do.
		return nil
	}

	raw, err := os.ReadFile(j.path)
	if err != nil {
		j.fail(fmt.Errorf("read file: %w", err))
		return err
	}
	content := strings.ToValidUTF8(string(raw), "")

	j.store.SetProgress(j.id, models.StageParsing, fmt.Sprintf("Parsing %s file...", typeName))

	p, err := j.parsers.Lookup(j.fileType)
	if err != nil {
		j.fail(err)
		return err
	}
	info, err := p.Parse(parser.Input{Content: content, Path: j.path})
	if err != nil {
		j.fail(err)
		return err
	}

	j.store.SetProgress(j.id, models.StageSummary, "Generating summary...")

	result := models.Result{
		Filename: j.filename,
		FileType: string(j.fileType),
		SizeKB:   j.sizeKB,
		Summary:  info.Summarize(j.filename, j.sizeKB),
		KeyInfo:  info,
	}

	completed := models.StatusCompleted
	finished := time.Now()
	j.store.Update(j.id, models.JobUpdate{
		Status:      &completed,
		CompletedAt: &finished,
		Result:      &result,
		Progress: &models.Progress{
			Stage:   models.StageCompleted,
			Message: "Processing finished",
		},
	})
	j.terminal = true
	return nil
}

// fail records the single failed transition for this job. Repeated calls
// (including the panic path firing after an earlier failure) are no-ops.
func (j *parseJob) fail(cause error) {
	if j.terminal {
		return
	}
	j.terminal = true

	failed := models.StatusFailed
	finished := time.Now()
	msg := cause.Error()
	j.store.Update(j.id, models.JobUpdate{
		Status:      &failed,
		CompletedAt: &finished,
		Error:       &msg,
		Progress: &models.Progress{
			Stage:   models.StageFailed,
			Message: fmt.Sprintf("Error: %s", msg),
		},
	})
}
