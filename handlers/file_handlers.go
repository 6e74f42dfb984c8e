package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/arifrhm/file-parser-summarizer/internal/jobservice"
	"github.com/arifrhm/file-parser-summarizer/utils"
)

// JobResponse is returned when a file has been accepted for processing.
type JobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ParseFile godoc
// @Summary Upload a file for background parsing
// @Description Accepts a multipart file, validates it and schedules parsing. Returns a job id for tracking.
// @Tags jobs
// @Accept  mpfd
// @Produce json
// @Param   file formData file true "File to parse (sql, json, txt or csv)"
// @Success 202 {object} JobResponse "File accepted, job scheduled"
// @Failure 400 {object} ErrorResponse "Unsupported type, empty file or file too large"
// @Failure 500 {object} ErrorResponse "Job could not be scheduled"
// @Router /parse-file [post]
func (h *ApplicationHandler) ParseFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Logger.WithError(err).Warn("Upload request without a usable file field")
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Error getting file: %v", err))
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.Logger.WithError(err).Error("Could not open uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error opening file: %v", err))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		h.Logger.WithError(err).Error("Could not read uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error reading file: %v", err))
	}

	jobID, err := h.Jobs.Submit(fileHeader.Filename, content)
	if err != nil {
		switch {
		case errors.Is(err, jobservice.ErrUnsupportedType),
			errors.Is(err, jobservice.ErrEmptyFile),
			errors.Is(err, jobservice.ErrFileTooLarge):
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.Logger.WithError(err).Error("Job submission failed")
			return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error initializing job: %v", err))
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(JobResponse{
		JobID:   jobID,
		Status:  "pending",
		Message: fmt.Sprintf("File '%s' accepted. Processing has been scheduled.", fileHeader.Filename),
	})
}
