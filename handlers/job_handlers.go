package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/arifrhm/file-parser-summarizer/models"
	"github.com/arifrhm/file-parser-summarizer/utils"
)

// JobListResponse wraps the bulk job listing.
type JobListResponse struct {
	TotalJobs int                  `json:"total_jobs"`
	Jobs      []models.JobListItem `json:"jobs"`
}

// GetJobStatus godoc
// @Summary Get the status of one job
// @Description Returns the full job record including progress and, once completed, the result.
// @Tags jobs
// @Produce json
// @Param   jobId path string true "Job ID"
// @Success 200 {object} models.JobDetail
// @Failure 404 {object} ErrorResponse "Unknown job id"
// @Router /jobs/{jobId} [get]
func (h *ApplicationHandler) GetJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	detail, ok := h.Jobs.Status(jobID)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Job with ID '%s' not found", jobID))
	}
	return c.Status(fiber.StatusOK).JSON(detail)
}

// ListJobs godoc
// @Summary List every job
// @Description Returns all jobs with bounded result previews for completed ones.
// @Tags jobs
// @Produce json
// @Success 200 {object} JobListResponse
// @Router /jobs [get]
func (h *ApplicationHandler) ListJobs(c *fiber.Ctx) error {
	items := h.Jobs.List()
	return c.Status(fiber.StatusOK).JSON(JobListResponse{
		TotalJobs: len(items),
		Jobs:      items,
	})
}

// DeleteJob godoc
// @Summary Delete a job
// @Description Removes the job record and its temporary files.
// @Tags jobs
// @Produce json
// @Param   jobId path string true "Job ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse "Unknown job id"
// @Router /jobs/{jobId} [delete]
func (h *ApplicationHandler) DeleteJob(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	if !h.Jobs.Remove(jobID) {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Job with ID '%s' not found", jobID))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Job '%s' deleted successfully", jobID),
		"job_id":  jobID,
	})
}
