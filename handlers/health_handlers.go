package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ServiceVersion is reported by the root and health endpoints.
const ServiceVersion = "2.0.0"

// HealthResponse is the health endpoint payload. ActiveJobs counts jobs
// that are pending or processing.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	ActiveJobs int    `json:"active_jobs"`
}

// Root godoc
// @Summary Service information
// @Description Lists the service name, version and available endpoints.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *ApplicationHandler) Root(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"service": "File Parser & Summary Generator - Background Processing",
		"version": ServiceVersion,
		"endpoints": fiber.Map{
			"POST /parse-file":      "Upload a file for background processing",
			"GET /jobs/{job_id}":    "Check job status by ID",
			"GET /jobs":             "List all jobs",
			"DELETE /jobs/{job_id}": "Delete a job from memory",
			"GET /health":           "Service health check",
		},
	})
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports service health and the number of active jobs.
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *ApplicationHandler) HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:     "healthy",
		Version:    ServiceVersion,
		ActiveJobs: h.Jobs.ActiveCount(),
	})
}
