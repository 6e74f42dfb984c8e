package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/arifrhm/file-parser-summarizer/internal/jobservice"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger *logrus.Logger
	Jobs   *jobservice.Service
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(logger *logrus.Logger, jobs *jobservice.Service) *ApplicationHandler {
	return &ApplicationHandler{
		Logger: logger,
		Jobs:   jobs,
	}
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
