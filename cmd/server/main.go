package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/arifrhm/file-parser-summarizer/config"
	"github.com/arifrhm/file-parser-summarizer/handlers"
	"github.com/arifrhm/file-parser-summarizer/internal/jobservice"
	"github.com/arifrhm/file-parser-summarizer/internal/jobstore"
	"github.com/arifrhm/file-parser-summarizer/internal/worker"
	"github.com/arifrhm/file-parser-summarizer/middleware"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger()

	store := jobstore.NewStore()
	pool := worker.NewDispatcher(cfg.WorkerCount, cfg.JobQueueSize, log)
	pool.Run()

	service := jobservice.NewService(store, pool, log)
	handler := handlers.NewApplicationHandler(log, service)

	app := fiber.New(fiber.Config{
		// The 5 MiB cap is enforced by the service so oversized uploads get
		// a descriptive 400; the body limit just has to sit above it.
		BodyLimit: 2 * jobservice.MaxFileSize,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/", handler.Root)
	app.Get("/health", handler.HealthCheck)
	app.Post("/parse-file", handler.ParseFile)
	app.Get("/jobs", handler.ListJobs)
	app.Get("/jobs/:jobId", handler.GetJobStatus)
	app.Delete("/jobs/:jobId", handler.DeleteJob)

	go func() {
		log.Infof("Starting file parser service on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("Server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	pool.Stop()
	log.Info("Shutdown complete")
}
