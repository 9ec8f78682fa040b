package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/markbook-app/markbook-api/internal/config"
	"github.com/markbook-app/markbook-api/internal/handler"
	"github.com/markbook-app/markbook-api/internal/middleware"
	"github.com/markbook-app/markbook-api/internal/router"
	"github.com/markbook-app/markbook-api/internal/service"
	"github.com/markbook-app/markbook-api/internal/storage"
	"github.com/markbook-app/markbook-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	kv, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer kv.Close()

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	markStore := store.NewMarkStore(loadCtx, kv, logger)
	courseworkStore := store.NewCourseworkStore(loadCtx, kv, logger)
	cancelLoad()

	validate := validator.New(validator.WithRequiredStructEnabled())

	accessService := service.NewAccessService(cfg, markStore, logger)
	markService := service.NewMarkService(markStore, accessService, validate, cfg.DefaultStudentPassword, logger)
	courseworkService := service.NewCourseworkService(courseworkStore, validate, logger)
	seedService := service.NewSeedService(markStore, cfg.SeedEnabled, cfg.SeedToken, logger)

	recordsHandler := handler.NewRecordsHandler(markService, accessService, logger)
	teacherHandler := handler.NewTeacherHandler(markService, courseworkService, accessService, logger)
	studentHandler := handler.NewStudentHandler(markService, courseworkService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		RecordsHandler: recordsHandler,
		TeacherHandler: teacherHandler,
		StudentHandler: studentHandler,
		SeedHandler:    seedHandler,
		Access:         accessService,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
