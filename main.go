package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pri779/Ayurvedic-chatbot/config"
	"github.com/pri779/Ayurvedic-chatbot/data"
	"github.com/pri779/Ayurvedic-chatbot/dataset"
	"github.com/pri779/Ayurvedic-chatbot/handlers"
	"github.com/pri779/Ayurvedic-chatbot/health"
	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/logging"
	"github.com/pri779/Ayurvedic-chatbot/pdf"
	"github.com/pri779/Ayurvedic-chatbot/scheduler"
	"github.com/pri779/Ayurvedic-chatbot/server"
	"github.com/pri779/Ayurvedic-chatbot/validation"
	"github.com/pri779/Ayurvedic-chatbot/views"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions(logging.Options{
		Dir:            cfg.LogDir,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	logging.Info("Configuration loaded", "env", cfg.Env.String(), "data_file", cfg.DataFile, "pdf_renderer", cfg.PDFRenderer, "pdf_cache", cfg.PDFCache)

	store, err := loadStore(cfg.DataFile)
	if err != nil {
		logging.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}

	validator := validation.NewDataValidator()
	logDataQuality(validator.ReportDataQuality(store.Records()))

	renderer, closeRenderer := newRenderer(cfg)
	defer closeRenderer()

	cache, closeCache := newCache(cfg)
	defer closeCache()

	pdfService := pdf.NewService(renderer, cache, cfg.PDFCacheTTL, cfg.PDFTimeout)
	if err := pdfService.Ping(context.Background()); err != nil {
		logging.Warn("PDF cache unreachable, rendering uncached until it recovers", "error", err)
	}

	checker := health.NewHealthChecker(store, pdfService.Enabled())
	handler := handlers.NewHTTPHandler(store, validator, views.MustNew(), pdfService, checker)

	limiter := server.NewRateLimiter()
	srv := server.NewServer(cfg, handler, limiter)

	sched := scheduler.NewScheduler(limiter, store)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		logging.Error("Server failed to start", "error", err)
		sched.Stop()
		closeCache()
		closeRenderer()
		logging.Close()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}

// loadStore reads the dataset once and wraps it for serving
func loadStore(path string) (*data.DataContainer, error) {
	snapshot, err := data.SnapshotFile(path)
	if err != nil {
		return nil, err
	}

	table, _, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	return data.NewDataContainer(table, path, snapshot), nil
}

func newRenderer(cfg *config.Config) (interfaces.PDFRenderer, func()) {
	if cfg.PDFRenderer == config.RendererNone {
		logging.Warn("PDF rendering disabled, downloads will be refused")
		return pdf.DisabledRenderer{}, func() {}
	}

	chrome := pdf.NewChromeRenderer(pdf.ChromeConfig{ControlURL: cfg.ChromeURL, Bin: cfg.ChromeBin})
	return chrome, func() { chrome.Close() }
}

func newCache(cfg *config.Config) (interfaces.PDFCache, func()) {
	switch cfg.PDFCache {
	case config.CacheRedis:
		rc := pdf.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return rc, func() { rc.Close() }
	case config.CacheNone:
		return pdf.NoCache{}, func() {}
	default:
		return pdf.NewMemoryCache(cfg.PDFCacheSize, cfg.PDFCacheTTL), func() {}
	}
}

func logDataQuality(report *interfaces.DataQualityReport) {
	if report.InvalidDiseases > 0 {
		logging.Warn("Rows with a disease name the form rejects cannot be looked up",
			"count", report.InvalidDiseases,
			"rows", report.InvalidDiseaseRows,
		)
	}

	if report.UnknownAgeGroups > 0 {
		logging.Warn("Rows with unrecognized age group never match",
			"count", report.UnknownAgeGroups,
			"rows", report.UnknownAgeGroupRows,
		)
	}

	if report.RecordsWithoutRemedies > 0 {
		logging.Warn("Rows without remedy steps", "count", report.RecordsWithoutRemedies)
	}

	if len(report.DuplicateDiseaseAgePair) > 0 {
		logging.Warn("Duplicate disease and age group pairs detected",
			"total", len(report.DuplicateDiseaseAgePair),
			"pairs", report.DuplicateDiseaseAgePair,
		)
	}

	logging.Debug("Rows without images", "count", report.RecordsWithoutImages)
}
