package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rocjay1/bo-ledger/internal/config"
	"github.com/rocjay1/bo-ledger/internal/handler"
	"github.com/rocjay1/bo-ledger/internal/services"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbService, err := services.NewDatabaseService(ctx, cfg.TableServiceURL, cfg.EntriesTable, cfg.AccountsTable, cfg.CategoriesTable)
	cancel()
	if err != nil {
		slog.Error("Failed to init DatabaseService", "error", err)
		os.Exit(1)
	}

	blobService, err := services.NewBlobService(cfg.BlobServiceURL)
	if err != nil {
		slog.Error("Failed to init BlobService", "error", err)
		os.Exit(1)
	}

	queueService, err := services.NewQueueService(cfg.QueueServiceURL)
	if err != nil {
		slog.Error("Failed to init QueueService", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Database: dbService,
		Blob:     blobService,
		Queue:    queueService,
		Config:   cfg,
	}

	if cfg.EmailEnabled() {
		emailService, err := services.NewEmailService(cfg.CommunicationServicesEndpoint, cfg.SenderEmail, nil)
		if err != nil {
			slog.Warn("Failed to init EmailService (continuing anyway)", "error", err)
		} else {
			deps.Email = emailService
		}
	} else {
		slog.Info("email notifications disabled")
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/accounts", deps.HandleAccounts)
	mux.HandleFunc("POST /api/accounts", deps.HandleAccounts)

	mux.HandleFunc("GET /api/categories", deps.HandleCategories)
	mux.HandleFunc("POST /api/categories", deps.HandleCategories)

	mux.HandleFunc("GET /api/entries", deps.HandleEntries)
	mux.HandleFunc("POST /api/entries", deps.HandleEntries)
	mux.HandleFunc("DELETE /api/entries", deps.HandleEntries)
	mux.HandleFunc("POST /api/entries/postpone", deps.HandlePostpone)

	mux.HandleFunc("GET /api/bills/reconciliation", deps.HandleReconciliation)
	mux.HandleFunc("POST /api/bills/reconciliation", deps.HandleReconciliation)

	mux.HandleFunc("GET /api/stats", deps.HandleStats)
	mux.HandleFunc("GET /api/stats/drilldown", deps.HandleDrilldown)
	mux.HandleFunc("GET /api/balances", deps.HandleBalances)

	mux.HandleFunc("POST /api/upload", deps.HandleUpload)

	// Adapter for HTTP Trigger (since enableForwardingHttpRequest is false)
	mux.HandleFunc("/HttpTrigger", deps.HandleHttpTrigger(mux))

	mux.HandleFunc("/ProcessQueue", deps.ProcessQueue)
	mux.HandleFunc("/NightlyTrigger", deps.HandleNightlyTrigger)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("unmatched request", "method", r.Method, "path", r.URL.Path)
		http.NotFound(w, r)
	})

	slog.Info("Starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, loggingMiddleware(mux)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
			"content_length", r.ContentLength,
		)
	})
}
