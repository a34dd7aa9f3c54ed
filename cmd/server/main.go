package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/vecgfx/internal/asset"
	"github.com/inamate/vecgfx/internal/auth"
	"github.com/inamate/vecgfx/internal/config"
	"github.com/inamate/vecgfx/internal/db"
	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/drawing"
	"github.com/inamate/vecgfx/internal/emit/script"
	"github.com/inamate/vecgfx/internal/engine"
	"github.com/inamate/vecgfx/internal/export"
	mw "github.com/inamate/vecgfx/internal/middleware"
	"github.com/inamate/vecgfx/internal/preview"
	"github.com/inamate/vecgfx/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drawings live in Postgres when configured, in memory otherwise
	var drawings store.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		drawings = pg
	} else {
		slog.Warn("DATABASE_URL not set, drawings are kept in memory")
		drawings = store.NewMemory()
	}

	tmpl, err := script.LoadTemplate(cfg.ScriptPrologue, cfg.ScriptEpilogue)
	if err != nil {
		slog.Error("load script template", "error", err)
		os.Exit(1)
	}
	registry := engine.NewRegistry(tmpl)

	var defaultFont []byte
	if cfg.FontPath != "" {
		defaultFont, err = os.ReadFile(cfg.FontPath)
		if err != nil {
			slog.Error("read font", "error", err, "path", cfg.FontPath)
			os.Exit(1)
		}
	}

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	// The service publishes changes to the hub, the hub loads drawings
	// through the service.
	var drawingService *drawing.Service
	hub := preview.NewHub(registry, cfg.RenderOptions(), func(ctx context.Context, drawingID string) (*document.Drawing, error) {
		return drawingService.Load(ctx, drawingID)
	})
	go hub.Run()

	drawingService = drawing.NewService(drawings, registry, cfg.RenderOptions(), hub)
	drawingHandler := drawing.NewHandler(drawingService)

	previewHandler := preview.NewHandler(hub, authService,
		func(ctx context.Context, drawingID, userID string) error {
			_, err := drawingService.Get(ctx, drawingID, userID)
			return err
		},
		mw.OriginPatterns(cfg.Origins()),
	)

	exportHandler := export.NewHandler(registry, cfg.RenderOptions())
	assetHandler := asset.NewHandler(cfg.FontDir, defaultFont)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stateless rendering (public)
	r.HandleFunc("/render", exportHandler.Formats).Methods("GET")
	r.HandleFunc("/render/{format}", exportHandler.Render).Methods("POST", "OPTIONS")

	// Fonts and text (public)
	r.HandleFunc("/fonts/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.HandleFunc("/fonts/{fontId}", assetHandler.Remove).Methods("DELETE", "OPTIONS")
	r.PathPrefix("/fonts/").Handler(assetHandler.Serve()).Methods("GET")
	r.HandleFunc("/text", assetHandler.Text).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/drawings", drawingHandler.List).Methods("GET")
	api.HandleFunc("/drawings", drawingHandler.Create).Methods("POST")
	api.HandleFunc("/drawings/{drawingId}", drawingHandler.Get).Methods("GET")
	api.HandleFunc("/drawings/{drawingId}", drawingHandler.Update).Methods("PUT")
	api.HandleFunc("/drawings/{drawingId}", drawingHandler.Delete).Methods("DELETE")
	api.HandleFunc("/drawings/{drawingId}/transform", drawingHandler.Transform).Methods("POST")
	api.HandleFunc("/drawings/{drawingId}/bounds", drawingHandler.Bounds).Methods("GET")
	api.HandleFunc("/drawings/{drawingId}/render/{format}", drawingHandler.Render).Methods("GET")

	// WebSocket endpoint
	r.Handle("/ws/drawings/{drawingId}", previewHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Disconnect preview clients before draining requests
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "formats", registry.Names())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
