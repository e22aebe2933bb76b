package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/oauth2"

	api "github.com/mind-engage/mindengage-blog/internal/api/http"
	auth "github.com/mind-engage/mindengage-blog/internal/auth/middleware"
	"github.com/mind-engage/mindengage-blog/internal/blog"
	"github.com/mind-engage/mindengage-blog/internal/chat"
	"github.com/mind-engage/mindengage-blog/internal/config"
	"github.com/mind-engage/mindengage-blog/internal/db"
	"github.com/mind-engage/mindengage-blog/internal/identity"
	"github.com/mind-engage/mindengage-blog/internal/speech"
	"github.com/mind-engage/mindengage-blog/internal/storage"
	"github.com/mind-engage/mindengage-blog/internal/textanalytics"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	var tokens oauth2.TokenSource
	if cfg.DB.TokenURL != "" {
		tokens, err = identity.NewTokenSource(ctx, identity.Config{
			TokenURL:     cfg.DB.TokenURL,
			ClientID:     cfg.DB.ClientID,
			ClientSecret: cfg.DB.ClientSecret,
			Scopes:       []string{cfg.DB.TokenScope},
			Timeout:      cfg.UpstreamTimeout,
		})
		if err != nil {
			logger.Error("identity", "err", err)
			os.Exit(1)
		}
	}
	pool := db.NewPool(db.Driver(cfg.DB.Driver), cfg.DB.DSN, tokens)
	defer pool.Close()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(2 * cfg.UpstreamTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Blob store ---
	var blobs storage.BlobStore
	switch cfg.Blob.Driver {
	case "s3":
		blobs, err = storage.NewS3Store(storage.S3Config{
			Bucket:    cfg.Blob.Bucket,
			Region:    cfg.Blob.Region,
			Endpoint:  cfg.Blob.Endpoint,
			PublicURL: cfg.Blob.PublicURL,
		})
	default:
		var fs *storage.FSStore
		fs, err = storage.NewFSStore(cfg.Blob.BasePath, cfg.Blob.PublicURL)
		if err == nil {
			r.Handle("/media/*", http.StripPrefix("/media/", fs.Handler()))
			blobs = fs
		}
	}
	if err != nil {
		logger.Error("blob store", "driver", cfg.Blob.Driver, "err", err)
		os.Exit(1)
	}

	// --- Upstream services ---
	text := textanalytics.New(cfg.Text.Endpoint, cfg.Text.Key, cfg.UpstreamTimeout)
	bot := chat.New(cfg.Chat.URL, cfg.Chat.APIKey, cfg.UpstreamTimeout)
	voice := speech.New(speech.Config{
		Region:   cfg.Voice.Region,
		Key:      cfg.Voice.Key,
		Endpoint: cfg.Voice.Endpoint,
		Voice:    cfg.Voice.Name,
		Timeout:  cfg.UpstreamTimeout,
	})

	svc := blog.NewService(blog.NewSQLStore(pool), blobs, text, logger)

	deps := api.Deps{
		Blogs:          svc,
		Blobs:          blobs,
		Summarizer:     text,
		Chat:           bot,
		Speech:         voice,
		DB:             pool,
		Log:            logger,
		SpeechDir:      cfg.Voice.TmpDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	// Local login guards the write routes when enabled.
	if cfg.Auth.Enabled {
		authSvc := auth.NewAuthService(cfg.Auth.HMACSecret, cfg.Auth.AdminUser, cfg.Auth.AdminPassHash)
		r.Post("/auth/login", auth.LoginHandler(authSvc))
		deps.Guard = auth.JWTMiddleware(authSvc)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		pctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := pool.Ping(pctx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if cfg.APIPrefix == "" || cfg.APIPrefix == "/" {
		api.Mount(r, deps)
	} else {
		r.Route(cfg.APIPrefix, func(ar chi.Router) { api.Mount(ar, deps) })
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("shutdown", "err", err)
		}
	}()

	logger.Info("listening",
		"addr", cfg.HTTPAddr,
		"prefix", cfg.APIPrefix,
		"db", cfg.DB.Driver,
		"blob", cfg.Blob.Driver,
		"auth", cfg.Auth.Enabled,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "err", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func newLogger(c config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
