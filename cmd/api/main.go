// cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/config"
	"vidlink-backend/internal/handler"
	"vidlink-backend/internal/logger"
	"vidlink-backend/internal/playback"
	"vidlink-backend/internal/service"
	"vidlink-backend/internal/storage"
	"vidlink-backend/internal/store"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type stores struct {
	drafts store.DraftStore
	videos store.VideoStore
	users  store.UserStore
	ping   func(ctx context.Context) error
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		Path:   cfg.LogPath,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	log := logger.App()

	// ── Persistence ───────────────────────────────────────────────────────────
	st, err := openStores(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open stores")
	}
	defer st.close()

	// ── Storage ───────────────────────────────────────────────────────────────
	fileStorage, err := storage.NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare upload dir")
	}
	log.WithField("dir", cfg.UploadDir).Info("Using local storage")

	// ── Services ──────────────────────────────────────────────────────────────
	errorLog := apperr.NewErrorLog(apperr.DefaultLogCapacity)
	drafts := service.NewDraftService(st.drafts, log)
	users := &service.UserService{Users: st.users, SessionTTL: cfg.SessionTTL}
	videos := &service.VideoService{Videos: st.videos}
	progress := service.NewProgressTracker()

	watch := playback.NewManager(videos, playback.Options{
		MaxTime:      cfg.MaxTime,
		StartTimeout: playback.DefaultOptions().StartTimeout,
		SettleDelay:  playback.DefaultOptions().SettleDelay,
	}, playback.Limits{Idle: cfg.WatchSessionIdle, MaxSessions: cfg.WatchSessionMax}, log)
	watchCtx, stopWatch := context.WithCancel(context.Background())
	watchDone := make(chan struct{})
	go func() {
		watch.Run(watchCtx)
		close(watchDone)
	}()

	// ── Handlers ──────────────────────────────────────────────────────────────
	resp := &handler.Responder{Log: logger.GetLogger("error"), Errors: errorLog}
	cookies := handler.Cookies{Secure: cfg.CookieSecure}
	h := &handler.Handlers{
		Auth: &handler.Auth{Users: users, Resp: resp},
		Account: &handler.AuthHandler{
			Users:       users,
			OAuth:       service.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
			Cookies:     cookies,
			FrontendURL: cfg.FrontendURL,
			Resp:        resp,
		},
		Drafts: &handler.DraftHandler{
			Drafts:   drafts,
			Metadata: &service.MetadataService{Drafts: drafts, RecheckDelay: service.DefaultOrientationRecheck},
			Cards:    &service.CardService{Drafts: drafts, MaxTime: cfg.MaxTime},
			Publish:  &service.PublishService{Drafts: drafts, Videos: st.videos, MaxTime: cfg.MaxTime, Log: log},
			Resp:     resp,
		},
		Upload: &handler.UploadHandler{
			Intake: &service.IntakeService{
				Drafts:         drafts,
				Storage:        fileStorage,
				Usernames:      users,
				Log:            log,
				DenyHosts:      cfg.UnsupportedLinkHosts,
				MaxUploadBytes: cfg.MaxUploadBytes,
			},
			Progress:       progress,
			Cookies:        cookies,
			Resp:           resp,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
		Videos: &handler.VideoHandler{Videos: videos, Playback: watch, MaxTime: cfg.MaxTime, Resp: resp},
		Dashboard: &handler.DashboardHandler{
			Dashboard: &service.DashboardService{Videos: st.videos},
			Errors:    errorLog,
			Resp:      resp,
		},
	}

	// ── Router ────────────────────────────────────────────────────────────────
	r := mux.NewRouter()

	// Health check for load balancers and liveness probes
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := st.ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	handler.Register(r, h)

	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))),
	)

	// ── Middleware ────────────────────────────────────────────────────────────
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.GetLogger("error")),
		handlers.PrintRecoveryStack(!cfg.IsProduction()),
	)
	access := logger.Access().Writer()
	defer access.Close()

	// ── HTTP Server with timeouts ─────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.CombinedLoggingHandler(access, recovery(cors(r))),
		ReadTimeout:  60 * time.Second, // large multipart uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreType}).Info("Vidlink service running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server error")
		}
	}()

	<-quit
	log.Info("Shutdown signal received, draining requests")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}

	// flush open watch sessions once no more events can arrive
	stopWatch()
	<-watchDone
	log.Info("Server stopped cleanly")
}

// openStores wires Postgres (drafts, videos) and MongoDB (users, sessions), or
// in-memory stores when STORE_TYPE=memory.
func openStores(cfg *config.Configuration, log *logrus.Logger) (*stores, error) {
	if cfg.StoreType == "memory" {
		log.Warn("Using in-memory stores; data is lost on restart")
		return &stores{
			drafts: store.NewMemoryDraftStore(),
			videos: store.NewMemoryVideoStore(),
			users:  store.NewMemoryUserStore(),
			ping:   func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// fail fast rather than accepting traffic
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	var dbName string
	if err := db.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbName); err == nil {
		log.WithField("database", dbName).Info("Connected to Postgres")
	}

	drafts := &store.PostgresDraftStore{DB: db}
	videos := &store.PostgresVideoStore{DB: db}
	if err := drafts.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := videos.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		db.Close()
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	users := store.NewMongoUserStore(client.Database(cfg.MongoDB))
	if err := users.EnsureIndexes(ctx); err != nil {
		db.Close()
		client.Disconnect(context.Background())
		return nil, err
	}
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	return &stores{
		drafts: drafts,
		videos: videos,
		users:  users,
		ping: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return client.Ping(ctx, nil)
		},
		close: func() {
			db.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(ctx)
		},
	}, nil
}
