package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"aimtrainer/internal/analytics"
	"aimtrainer/internal/config"
	"aimtrainer/internal/db"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/metrics"
	"aimtrainer/internal/rooms"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// GameConfig maps the application settings onto a room's game.
func GameConfig(appCfg config.Config) gamedata.Config {
	cfg := gamedata.DefaultConfig()
	cfg.ScenarioDuration = appCfg.ScenarioDuration
	cfg.ScenarioDelay = appCfg.ScenarioDelay
	cfg.ShotCooldown = appCfg.ShotCooldown
	cfg.FOVDegrees = appCfg.FOVDegrees
	cfg.Seed = appCfg.Seed
	return cfg
}

// Routes builds the HTTP mux for s.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rooms/create", s.handleCreateRoom)
	mux.HandleFunc("POST /rooms/join", s.handleJoinRoom)
	mux.HandleFunc("GET /room/events", s.handleEvents)
	mux.HandleFunc("GET /room/ws", s.handleWS)
	mux.HandleFunc("POST /room/play-again", s.handlePlayAgain)
	mux.HandleFunc("POST /room/leave", s.handleLeaveRoom)
	mux.HandleFunc("GET /room/{code}", s.handleRoomWithCode)
	mux.HandleFunc("GET /room/{code}/curve", s.handleCurve)
	mux.HandleFunc("GET /room/{code}/profiles", s.handleExportProfiles)
	mux.HandleFunc("POST /room/{code}/profiles", s.handleSaveProfile)
	mux.HandleFunc("GET /sensitivity/convert", s.handleConvert)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /analytics/leaderboard", s.handleAnalyticsLeaderboard)
	mux.HandleFunc("GET /analytics/player/{id}", s.handleAnalyticsPlayer)
	mux.HandleFunc("GET /analytics/session/{id}", s.handleAnalyticsSession)
	return mux
}

// Run serves until ctx is cancelled or a component fails.
func Run(ctx context.Context) error {
	appCfg := config.Load()

	srv := &Server{
		Rooms:   rooms.NewStore(GameConfig(appCfg)),
		Metrics: metrics.New(prometheus.NewRegistry()),
	}

	// Optional database connection
	var database *db.DB
	if appCfg.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(ctx); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			defer database.Close()
			srv.Store = database
			srv.Analytics = analytics.NewQueries(database)
			srv.ShotBuffer = make(chan db.ShotEvent, shotBufferSize)
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	httpSrv := &http.Server{
		Addr:    "0.0.0.0:" + appCfg.Port,
		Handler: srv.Routes(),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		return srv.Rooms.Run(ctx)
	})
	if srv.ShotBuffer != nil {
		eg.Go(func() error {
			return shotBatchWriter(ctx, srv.Store, srv.ShotBuffer)
		})
	}
	eg.Go(func() error {
		<-ctx.Done()
		log.Println("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
