package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/api/handlers"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/services/tetris"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
		}
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// データベースは任意。なければ結果を保存しないで動く
	var dbService *database.DatabaseService
	var resultRepo database.ResultRepository
	if cfg.DatabaseURL != "" {
		dbService, err = database.NewDatabaseService(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("データベースの初期化に失敗しました: %v", err)
		}
		defer dbService.Close()
		if err := dbService.EnsureSchema(); err != nil {
			log.Fatalf("スキーマの作成に失敗しました: %v", err)
		}
		resultRepo = database.NewResultRepository(dbService.DB)
	} else {
		log.Printf("DATABASE_URL is not set, game results will not be saved")
	}

	settings := cfg.Game.SessionSettings()
	if !cfg.Game.IsDefaultBoard() {
		log.Printf("Using custom board size %dx%d", cfg.Game.Width, cfg.Game.Height)
	}
	sessionManager := tetris.NewSessionManager(settings, resultRepo)
	gameHandler := handlers.NewGameHandler(sessionManager, handlers.AuthSettings{
		JWTSecret:  cfg.JWTSecret,
		BypassAuth: cfg.BypassAuth,
	}, cfg.AllowedOrigins)
	publicHandler := handlers.NewPublicHandler(dbService, settings)

	r := mux.NewRouter()
	// 認証不要な公開エンドポイント
	r.HandleFunc("/api/health", publicHandler.Health).Methods("GET")
	r.HandleFunc("/api/rules", publicHandler.Rules).Methods("GET")
	r.HandleFunc("/api/games/{gameID}", gameHandler.GetGame).Methods("GET")
	// WebSocketは最初のメッセージで認証する
	r.HandleFunc("/api/games/{gameID}/ws", gameHandler.HandleWebSocketConnection)

	if resultRepo != nil {
		resultHandler := handlers.NewResultHandler(resultRepo)
		r.HandleFunc("/api/results/top", resultHandler.GetTopResults).Methods("GET")
		r.HandleFunc("/api/results/user/{userID}", resultHandler.GetUserResult).Methods("GET")
	}

	// /api/protected/ で始まるパスにだけ認証をかける
	protectedRouter := r.PathPrefix("/api/protected").Subrouter()
	protectedRouter.Use(middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.BypassAuth))
	protectedRouter.HandleFunc("/games", gameHandler.CreateGame).Methods("POST")

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORSHandler(cfg.AllowedOrigins)(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("サーバーの起動に失敗しました: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sessionManager.Shutdown()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Printf("Server stopped")
}
