package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/config"
	"github.com/anshulagrawal2902/MSS/internal/database"
	"github.com/anshulagrawal2902/MSS/internal/handler"
	"github.com/anshulagrawal2902/MSS/internal/middleware"
	"github.com/anshulagrawal2902/MSS/internal/queue"
	"github.com/anshulagrawal2902/MSS/internal/repository"
	"github.com/anshulagrawal2902/MSS/internal/router"
	queue_publisher "github.com/anshulagrawal2902/MSS/internal/service"
	"github.com/anshulagrawal2902/MSS/internal/socket"
)

func main() {
	// A missing .env is fine in containers where the environment is
	// injected directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("main: no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("main: open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("main: ensure schema: %v", err)
	}
	cancel()

	// Stores
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	ops := repository.NewOperationRepo(db)
	perms := repository.NewPermissionRepo(db)
	messages := repository.NewMessageRepo(db)
	changes := repository.NewChangeRepo(db)

	// Realtime layer
	hub := socket.NewHub()
	presence := socket.NewPresence()
	registry := socket.NewRegistry()
	gate := socket.NewGate(perms)
	session := socket.NewSession(hub, presence, registry, users, perms, cfg.JWTSecret)
	collab := socket.NewCollab(session, hub, gate, perms, messages, changes, queue_publisher.New())
	dispatcher := &socket.Dispatcher{Session: session, Collab: collab}

	// Background consumer appends saved-document events to the audit log.
	go func() {
		if err := queue.StartChangesConsumer(); err != nil {
			log.Printf("main: changes consumer stopped: %v", err)
		}
	}()

	// Optional Redis-backed rate limit on mutating collab routes.
	var limiter echo.MiddlewareFunc
	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled {
		if rdb := config.NewRedisClient(); rdb != nil {
			limiter = middleware.NewTokenBucket(rlCfg, rdb)
		} else {
			log.Printf("main: rate limit enabled but redis unavailable; running without limiter")
		}
	}

	e := echo.New()
	e.HideBanner = true

	auth := handler.NewAuthHandler(cfg, users, tokens)
	opH := handler.NewOperationHandler(ops, gate, collab)
	permH := handler.NewPermissionHandler(perms, gate, collab)
	msgH := handler.NewMessageHandler(messages, gate)
	docH := handler.NewDocumentHandler(changes, ops, gate, collab)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterCollab(e, cfg.JWTSecret, users, limiter, opH, permH, msgH, docH)
	router.RegisterSocket(e, dispatcher)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
