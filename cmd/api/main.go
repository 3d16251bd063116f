package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"college/internal/academics"
	"college/internal/audit"
	"college/internal/auth"
	"college/internal/board"
	"college/internal/config"
	"college/internal/handler"
	"college/internal/httpmiddleware"
	"college/internal/identity"
	"college/internal/queue"
	"college/internal/revocation"
	"college/internal/store"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.WithError(err).Fatal("http server failed")
	}
}

func runHTTP(cfg config.App) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(cfg.DatabaseURL)
	if db == nil {
		return err
	}
	if err != nil {
		log.WithError(err).Warn("db not reachable, serving degraded")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx, db.Client); err != nil {
			log.WithError(err).Warn("schema migration failed")
		}
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	passwords, err := identity.PasswordsFor(cfg.PasswordScheme)
	if err != nil {
		return err
	}
	if cfg.PasswordScheme != "bcrypt" {
		log.Warn("PASSWORD_SCHEME=plain stores and compares passwords verbatim")
	}

	ledger := revocation.NewLedger(db.Client, redisClient.Client)
	issuer := auth.NewIssuer(auth.Settings{
		Secret:     cfg.JWTSecretKey,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}, ledger)
	identities := identity.NewStore(db.Client, passwords)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		mem := queue.NewInMemory(256)
		q = mem
		// No separate worker can read an in-process queue, so drain it here.
		go func() {
			if err := audit.Drain(ctx, mem, audit.NewStore(db.Client)); err != nil {
				log.WithError(err).Error("audit drain stopped")
			}
		}()
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	apiLimiter, loginLimiter := limiters(cfg, redisClient)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.CORS(cfg.FrontendOrigin))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.RateLimit(apiLimiter, "api"))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", handler.Health(map[string]func(context.Context) bool{
		"db":    db.Healthy,
		"redis": redisClient.Healthy,
	}))

	handler.Routes{
		Guard:      auth.NewGuard(issuer, cfg.CSRFProtect),
		Auth:       handler.NewAuthHandler(identities, issuer, auth.NewCookies(cfg.DevMode), ledger, audit.NewQueueRecorder(q)),
		People:     handler.NewPeopleHandler(identities, identity.NewAllocator(db.Client)),
		Academics:  handler.NewAcademicsHandler(academics.NewRepository(db.Client)),
		Board:      handler.NewBoardHandler(board.NewRepository(db.Client)),
		LoginLimit: httpmiddleware.RateLimit(loginLimiter, "login"),
	}.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced shutdown")
	}

	log.Info("server exited")
	return nil
}

// limiters picks shared Redis windows when Redis is up and in-process buckets otherwise.
func limiters(cfg config.App, redisClient *store.Redis) (httpmiddleware.Limiter, httpmiddleware.Limiter) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if redisClient.Healthy(ctx) {
		return httpmiddleware.NewRedisWindow(redisClient.Client, "api", cfg.RateLimitPerMin),
			httpmiddleware.NewRedisWindow(redisClient.Client, "login", cfg.LoginLimitPerMin)
	}
	log.Warn("redis not reachable, using in-process rate limits")
	return httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin),
		httpmiddleware.NewTokenBucket(cfg.LoginLimitPerMin, cfg.LoginLimitPerMin)
}
