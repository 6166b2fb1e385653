package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"motionpitch/internal/adapter/repo"
	"motionpitch/internal/deck"
	"motionpitch/internal/events"
	"motionpitch/internal/http/handlers"
	"motionpitch/internal/http/httpapi"
	"motionpitch/internal/infra"
	"motionpitch/internal/infra/geoip"
	"motionpitch/internal/middleware"
	"motionpitch/internal/planner"
	"motionpitch/internal/prompt"
	"motionpitch/internal/providers/genai"
	"motionpitch/internal/quota"
	"motionpitch/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, continuing without country lookups")
	}

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file store")
	}

	client, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		PlanModel:  cfg.PlanModel,
		ImageModel: cfg.ImageModel,
		VideoModel: cfg.VideoModel,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build genai client")
	}

	hub := events.NewHub(logger)
	sink := events.MultiSink{hub, events.NewLogSink(logger)}

	var quotaStore quota.Store
	if redisClient != nil {
		quotaStore = quota.NewRedisStore(redisClient, cfg.GuestQuotaTTL)
	} else {
		logger.Info().Msg("redis not configured, using in-memory quota store")
		quotaStore = quota.NewMemoryStore(cfg.GuestQuotaTTL)
	}
	gate := quota.NewGate(quotaStore, cfg.GuestLimit)

	cache := prompt.NewCacheManager(client, cfg.CacheTTL, logger)
	plans := planner.New(client, cache, sink, logger, planner.Options{
		FilePollInterval: cfg.FilePollInterval,
		FilePollMax:      cfg.FilePollMax,
	})
	animator := deck.NewVideoAnimator(client, store, logger, deck.AnimatorOptions{
		PollInterval: cfg.VideoPollInterval,
		MaxPolls:     cfg.VideoPollMax,
	})
	batch := deck.NewBatchRunner(client, animator, store, sink, logger, deck.BatchOptions{
		Workers:        cfg.BatchWorkers,
		PlaceholderURL: store.PublicURL("placeholder.png"),
	})

	users := repo.NewUserRepository(dbpool)
	presentations := repo.NewPresentationRepository(dbpool)
	service := deck.NewService(gate, plans, batch, presentations, sink, logger)

	app := &handlers.App{
		Service:       service,
		Users:         users,
		Presentations: presentations,
		Hub:           hub,
		Store:         store,
		Logger:        logger,
		JWTSecret:     cfg.JWTSecret,
		GuestLimit:    cfg.GuestLimit,
	}

	var lookup middleware.CountryLookup
	if geoResolver != nil {
		lookup = geoResolver.CountryCode
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   "en",
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		StaticDir:       store.BasePath(),
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
