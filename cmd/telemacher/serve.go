package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/telemacher/internal/config"
	"github.com/tbourn/telemacher/internal/forecast"
	"github.com/tbourn/telemacher/internal/geocode"
	httpapi "github.com/tbourn/telemacher/internal/http"
	"github.com/tbourn/telemacher/internal/nlu"
	"github.com/tbourn/telemacher/internal/observability"
	"github.com/tbourn/telemacher/internal/repo"
	"github.com/tbourn/telemacher/internal/services"
	"github.com/tbourn/telemacher/internal/upstream"
)

// serve runs the chat and ops listeners until SIGINT/SIGTERM or until one
// of them fails, then drains both within cfg.ShutdownTimeout.
func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openStore(cfg)
	if err != nil {
		return err
	}

	parser, closeParser, err := buildParser(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeParser() }()

	weather, err := buildWeather(cfg, db, parser)
	if err != nil {
		return err
	}

	public := gin.New()
	httpapi.RegisterRoutes(public, db, weather, cfg)
	ops := gin.New()
	httpapi.RegisterOpsRoutes(ops, db, cfg)

	servers := []*http.Server{
		newServer(cfg, cfg.PublicAddr(), public),
		newServer(cfg, cfg.OpsAddr(), ops),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(sctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func newServer(cfg config.Config, addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// openStore returns nil when DB_PATH is empty.
func openStore(cfg config.Config) (*gorm.DB, error) {
	if cfg.DBPath == "" {
		log.Info().Msg("DB_PATH empty: transcripts and persistent geocodes disabled")
		return nil, nil
	}
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func upstreamOptions(cfg config.Config) []upstream.Option {
	rp := upstream.DefaultRetryPolicy()
	rp.MaxRetries = cfg.Upstream.MaxRetries
	return []upstream.Option{
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithRetryPolicy(rp),
		upstream.WithUserAgent("telemacher/" + version),
	}
}

// buildParser returns the configured NLU backend and its release func.
func buildParser(ctx context.Context, cfg config.Config) (nlu.Parser, func() error, error) {
	switch cfg.Upstream.NLUBackend {
	case config.NLUBackendGemini:
		p, err := nlu.NewGeminiParser(ctx, cfg.Upstream.GeminiAPIKey, cfg.Upstream.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini: %w", err)
		}
		return p, p.Close, nil
	default:
		return nlu.NewHTTPParser(cfg.Upstream.NLUURL, upstreamOptions(cfg)...), func() error { return nil }, nil
	}
}

func buildWeather(cfg config.Config, db *gorm.DB, parser nlu.Parser) (*services.WeatherService, error) {
	opts := upstreamOptions(cfg)

	var cacheOpts []geocode.Option
	if db != nil {
		cacheOpts = append(cacheOpts, geocode.WithStore(geocode.DBStore{DB: db}))
	}
	places := geocode.NewGoogleClient(cfg.Upstream.GoogleAPIKey, cfg.Upstream.GooglePlacesURL, opts...)
	cache, err := geocode.NewCache(places, cfg.GeocodeCacheSize, cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("geocode cache: %w", err)
	}

	darkSky := forecast.NewDarkSkyClient(cfg.Upstream.DarkSkyAPIKey, cfg.Upstream.DarkSkyURL, opts...)
	return services.NewWeatherService(parser, cache, forecast.NewAggregator(darkSky), cfg.Upstream.NLULocale), nil
}
