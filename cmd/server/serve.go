package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/gtm-quest/internal/a2a"
	"github.com/BerylCAtieno/gtm-quest/internal/catalog"
	"github.com/BerylCAtieno/gtm-quest/internal/concierge"
	"github.com/BerylCAtieno/gtm-quest/internal/contact"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
	"github.com/BerylCAtieno/gtm-quest/internal/web"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.Open(cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if empty {
		stats, err := seed(ctx, store, cfg.SeedFile)
		if err != nil {
			return err
		}
		logger.Info("catalog seeded",
			zap.Int("agencies", stats.Agencies),
			zap.Int("articles", stats.Articles),
			zap.Int("seo_pages", stats.SEOPages),
		)
	}

	contacts, err := contact.NewService(ctx, store.DB(), logger)
	if err != nil {
		return err
	}

	sessions := session.NewStore(logger)
	var chats concierge.ChatStarter
	if cfg.ConciergeEnabled() {
		gemini, err := concierge.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("create gemini client: %w", err)
		}
		defer gemini.Close()
		chats = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, the AI strategist is disabled")
	}
	conc := concierge.New(chats, sessions, logger)

	// The live report follows an external agent when one is configured,
	// otherwise the in-process concierge.
	var source session.Source = sessions
	if cfg.AgentStateURL != "" {
		source = session.NewRemoteSource(cfg.AgentStateURL, logger)
	}

	a2aHandler, err := a2a.NewHandler(conc, cfg.SiteURL, logger)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Deps{
		Catalog:     store,
		Contact:     contacts,
		Concierge:   conc,
		Sync:        session.NewSynchronizer(source, logger),
		A2A:         a2aHandler,
		SiteURL:     cfg.SiteURL,
		ContactRate: cfg.ContactRatePerMinute,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("GTM Quest starting",
			zap.String("addr", httpServer.Addr),
			zap.String("site", cfg.SiteURL),
			zap.Bool("concierge", conc.Available()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
