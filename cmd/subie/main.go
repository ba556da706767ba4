package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/subiehq/subie/billing"
	billingmemory "github.com/subiehq/subie/billing/memory"
	"github.com/subiehq/subie/cache"
	cachememory "github.com/subiehq/subie/cache/memory"
	cacheredis "github.com/subiehq/subie/cache/redis"
	"github.com/subiehq/subie/email"
	"github.com/subiehq/subie/identity/local"
	"github.com/subiehq/subie/internal/config"
	profilepg "github.com/subiehq/subie/profile/pg"
	"github.com/subiehq/subie/server"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()
	logger := newLogger(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessionTTL, err := time.ParseDuration(c.GetSessionTTL())
	if err != nil {
		return fmt.Errorf("parse session TTL: %w", err)
	}

	sessionCache := newSessionCache(c, sessionTTL)
	sender := newSender(c)

	oauthProviders, err := local.NewOAuthProviders(ctx, c)
	if err != nil {
		return fmt.Errorf("oauth provider discovery: %w", err)
	}

	identitySvc, err := local.NewService(
		local.NewMemoryCredentialRepo(),
		sessionCache,
		sender,
		[]byte(c.GetSessionSigningKey()),
		sessionTTL,
		logger,
		local.WithOAuthProviders(oauthProviders),
		local.WithBaseURL(c.GetBaseURL()),
	)
	if err != nil {
		return fmt.Errorf("identity service: %w", err)
	}

	pool, err := pgxpool.New(ctx, c.GetPostgresDSN())
	if err != nil {
		return fmt.Errorf("postgres pool: %w", err)
	}
	defer pool.Close()
	profiles := profilepg.NewStore(pool)

	var ledger billing.Ledger = billingmemory.NewLedger()

	srv, err := server.New(c, identitySvc, profiles, ledger, prometheus.NewRegistry(), logger)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

func newLogger(c config.Config) zerolog.Logger {
	if c.GetEnv() == "DEV" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func newSessionCache(c config.Config, ttl time.Duration) cache.Cache {
	if c.GetCacheKind() == "redis" {
		return cacheredis.New(c.GetRedisAddr(), c.GetRedisDB(), c.GetRedisPrefix())
	}
	return cachememory.New(ttl)
}

func newSender(c config.Config) email.Sender {
	if c.GetSmtpAccount() == "" {
		return email.Noop{}
	}
	port, err := strconv.Atoi(c.GetSmtpPort())
	if err != nil {
		port = 587
	}
	return email.NewSMTPSender(c.GetSmtpHost(), port, c.GetSmtpSender(), c.GetSmtpAccount(), c.GetSmtpPassword())
}

func listenAndServe(server *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
