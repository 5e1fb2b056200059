package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/config"
	"github.com/xzero11x/app-hotel-sub001/internal/infra"
	"github.com/xzero11x/app-hotel-sub001/internal/repository"
	"github.com/xzero11x/app-hotel-sub001/internal/router"
	"github.com/xzero11x/app-hotel-sub001/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Circuit breaker fronting NubeFact — shared by the synchronous issue
	// path and the background sync job.
	nubefactCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	// Worker pool for async tasks (cierre PDFs, report emails). Handlers are
	// wired here, at the composition root.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	cajaRepo := repository.NewCajaRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)

	handlers := worker.Handlers{
		Cierre: worker.NewCierreWorker(cajaRepo, usuarioRepo, dispatcher, cfg.PDFStoragePath, cfg.ReporteCierreTo),
		Email:  worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	r, facturacionSvc := router.New(cfg, db, rdb, nubefactCB, dispatcher)

	// Periodic reconciliation of comprobantes pendientes against NubeFact.
	worker.StartSyncCron(ctx, worker.SyncCronConfig{
		Sincronizador: facturacionSvc,
		CB:            nubefactCB,
		Interval:      time.Duration(cfg.SyncIntervalSecs) * time.Second,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("hotel backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
