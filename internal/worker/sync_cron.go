package worker

// sync_cron.go
// Background goroutine that periodically reconciles comprobantes stuck in
// estado_sunat='pendiente' against the billing provider. The actual batch
// logic lives in the facturación service; this goroutine only owns the
// cadence and the circuit-breaker guard.

import (
	"context"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/infra"

	"github.com/rs/zerolog/log"
)

// Sincronizador is implemented by the facturación service.
type Sincronizador interface {
	Sincronizar(ctx context.Context) (*dto.SincronizarResponse, error)
}

// SyncCronConfig holds all dependencies for the sync goroutine.
type SyncCronConfig struct {
	Sincronizador Sincronizador
	CB            *infra.CircuitBreaker
	Interval      time.Duration
}

// StartSyncCron launches a background goroutine that ticks every
// cfg.Interval and reconciles pending comprobantes. It respects the
// context for graceful shutdown.
func StartSyncCron(ctx context.Context, cfg SyncCronConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				runSync(ctx, cfg)
			}
		}
	}()
}

func runSync(ctx context.Context, cfg SyncCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed provider
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("sync_cron: circuit breaker is open, skipping tick")
		return
	}

	res, err := cfg.Sincronizador.Sincronizar(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sync_cron: sincronización falló")
		return
	}
	if res == nil || res.Procesados == 0 {
		return
	}
	log.Info().
		Int("procesados", res.Procesados).
		Int("aceptados", res.Aceptados).
		Int("rechazados", res.Rechazados).
		Int("pendientes", res.Pendientes).
		Int("errores", res.Errores).
		Msg("sync_cron: comprobantes sincronizados")
}
