package worker

// cierre_worker.go
// Processes closing-report jobs from QueueCierre: renders the arqueo PDF for
// a closed turno and, when a supervision address is configured, enqueues the
// report for email delivery. The arqueo snapshot travels inside the job
// payload so the numbers on the PDF are exactly the ones computed at close.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/infra"
	"github.com/xzero11x/app-hotel-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CierreJobPayload is the job envelope sent to QueueCierre.
type CierreJobPayload struct {
	TurnoID string             `json:"turno_id"`
	Arqueo  dto.ArqueoSnapshot `json:"arqueo"`
}

type CierreWorker struct {
	cajaRepo       repository.CajaRepository
	usuarioRepo    repository.UsuarioRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	reporteEmail   string
}

func NewCierreWorker(
	cajaRepo repository.CajaRepository,
	usuarioRepo repository.UsuarioRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	reporteEmail string,
) *CierreWorker {
	return &CierreWorker{
		cajaRepo:       cajaRepo,
		usuarioRepo:    usuarioRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		reporteEmail:   reporteEmail,
	}
}

func (w *CierreWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload CierreJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("cierre_worker: invalid payload")
		return
	}
	turnoID, err := uuid.Parse(payload.TurnoID)
	if err != nil {
		log.Error().Str("turno_id", payload.TurnoID).Msg("cierre_worker: invalid turno_id")
		return
	}

	turno, err := w.cajaRepo.FindTurnoByID(ctx, turnoID)
	if err != nil {
		log.Error().Err(err).Str("turno_id", payload.TurnoID).Msg("cierre_worker: turno not found")
		return
	}
	if turno.CerradoAt == nil {
		log.Warn().Str("turno_id", payload.TurnoID).Msg("cierre_worker: turno is not closed, skipping")
		return
	}

	rep := infra.CierreReporte{
		TurnoID:       turno.ID.String(),
		CierreForzado: turno.CierreForzado,
		AbiertoAt:     turno.AbiertoAt,
		CerradoAt:     *turno.CerradoAt,
		Arqueo:        payload.Arqueo,
	}
	if turno.Observaciones != nil {
		rep.Observaciones = *turno.Observaciones
	}
	if caja, err := w.cajaRepo.FindCajaByID(ctx, turno.CajaID); err == nil {
		rep.CajaNombre = caja.Nombre
	}
	if op, err := w.usuarioRepo.FindByID(ctx, turno.UsuarioID); err == nil {
		rep.Operador = op.Nombre
	}
	if turno.CerradoPor != nil {
		if cp, err := w.usuarioRepo.FindByID(ctx, *turno.CerradoPor); err == nil {
			rep.CerradoPor = cp.Nombre
		}
	}

	pdfPath, err := infra.GenerateCierrePDF(rep, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("turno_id", payload.TurnoID).Msg("cierre_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("turno_id", payload.TurnoID).Msg("cierre_worker: reporte generado")

	if w.reporteEmail == "" {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: w.reporteEmail,
		Subject: fmt.Sprintf("Cierre de turno — %s", rep.CajaNombre),
		Body: fmt.Sprintf("Adjunto el reporte de cierre del turno %s (caja %s, operador %s).",
			rep.TurnoID, rep.CajaNombre, rep.Operador),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("turno_id", payload.TurnoID).Msg("cierre_worker: failed to enqueue email")
	}
}
