package service

// facturacion_service.go
// Relays tax documents (boleta / factura / nota de crédito) to SUNAT through
// NubeFact. Issuance is synchronous; SUNAT's verdict may arrive later via the
// provider's webhook or the periodic sync job. A provider outage never loses
// a document: it stays pendiente with the communication error recorded.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/config"
	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/infra"
	"github.com/xzero11x/app-hotel-sub001/internal/model"
	"github.com/xzero11x/app-hotel-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NubeFact document type codes.
var nubefactTipos = map[string]int{
	model.ComprobanteFactura:     1,
	model.ComprobanteBoleta:      2,
	model.ComprobanteNotaCredito: 3,
}

type FacturacionService interface {
	// EmitirParaPago issues a document for an already persisted pago. A
	// provider communication failure is NOT an error: the comprobante is
	// returned in estado pendiente and the sync job picks it up later.
	EmitirParaPago(ctx context.Context, pago *model.Pago, req dto.EmitirComprobanteRequest) (*model.Comprobante, error)
	ObtenerPorPago(ctx context.Context, pagoID uuid.UUID) (*dto.ComprobanteResponse, error)
	Anular(ctx context.Context, comprobanteID uuid.UUID, motivo string) (*dto.ComprobanteResponse, error)
	Sincronizar(ctx context.Context) (*dto.SincronizarResponse, error)
	ProcesarWebhook(ctx context.Context, payload dto.WebhookNubeFact) error
}

type facturacionService struct {
	repo   repository.ComprobanteRepository
	client *infra.NubeFactClient
	cb     *infra.CircuitBreaker
	cfg    *config.Config

	// syncMu makes sync runs mutually exclusive: a slow batch must not
	// overlap with the next tick or a manual trigger.
	syncMu sync.Mutex
}

func NewFacturacionService(
	repo repository.ComprobanteRepository,
	client *infra.NubeFactClient,
	cb *infra.CircuitBreaker,
	cfg *config.Config,
) FacturacionService {
	return &facturacionService{repo: repo, client: client, cb: cb, cfg: cfg}
}

// ── Emisión ──────────────────────────────────────────────────────────────────

func (s *facturacionService) EmitirParaPago(ctx context.Context, pago *model.Pago, req dto.EmitirComprobanteRequest) (*model.Comprobante, error) {
	tipoNum, ok := nubefactTipos[req.Tipo]
	if !ok {
		return nil, fmt.Errorf("%w: tipo de comprobante desconocido %q", model.ErrValidacion, req.Tipo)
	}
	if err := validarReceptor(req.Tipo, req.ReceptorDocumento); err != nil {
		return nil, err
	}

	serie := s.serieParaTipo(req.Tipo)
	comp := &model.Comprobante{
		PagoID:            pago.ID,
		Tipo:              req.Tipo,
		Serie:             serie,
		ReceptorDocumento: req.ReceptorDocumento,
		ReceptorNombre:    req.ReceptorNombre,
		Moneda:            pago.Moneda,
		MontoTotal:        pago.Monto,
		EstadoSunat:       model.SunatPendiente,
	}
	// Create assigns comp.Numero from the serie counter.
	if err := s.repo.Create(ctx, comp); err != nil {
		return nil, fmt.Errorf("no se pudo asignar numeración para serie %s: %w", serie, err)
	}

	nfReq := infra.NubeFactRequest{
		TipoDeComprobante:   tipoNum,
		Serie:               serie,
		Numero:              comp.Numero,
		ClienteTipoDoc:      tipoDocumentoReceptor(req.Tipo),
		ClienteNumeroDoc:    req.ReceptorDocumento,
		ClienteDenominacion: req.ReceptorNombre,
		Moneda:              nubefactMoneda(pago.Moneda),
		Total:               pago.Monto,
		Items: []infra.NubeFactItem{{
			Descripcion:    pago.Concepto,
			Cantidad:       1,
			PrecioUnitario: pago.Monto,
			Total:          pago.Monto,
		}},
	}

	var resp *infra.NubeFactResponse
	cbErr := s.cb.Execute(func() error {
		r, err := s.client.Emitir(ctx, nfReq)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if cbErr != nil {
		// Provider unreachable (or CB open): the document already has its
		// serie+numero reserved, so it just waits for the sync job.
		msg := cbErr.Error()
		comp.UltimoError = &msg
		if err := s.repo.Update(ctx, comp); err != nil {
			log.Error().Err(err).Str("comprobante_id", comp.ID.String()).Msg("facturacion: no se pudo guardar el error de emisión")
		}
		log.Warn().Err(cbErr).
			Str("serie", serie).Int64("numero", comp.Numero).
			Msg("facturacion: NubeFact inalcanzable, comprobante queda pendiente")
		return comp, nil
	}

	s.aplicarRespuesta(comp, resp)
	if err := s.repo.Update(ctx, comp); err != nil {
		return nil, err
	}

	log.Info().
		Str("serie", serie).Int64("numero", comp.Numero).
		Str("estado_sunat", comp.EstadoSunat).
		Msg("facturacion: comprobante emitido")
	return comp, nil
}

// ── Consultas y anulación ────────────────────────────────────────────────────

func (s *facturacionService) ObtenerPorPago(ctx context.Context, pagoID uuid.UUID) (*dto.ComprobanteResponse, error) {
	comp, err := s.repo.FindByPagoID(ctx, pagoID)
	if err != nil {
		return nil, errors.New("comprobante no encontrado")
	}
	return comprobanteToResponse(comp), nil
}

func (s *facturacionService) Anular(ctx context.Context, comprobanteID uuid.UUID, motivo string) (*dto.ComprobanteResponse, error) {
	comp, err := s.repo.FindByID(ctx, comprobanteID)
	if err != nil {
		return nil, errors.New("comprobante no encontrado")
	}
	if comp.EstadoSunat == model.SunatAnulado {
		return comprobanteToResponse(comp), nil
	}
	if comp.EstadoSunat != model.SunatAceptado {
		return nil, fmt.Errorf("%w: solo se puede anular un comprobante aceptado", model.ErrValidacion)
	}

	var resp *infra.NubeFactResponse
	cbErr := s.cb.Execute(func() error {
		r, err := s.client.Anular(ctx, nubefactTipos[comp.Tipo], comp.Serie, comp.Numero, motivo)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if cbErr != nil {
		return nil, fmt.Errorf("no se pudo solicitar la anulación: %w", cbErr)
	}
	if resp.Errors != nil {
		comp.UltimoError = resp.Errors
		_ = s.repo.Update(ctx, comp)
		return nil, fmt.Errorf("NubeFact rechazó la anulación: %s", *resp.Errors)
	}

	// The anulación itself resolves asynchronously; the webhook confirms it.
	comp.EstadoSunat = model.SunatAnulado
	comp.UltimoError = nil
	if err := s.repo.Update(ctx, comp); err != nil {
		return nil, err
	}
	log.Info().Str("serie", comp.Serie).Int64("numero", comp.Numero).Msg("facturacion: anulación solicitada")
	return comprobanteToResponse(comp), nil
}

// ── Sincronización ───────────────────────────────────────────────────────────

// Sincronizar reconciles pending comprobantes against the provider, oldest
// first. Each document is isolated: one failure is counted and skipped, the
// batch continues. Calls are spaced out to respect the provider's rate limit.
func (s *facturacionService) Sincronizar(ctx context.Context) (*dto.SincronizarResponse, error) {
	if !s.syncMu.TryLock() {
		return nil, errors.New("ya hay una sincronización en curso")
	}
	defer s.syncMu.Unlock()

	pendientes, err := s.repo.ListPendientes(ctx, s.cfg.SyncBatchSize)
	if err != nil {
		return nil, err
	}

	res := &dto.SincronizarResponse{}
	delay := time.Duration(s.cfg.SyncCallDelayMS) * time.Millisecond

	for i := range pendientes {
		comp := &pendientes[i]

		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(delay):
			}
		}
		if s.cb.State() == infra.CBOpen {
			log.Debug().Msg("facturacion: circuit breaker abierto a mitad de lote, deteniendo sincronización")
			break
		}

		var resp *infra.NubeFactResponse
		cbErr := s.cb.Execute(func() error {
			r, err := s.client.Consultar(ctx, nubefactTipos[comp.Tipo], comp.Serie, comp.Numero)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		res.Procesados++
		if cbErr != nil {
			res.Errores++
			msg := cbErr.Error()
			comp.UltimoError = &msg
			_ = s.repo.Update(ctx, comp)
			continue
		}

		s.aplicarRespuesta(comp, resp)
		if err := s.repo.Update(ctx, comp); err != nil {
			res.Errores++
			continue
		}
		switch comp.EstadoSunat {
		case model.SunatAceptado:
			res.Aceptados++
		case model.SunatRechazado:
			res.Rechazados++
		default:
			res.Pendientes++
		}
	}
	return res, nil
}

// ── Webhook ──────────────────────────────────────────────────────────────────

// ProcesarWebhook applies a provider callback. It is idempotent: replays of
// an already applied notification leave the comprobante unchanged. Unknown
// serie+numero pairs are logged and ignored so the provider stops retrying.
func (s *facturacionService) ProcesarWebhook(ctx context.Context, payload dto.WebhookNubeFact) error {
	comp, err := s.repo.FindBySerieNumero(ctx, payload.Serie, payload.Numero)
	if err != nil {
		log.Warn().
			Str("serie", payload.Serie).Int64("numero", payload.Numero).
			Msg("facturacion: webhook para comprobante desconocido")
		return nil
	}

	if payload.Operacion == infra.OperacionGenerarAnulacion {
		if payload.AceptadaPorSunat != nil && *payload.AceptadaPorSunat {
			comp.EstadoSunat = model.SunatAnulado
			comp.UltimoError = nil
			return s.repo.Update(ctx, comp)
		}
		return nil
	}

	// A nil verdict must never regress a state already settled by a
	// previous webhook or sync pass.
	if payload.AceptadaPorSunat == nil {
		return nil
	}

	if *payload.AceptadaPorSunat {
		comp.EstadoSunat = model.SunatAceptado
		comp.CodigoHash = coalesce(payload.CodigoHash, comp.CodigoHash)
		comp.EnlaceCDR = coalesce(payload.EnlaceDelCDR, comp.EnlaceCDR)
		comp.EnlaceXML = coalesce(payload.EnlaceDelXML, comp.EnlaceXML)
		comp.EnlacePDF = coalesce(payload.EnlaceDelPDF, comp.EnlacePDF)
		comp.ExternalID = coalesce(payload.ExternalID, comp.ExternalID)
		comp.UltimoError = nil
	} else {
		// Never downgrade an accepted document on a stale rejection replay.
		if comp.EstadoSunat == model.SunatAceptado || comp.EstadoSunat == model.SunatAnulado {
			return nil
		}
		comp.EstadoSunat = model.SunatRechazado
		comp.UltimoError = payload.SunatDescription
	}

	if err := s.repo.Update(ctx, comp); err != nil {
		return err
	}
	log.Info().
		Str("serie", comp.Serie).Int64("numero", comp.Numero).
		Str("estado_sunat", comp.EstadoSunat).
		Msg("facturacion: webhook aplicado")
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// aplicarRespuesta maps a provider reply onto the comprobante. Shared by the
// synchronous issuance path and the sync job so both converge identically.
func (s *facturacionService) aplicarRespuesta(comp *model.Comprobante, resp *infra.NubeFactResponse) {
	if resp.Errors != nil {
		comp.EstadoSunat = model.SunatRechazado
		comp.UltimoError = resp.Errors
		return
	}
	comp.CodigoHash = coalesce(resp.CodigoHash, comp.CodigoHash)
	comp.EnlaceCDR = coalesce(resp.EnlaceDelCDR, comp.EnlaceCDR)
	comp.EnlaceXML = coalesce(resp.EnlaceDelXML, comp.EnlaceXML)
	comp.EnlacePDF = coalesce(resp.EnlaceDelPDF, comp.EnlacePDF)
	comp.ExternalID = coalesce(resp.ExternalID, comp.ExternalID)

	if resp.AceptadaPorSunat == nil {
		// SUNAT has not resolved it yet; stay pendiente.
		return
	}
	if *resp.AceptadaPorSunat {
		comp.EstadoSunat = model.SunatAceptado
		comp.UltimoError = nil
	} else {
		comp.EstadoSunat = model.SunatRechazado
		comp.UltimoError = resp.SunatDescription
	}
}

func (s *facturacionService) serieParaTipo(tipo string) string {
	switch tipo {
	case model.ComprobanteFactura:
		return s.cfg.SerieFactura
	case model.ComprobanteNotaCredito:
		return s.cfg.SerieNotaCredito
	default:
		return s.cfg.SerieBoleta
	}
}

// validarReceptor enforces the SUNAT document rules: boletas go to a DNI
// (8 digits), facturas to a RUC (11 digits).
func validarReceptor(tipo, documento string) error {
	for _, r := range documento {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: el documento del receptor debe ser numérico", model.ErrValidacion)
		}
	}
	switch tipo {
	case model.ComprobanteFactura:
		if len(documento) != 11 {
			return fmt.Errorf("%w: una factura requiere RUC de 11 dígitos", model.ErrValidacion)
		}
	case model.ComprobanteBoleta:
		if len(documento) != 8 {
			return fmt.Errorf("%w: una boleta requiere DNI de 8 dígitos", model.ErrValidacion)
		}
	}
	return nil
}

func tipoDocumentoReceptor(tipo string) string {
	if tipo == model.ComprobanteFactura {
		return "6" // RUC
	}
	return "1" // DNI
}

func nubefactMoneda(moneda string) int {
	if moneda == model.MonedaUSD {
		return 2
	}
	return 1
}

func coalesce(nuevo, actual *string) *string {
	if nuevo != nil && *nuevo != "" {
		return nuevo
	}
	return actual
}

func comprobanteToResponse(c *model.Comprobante) *dto.ComprobanteResponse {
	return &dto.ComprobanteResponse{
		ID:                c.ID.String(),
		Tipo:              c.Tipo,
		Serie:             c.Serie,
		Numero:            c.Numero,
		ReceptorDocumento: c.ReceptorDocumento,
		ReceptorNombre:    c.ReceptorNombre,
		Moneda:            c.Moneda,
		MontoTotal:        c.MontoTotal,
		EstadoSunat:       c.EstadoSunat,
		CodigoHash:        c.CodigoHash,
		EnlaceCDR:         c.EnlaceCDR,
		EnlaceXML:         c.EnlaceXML,
		EnlacePDF:         c.EnlacePDF,
		UltimoError:       c.UltimoError,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
	}
}
