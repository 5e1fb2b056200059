package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/model"
	"github.com/xzero11x/app-hotel-sub001/internal/repository"
	"github.com/xzero11x/app-hotel-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CajaService interface {
	AbrirTurno(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error)
	// CerrarTurno is the self-service close: only the operator who opened
	// the turno may use it.
	CerrarTurno(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error)
	// CerrarTurnoForzado is the administrative override: same transition,
	// different authorization predicate, audited distinctly.
	CerrarTurnoForzado(ctx context.Context, supervisorID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error)
	RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoRequest) error
	ObtenerReporte(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error)
	TurnoActivo(ctx context.Context, usuarioID uuid.UUID) (*dto.TurnoResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.TurnoResponse, int64, error)
}

type cajaService struct {
	repo       repository.CajaRepository
	pagoRepo   repository.PagoRepository
	rdb        *redis.Client
	dispatcher *worker.Dispatcher
	tolerancia decimal.Decimal
}

// NewCajaService wires the turno lifecycle. rdb and dispatcher may be nil in
// unit tests: the cache and the cierre report are conveniences, never
// correctness.
func NewCajaService(
	repo repository.CajaRepository,
	pagoRepo repository.PagoRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
	tolerancia decimal.Decimal,
) CajaService {
	return &cajaService{
		repo:       repo,
		pagoRepo:   pagoRepo,
		rdb:        rdb,
		dispatcher: dispatcher,
		tolerancia: tolerancia,
	}
}

// ── AbrirTurno ───────────────────────────────────────────────────────────────

func (s *cajaService) AbrirTurno(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, fmt.Errorf("caja_id inválido: %w", err)
	}
	if req.AperturaPEN.IsNegative() || req.AperturaUSD.IsNegative() {
		return nil, fmt.Errorf("%w: el monto de apertura no puede ser negativo", model.ErrValidacion)
	}
	if _, err := s.repo.FindCajaByID(ctx, cajaID); err != nil {
		return nil, errors.New("caja no encontrada")
	}

	// Friendly pre-check; the partial unique index is the real guard against
	// two concurrent opens.
	if existing, err := s.repo.FindTurnoAbiertoPorCaja(ctx, cajaID); err == nil && existing != nil {
		return nil, model.ErrCajaOcupada
	}

	turno := &model.Turno{
		CajaID:      cajaID,
		UsuarioID:   usuarioID,
		AperturaPEN: req.AperturaPEN,
		AperturaUSD: req.AperturaUSD,
		Estado:      model.TurnoAbierto,
		AbiertoAt:   time.Now(),
	}
	if err := s.repo.CreateTurno(ctx, turno); err != nil {
		return nil, err
	}

	s.invalidarEstadoCaja(ctx, cajaID)
	log.Info().
		Str("turno_id", turno.ID.String()).
		Str("caja_id", cajaID.String()).
		Str("usuario_id", usuarioID.String()).
		Msg("turno abierto")

	return s.buildReporte(ctx, turno)
}

// ── Cierres ──────────────────────────────────────────────────────────────────

func (s *cajaService) CerrarTurno(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error) {
	return s.cerrar(ctx, usuarioID, req, false)
}

func (s *cajaService) CerrarTurnoForzado(ctx context.Context, supervisorID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error) {
	return s.cerrar(ctx, supervisorID, req, true)
}

func (s *cajaService) cerrar(ctx context.Context, cerradoPor uuid.UUID, req dto.CerrarTurnoRequest, forzado bool) (*dto.TurnoResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, fmt.Errorf("turno_id inválido: %w", err)
	}
	if req.Declaracion.PEN.IsNegative() || req.Declaracion.USD.IsNegative() {
		return nil, fmt.Errorf("%w: el monto declarado no puede ser negativo", model.ErrValidacion)
	}

	turno, err := s.repo.FindTurnoByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	if turno.Estado != model.TurnoAbierto {
		return nil, model.ErrTurnoNoAbierto
	}
	if !forzado && turno.UsuarioID != cerradoPor {
		return nil, errors.New("solo el operador que abrió el turno puede cerrarlo")
	}

	now := time.Now()
	turno.DeclaradoPEN = &req.Declaracion.PEN
	turno.DeclaradoUSD = &req.Declaracion.USD
	turno.Estado = model.TurnoCerrado
	turno.CierreForzado = forzado
	turno.CerradoPor = &cerradoPor
	turno.Observaciones = req.Observaciones
	turno.CerradoAt = &now

	// The repo's guarded update makes the transition single-shot: a racing
	// close sees ErrTurnoNoAbierto here.
	if err := s.repo.UpdateTurno(ctx, turno); err != nil {
		return nil, err
	}

	// With the turno cerrado the ledger is frozen: pagos and movimientos
	// check the estado under the turno's row lock. The arqueo is computed
	// from a fresh read so a payment that won the race against the close is
	// still counted.
	turno, err = s.repo.FindTurnoByID(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	pagos, err := s.pagoRepo.ListByTurno(ctx, turnoID)
	if err != nil {
		return nil, err
	}

	snap := CalcularArqueo(ArqueoInput{
		AperturaPEN:  turno.AperturaPEN,
		AperturaUSD:  turno.AperturaUSD,
		Movimientos:  turno.Movimientos,
		Pagos:        pagos,
		DeclaradoPEN: &req.Declaracion.PEN,
		DeclaradoUSD: &req.Declaracion.USD,
	}, s.tolerancia)

	turno.EsperadoPEN = &snap.PEN.Esperado
	turno.EsperadoUSD = &snap.USD.Esperado
	turno.DesvioPEN = snap.PEN.Desvio
	turno.DesvioUSD = snap.USD.Desvio
	turno.ClasificacionPEN = snap.PEN.Clasificacion
	turno.ClasificacionUSD = snap.USD.Clasificacion
	if err := s.repo.ActualizarArqueo(ctx, turno); err != nil {
		return nil, err
	}

	s.invalidarEstadoCaja(ctx, turno.CajaID)

	evt := log.Info()
	if forzado {
		// Forced closes get their own audit line, distinct from self-service.
		evt = log.Warn().Bool("cierre_forzado", true)
	}
	evt.
		Str("turno_id", turno.ID.String()).
		Str("cerrado_por", cerradoPor.String()).
		Str("clasificacion_pen", *snap.PEN.Clasificacion).
		Msg("turno cerrado")

	if s.dispatcher != nil {
		job := worker.CierreJobPayload{TurnoID: turno.ID.String(), Arqueo: snap}
		if err := s.dispatcher.EnqueueCierre(ctx, job); err != nil {
			log.Warn().Err(err).Str("turno_id", turno.ID.String()).Msg("no se pudo encolar el reporte de cierre")
		}
	}

	return s.toResponse(turno, snap), nil
}

// ── RegistrarMovimiento ──────────────────────────────────────────────────────
// Appends an immutable ledger entry. Totals are never written here — they are
// recomputed from the ledger by CalcularArqueo on every read.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoRequest) error {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return fmt.Errorf("turno_id inválido: %w", err)
	}
	if !req.Monto.IsPositive() {
		return fmt.Errorf("%w: el monto debe ser mayor a cero", model.ErrValidacion)
	}
	razon := strings.TrimSpace(req.Razon)
	if len([]rune(razon)) < 5 {
		return fmt.Errorf("%w: la razón debe tener al menos 5 caracteres", model.ErrValidacion)
	}
	if !model.CategoriaValida(req.Categoria) {
		return fmt.Errorf("%w: categoría desconocida %q", model.ErrValidacion, req.Categoria)
	}
	if req.Categoria == model.CategoriaRetiroAdministrativo {
		if req.Destinatario == nil || strings.TrimSpace(*req.Destinatario) == "" {
			return fmt.Errorf("%w: el retiro administrativo requiere destinatario", model.ErrValidacion)
		}
		// The recipient becomes part of the permanent audit trail.
		razon = razon + " | Entregado a: " + strings.TrimSpace(*req.Destinatario)
	}

	mov := &model.MovimientoCaja{
		TurnoID:    turnoID,
		Tipo:       req.Tipo,
		Moneda:     req.Moneda,
		Monto:      req.Monto,
		Categoria:  req.Categoria,
		Razon:      razon,
		Referencia: req.Referencia,
		UsuarioID:  usuarioID,
	}
	return s.repo.CreateMovimiento(ctx, mov)
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *cajaService) ObtenerReporte(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindTurnoByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	return s.buildReporte(ctx, turno)
}

func (s *cajaService) TurnoActivo(ctx context.Context, usuarioID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindTurnoAbiertoPorUsuario(ctx, usuarioID)
	if err != nil || turno == nil {
		return nil, err
	}
	return s.ObtenerReporte(ctx, turno.ID)
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) ([]dto.TurnoResponse, int64, error) {
	turnos, total, err := s.repo.ListTurnos(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.TurnoResponse, 0, len(turnos))
	for i := range turnos {
		r, err := s.buildReporte(ctx, &turnos[i])
		if err != nil {
			return nil, 0, err
		}
		resp = append(resp, *r)
	}
	return resp, total, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// buildReporte recomputes the arqueo from the ledger. For closed turnos the
// declared amounts are fed back in so the historical variance is shown.
func (s *cajaService) buildReporte(ctx context.Context, turno *model.Turno) (*dto.TurnoResponse, error) {
	movs := turno.Movimientos
	if movs == nil {
		var err error
		movs, err = s.repo.ListMovimientos(ctx, turno.ID)
		if err != nil {
			return nil, err
		}
	}
	pagos, err := s.pagoRepo.ListByTurno(ctx, turno.ID)
	if err != nil {
		return nil, err
	}

	snap := CalcularArqueo(ArqueoInput{
		AperturaPEN:  turno.AperturaPEN,
		AperturaUSD:  turno.AperturaUSD,
		Movimientos:  movs,
		Pagos:        pagos,
		DeclaradoPEN: turno.DeclaradoPEN,
		DeclaradoUSD: turno.DeclaradoUSD,
	}, s.tolerancia)

	return s.toResponse(turno, snap), nil
}

func (s *cajaService) toResponse(turno *model.Turno, snap dto.ArqueoSnapshot) *dto.TurnoResponse {
	resp := &dto.TurnoResponse{
		TurnoID:       turno.ID.String(),
		CajaID:        turno.CajaID.String(),
		UsuarioID:     turno.UsuarioID.String(),
		Estado:        turno.Estado,
		CierreForzado: turno.CierreForzado,
		Arqueo:        snap,
		Observaciones: turno.Observaciones,
		AbiertoAt:     turno.AbiertoAt.Format(time.RFC3339),
	}
	if turno.CerradoPor != nil {
		cp := turno.CerradoPor.String()
		resp.CerradoPor = &cp
	}
	if turno.CerradoAt != nil {
		t := turno.CerradoAt.Format(time.RFC3339)
		resp.CerradoAt = &t
	}
	return resp
}

// invalidarEstadoCaja drops the cached drawer status. The cache is only a
// latency optimization: readers that miss recompute from the DB, so losing
// an invalidation can only delay, never corrupt.
func (s *cajaService) invalidarEstadoCaja(ctx context.Context, cajaID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "caja:estado:"+cajaID.String()).Err(); err != nil {
		log.Debug().Err(err).Str("caja_id", cajaID.String()).Msg("no se pudo invalidar cache de caja")
	}
}
