package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/model"
	"github.com/xzero11x/app-hotel-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const fechaLayout = "2006-01-02"

type ReservaService interface {
	CrearReserva(ctx context.Context, req dto.CrearReservaRequest) (*dto.ReservaResponse, error)
	ObtenerReserva(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error)
	ListarActivas(ctx context.Context) ([]dto.ReservaResponse, error)
	Checkin(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error)
	Checkout(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error)
	// CobrarLateCheckout prices the requested bucket, extends the stay first
	// when the bucket is a full day, and only then takes the payment.
	CobrarLateCheckout(ctx context.Context, usuarioID, reservaID uuid.UUID, req dto.LateCheckoutRequest) (*dto.LateCheckoutResponse, error)
	CrearHuesped(ctx context.Context, req dto.CrearHuespedRequest) (*dto.HuespedResponse, error)
	BuscarHuesped(ctx context.Context, documento string) (*dto.HuespedResponse, error)
}

type reservaService struct {
	repo           repository.ReservaRepository
	habitacionRepo repository.HabitacionRepository
	huespedRepo    repository.HuespedRepository
	pagos          PagoService
}

func NewReservaService(
	repo repository.ReservaRepository,
	habitacionRepo repository.HabitacionRepository,
	huespedRepo repository.HuespedRepository,
	pagos PagoService,
) ReservaService {
	return &reservaService{
		repo:           repo,
		habitacionRepo: habitacionRepo,
		huespedRepo:    huespedRepo,
		pagos:          pagos,
	}
}

func (s *reservaService) CrearReserva(ctx context.Context, req dto.CrearReservaRequest) (*dto.ReservaResponse, error) {
	habitacionID, err := uuid.Parse(req.HabitacionID)
	if err != nil {
		return nil, fmt.Errorf("habitacion_id inválido: %w", err)
	}
	huespedID, err := uuid.Parse(req.HuespedID)
	if err != nil {
		return nil, fmt.Errorf("huesped_id inválido: %w", err)
	}
	checkin, err := time.Parse(fechaLayout, req.CheckinFecha)
	if err != nil {
		return nil, fmt.Errorf("%w: checkin_fecha inválida", model.ErrValidacion)
	}
	checkout, err := time.Parse(fechaLayout, req.CheckoutFecha)
	if err != nil {
		return nil, fmt.Errorf("%w: checkout_fecha inválida", model.ErrValidacion)
	}
	if !checkout.After(checkin) {
		return nil, fmt.Errorf("%w: el checkout debe ser posterior al checkin", model.ErrValidacion)
	}

	habitacion, err := s.habitacionRepo.FindByID(ctx, habitacionID)
	if err != nil {
		return nil, errors.New("habitación no encontrada")
	}
	if !habitacion.Activa {
		return nil, fmt.Errorf("%w: la habitación %s no está activa", model.ErrValidacion, habitacion.Numero)
	}
	if _, err := s.huespedRepo.FindByID(ctx, huespedID); err != nil {
		return nil, errors.New("huésped no encontrado")
	}

	reserva := &model.Reserva{
		HabitacionID:  habitacionID,
		HuespedID:     huespedID,
		CheckinFecha:  checkin,
		CheckoutFecha: checkout,
		Estado:        model.ReservaConfirmada,
	}
	if err := s.repo.Create(ctx, reserva); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, reserva), nil
}

func (s *reservaService) ObtenerReserva(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error) {
	reserva, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("reserva no encontrada")
	}
	return s.toResponse(ctx, reserva), nil
}

func (s *reservaService) ListarActivas(ctx context.Context) ([]dto.ReservaResponse, error) {
	reservas, err := s.repo.ListActivas(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ReservaResponse, 0, len(reservas))
	for i := range reservas {
		resp = append(resp, *s.toResponse(ctx, &reservas[i]))
	}
	return resp, nil
}

func (s *reservaService) Checkin(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error) {
	reserva, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("reserva no encontrada")
	}
	if reserva.Estado != model.ReservaConfirmada {
		return nil, fmt.Errorf("%w: solo una reserva confirmada admite check-in", model.ErrValidacion)
	}

	now := time.Now()
	reserva.Estado = model.ReservaEnCurso
	reserva.CheckinAt = &now
	if err := s.repo.Update(ctx, reserva); err != nil {
		return nil, err
	}
	if err := s.habitacionRepo.SetEstado(ctx, reserva.HabitacionID, model.HabitacionOcupada); err != nil {
		log.Warn().Err(err).Str("reserva_id", id.String()).Msg("no se pudo marcar la habitación como ocupada")
	}
	return s.toResponse(ctx, reserva), nil
}

func (s *reservaService) Checkout(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error) {
	reserva, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("reserva no encontrada")
	}
	if reserva.Estado != model.ReservaEnCurso {
		return nil, fmt.Errorf("%w: solo una reserva en curso admite check-out", model.ErrValidacion)
	}

	now := time.Now()
	reserva.Estado = model.ReservaFinalizada
	reserva.CheckoutAt = &now
	if err := s.repo.Update(ctx, reserva); err != nil {
		return nil, err
	}
	// The room goes to cleaning, not straight back to available.
	if err := s.habitacionRepo.SetEstado(ctx, reserva.HabitacionID, model.HabitacionLimpieza); err != nil {
		log.Warn().Err(err).Str("reserva_id", id.String()).Msg("no se pudo marcar la habitación en limpieza")
	}
	return s.toResponse(ctx, reserva), nil
}

// Cancelar cancels a reservation regardless of drawer state: releasing a
// room must never wait for an open turno.
func (s *reservaService) Cancelar(ctx context.Context, id uuid.UUID) (*dto.ReservaResponse, error) {
	reserva, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("reserva no encontrada")
	}
	if reserva.Estado == model.ReservaFinalizada || reserva.Estado == model.ReservaCancelada {
		return nil, fmt.Errorf("%w: la reserva ya está %s", model.ErrValidacion, reserva.Estado)
	}

	liberarHabitacion := reserva.Estado == model.ReservaEnCurso
	reserva.Estado = model.ReservaCancelada
	if err := s.repo.Update(ctx, reserva); err != nil {
		return nil, err
	}
	if liberarHabitacion {
		if err := s.habitacionRepo.SetEstado(ctx, reserva.HabitacionID, model.HabitacionLimpieza); err != nil {
			log.Warn().Err(err).Str("reserva_id", id.String()).Msg("no se pudo liberar la habitación")
		}
	}
	return s.toResponse(ctx, reserva), nil
}

// ── Late checkout ────────────────────────────────────────────────────────────

func (s *reservaService) CobrarLateCheckout(ctx context.Context, usuarioID, reservaID uuid.UUID, req dto.LateCheckoutRequest) (*dto.LateCheckoutResponse, error) {
	reserva, err := s.repo.FindByID(ctx, reservaID)
	if err != nil {
		return nil, errors.New("reserva no encontrada")
	}
	if reserva.Estado != model.ReservaEnCurso {
		return nil, fmt.Errorf("%w: el late checkout solo aplica a una reserva en curso", model.ErrValidacion)
	}

	habitacion, err := s.habitacionRepo.FindByID(ctx, reserva.HabitacionID)
	if err != nil {
		return nil, errors.New("habitación no encontrada")
	}

	tarifa, err := CalcularLateCheckout(habitacion.TarifaNoche, req.Horas)
	if err != nil {
		return nil, err
	}

	checkoutFecha := reserva.CheckoutFecha
	if tarifa.DiaCompleto {
		// Extend the stay first; if the extension cannot be recorded no
		// money changes hands.
		checkoutFecha = reserva.CheckoutFecha.AddDate(0, 0, 1)
		if err := s.repo.ExtenderCheckout(ctx, reserva.ID, checkoutFecha); err != nil {
			return nil, fmt.Errorf("no se pudo extender la estadía: %w", err)
		}
	}

	reservaIDStr := reserva.ID.String()
	pago, err := s.pagos.RegistrarPago(ctx, usuarioID, dto.RegistrarPagoRequest{
		TurnoID:     req.TurnoID,
		ReservaID:   &reservaIDStr,
		Metodo:      req.Metodo,
		Moneda:      req.Moneda,
		Monto:       tarifa.Monto,
		Concepto:    fmt.Sprintf("Late checkout %dh - habitación %s", req.Horas, habitacion.Numero),
		Comprobante: req.Comprobante,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("reserva_id", reserva.ID.String()).
		Int("horas", req.Horas).
		Bool("dia_completo", tarifa.DiaCompleto).
		Str("monto", tarifa.Monto.String()).
		Msg("late checkout cobrado")

	return &dto.LateCheckoutResponse{
		Tarifa:        tarifa,
		Pago:          *pago,
		CheckoutFecha: checkoutFecha.Format(fechaLayout),
	}, nil
}

// ── Huéspedes ────────────────────────────────────────────────────────────────

// CrearHuesped registers a guest, reusing the existing record when the
// document is already known.
func (s *reservaService) CrearHuesped(ctx context.Context, req dto.CrearHuespedRequest) (*dto.HuespedResponse, error) {
	if existente, err := s.huespedRepo.FindByDocumento(ctx, req.Documento); err == nil {
		return huespedToResponse(existente), nil
	}
	huesped := &model.Huesped{
		TipoDocumento: req.TipoDocumento,
		Documento:     req.Documento,
		Nombre:        req.Nombre,
		Email:         req.Email,
		Telefono:      req.Telefono,
	}
	if err := s.huespedRepo.Create(ctx, huesped); err != nil {
		return nil, err
	}
	return huespedToResponse(huesped), nil
}

func (s *reservaService) BuscarHuesped(ctx context.Context, documento string) (*dto.HuespedResponse, error) {
	huesped, err := s.huespedRepo.FindByDocumento(ctx, documento)
	if err != nil {
		return nil, errors.New("huésped no encontrado")
	}
	return huespedToResponse(huesped), nil
}

func huespedToResponse(h *model.Huesped) *dto.HuespedResponse {
	return &dto.HuespedResponse{
		ID:            h.ID.String(),
		TipoDocumento: h.TipoDocumento,
		Documento:     h.Documento,
		Nombre:        h.Nombre,
		Email:         h.Email,
		Telefono:      h.Telefono,
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *reservaService) toResponse(ctx context.Context, r *model.Reserva) *dto.ReservaResponse {
	resp := &dto.ReservaResponse{
		ID:            r.ID.String(),
		HabitacionID:  r.HabitacionID.String(),
		HuespedID:     r.HuespedID.String(),
		CheckinFecha:  r.CheckinFecha.Format(fechaLayout),
		CheckoutFecha: r.CheckoutFecha.Format(fechaLayout),
		Estado:        r.Estado,
	}
	if r.Habitacion.ID != uuid.Nil {
		resp.Habitacion = r.Habitacion.Numero
	}
	if r.Huesped.ID != uuid.Nil {
		resp.Huesped = r.Huesped.Nombre
	}
	if r.CheckinAt != nil {
		t := r.CheckinAt.Format(time.RFC3339)
		resp.CheckinAt = &t
	}
	if r.CheckoutAt != nil {
		t := r.CheckoutAt.Format(time.RFC3339)
		resp.CheckoutAt = &t
	}
	return resp
}
