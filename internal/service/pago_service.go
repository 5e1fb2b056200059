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

type PagoService interface {
	RegistrarPago(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoResponse, error)
	ObtenerPago(ctx context.Context, id uuid.UUID) (*dto.PagoResponse, error)
	ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.PagoResponse, error)
}

type pagoService struct {
	repo        repository.PagoRepository
	facturacion FacturacionService
}

func NewPagoService(repo repository.PagoRepository, facturacion FacturacionService) PagoService {
	return &pagoService{repo: repo, facturacion: facturacion}
}

// RegistrarPago persists the payment against an open turno and, when asked,
// issues the electronic comprobante. The payment is the source of truth: a
// billing-provider outage leaves the comprobante pendiente but the money is
// already in the ledger.
func (s *pagoService) RegistrarPago(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, fmt.Errorf("turno_id inválido: %w", err)
	}
	if !req.Monto.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser mayor a cero", model.ErrValidacion)
	}
	if !model.MetodoValido(req.Metodo) {
		return nil, fmt.Errorf("%w: método de pago desconocido %q", model.ErrValidacion, req.Metodo)
	}

	pago := &model.Pago{
		TurnoID:   turnoID,
		Metodo:    req.Metodo,
		Moneda:    req.Moneda,
		Monto:     req.Monto,
		Concepto:  req.Concepto,
		UsuarioID: usuarioID,
	}
	if req.ReservaID != nil {
		reservaID, err := uuid.Parse(*req.ReservaID)
		if err != nil {
			return nil, fmt.Errorf("reserva_id inválido: %w", err)
		}
		pago.ReservaID = &reservaID
	}

	// The repo checks the turno is still open under lock; a closed turno
	// surfaces as ErrTurnoNoAbierto.
	if err := s.repo.Create(ctx, pago); err != nil {
		return nil, err
	}

	resp := pagoToResponse(pago)

	if req.Comprobante != nil {
		comp, err := s.facturacion.EmitirParaPago(ctx, pago, *req.Comprobante)
		if err != nil {
			// The payment stands; the operator can re-issue the document.
			log.Error().Err(err).Str("pago_id", pago.ID.String()).Msg("pago registrado pero la emisión del comprobante falló")
			return resp, nil
		}
		if err := s.repo.SetComprobante(ctx, pago.ID, comp.ID); err != nil {
			log.Error().Err(err).Str("pago_id", pago.ID.String()).Msg("no se pudo vincular el comprobante al pago")
		}
		resp.Comprobante = comprobanteToResponse(comp)
	}
	return resp, nil
}

func (s *pagoService) ObtenerPago(ctx context.Context, id uuid.UUID) (*dto.PagoResponse, error) {
	pago, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("pago no encontrado")
	}
	resp := pagoToResponse(pago)
	if pago.ComprobanteID != nil {
		if comp, err := s.facturacion.ObtenerPorPago(ctx, pago.ID); err == nil {
			resp.Comprobante = comp
		}
	}
	return resp, nil
}

func (s *pagoService) ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.PagoResponse, error) {
	pagos, err := s.repo.ListByTurno(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		resp = append(resp, *pagoToResponse(&pagos[i]))
	}
	return resp, nil
}

func pagoToResponse(p *model.Pago) *dto.PagoResponse {
	resp := &dto.PagoResponse{
		ID:        p.ID.String(),
		TurnoID:   p.TurnoID.String(),
		Metodo:    p.Metodo,
		Moneda:    p.Moneda,
		Monto:     p.Monto,
		Concepto:  p.Concepto,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.ReservaID != nil {
		r := p.ReservaID.String()
		resp.ReservaID = &r
	}
	return resp
}
