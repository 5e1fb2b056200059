package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFacturacion stands in for the NubeFact relay: scripted to succeed or
// fail without touching the network.
type fakeFacturacion struct {
	emitirErr error
	emitidos  int
}

func (f *fakeFacturacion) EmitirParaPago(_ context.Context, pago *model.Pago, req dto.EmitirComprobanteRequest) (*model.Comprobante, error) {
	if f.emitirErr != nil {
		return nil, f.emitirErr
	}
	f.emitidos++
	return &model.Comprobante{
		ID:                uuid.New(),
		PagoID:            pago.ID,
		Tipo:              req.Tipo,
		Serie:             "B001",
		Numero:            int64(f.emitidos),
		ReceptorDocumento: req.ReceptorDocumento,
		ReceptorNombre:    req.ReceptorNombre,
		Moneda:            pago.Moneda,
		MontoTotal:        pago.Monto,
		EstadoSunat:       model.SunatAceptado,
	}, nil
}

func (f *fakeFacturacion) ObtenerPorPago(context.Context, uuid.UUID) (*dto.ComprobanteResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFacturacion) Anular(context.Context, uuid.UUID, string) (*dto.ComprobanteResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFacturacion) Sincronizar(context.Context) (*dto.SincronizarResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFacturacion) ProcesarWebhook(context.Context, dto.WebhookNubeFact) error {
	return errors.New("not implemented")
}

func abrirTurnoDirecto(t *testing.T, repo *memCajaRepo, cajaID uuid.UUID) uuid.UUID {
	t.Helper()
	turno := &model.Turno{
		CajaID:      cajaID,
		UsuarioID:   uuid.New(),
		AperturaPEN: dec("100.00"),
		Estado:      model.TurnoAbierto,
	}
	require.NoError(t, repo.CreateTurno(context.Background(), turno))
	return turno.ID
}

func TestRegistrarPago_ConComprobante(t *testing.T) {
	cajaRepo := newMemCajaRepo()
	pagoRepo := newMemPagoRepo(cajaRepo)
	fact := &fakeFacturacion{}
	svc := NewPagoService(pagoRepo, fact)
	ctx := context.Background()
	turnoID := abrirTurnoDirecto(t, cajaRepo, cajaRepo.addCaja("Recepción"))

	resp, err := svc.RegistrarPago(ctx, uuid.New(), dto.RegistrarPagoRequest{
		TurnoID:  turnoID.String(),
		Metodo:   model.MetodoEfectivo,
		Moneda:   model.MonedaPEN,
		Monto:    dec("80.00"),
		Concepto: "Estadía habitación 101",
		Comprobante: &dto.EmitirComprobanteRequest{
			Tipo:              model.ComprobanteBoleta,
			ReceptorDocumento: "45677231",
			ReceptorNombre:    "Juan Pérez",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Comprobante)
	assert.Equal(t, "B001", resp.Comprobante.Serie)

	// El pago quedó vinculado al comprobante
	stored, err := pagoRepo.FindByID(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.NotNil(t, stored.ComprobanteID)
}

func TestRegistrarPago_FallaDeEmisionNoPierdeElPago(t *testing.T) {
	cajaRepo := newMemCajaRepo()
	pagoRepo := newMemPagoRepo(cajaRepo)
	fact := &fakeFacturacion{emitirErr: errors.New("nubefact: unreachable")}
	svc := NewPagoService(pagoRepo, fact)
	ctx := context.Background()
	turnoID := abrirTurnoDirecto(t, cajaRepo, cajaRepo.addCaja("Recepción"))

	resp, err := svc.RegistrarPago(ctx, uuid.New(), dto.RegistrarPagoRequest{
		TurnoID:  turnoID.String(),
		Metodo:   model.MetodoTarjeta,
		Moneda:   model.MonedaPEN,
		Monto:    dec("150.00"),
		Concepto: "Estadía habitación 201",
		Comprobante: &dto.EmitirComprobanteRequest{
			Tipo:              model.ComprobanteBoleta,
			ReceptorDocumento: "45677231",
			ReceptorNombre:    "Juan Pérez",
		},
	})
	// El dinero ya entró: la falla del proveedor no revierte el pago
	require.NoError(t, err)
	assert.Nil(t, resp.Comprobante)
	assert.Len(t, pagoRepo.pagos, 1)
}

func TestRegistrarPago_TurnoCerradoRechazado(t *testing.T) {
	cajaRepo := newMemCajaRepo()
	pagoRepo := newMemPagoRepo(cajaRepo)
	svc := NewPagoService(pagoRepo, &fakeFacturacion{})
	ctx := context.Background()

	cajaID := cajaRepo.addCaja("Recepción")
	turnoID := abrirTurnoDirecto(t, cajaRepo, cajaID)
	cajaRepo.turnos[turnoID].Estado = model.TurnoCerrado

	_, err := svc.RegistrarPago(ctx, uuid.New(), dto.RegistrarPagoRequest{
		TurnoID:  turnoID.String(),
		Metodo:   model.MetodoEfectivo,
		Moneda:   model.MonedaPEN,
		Monto:    dec("80.00"),
		Concepto: "Estadía habitación 101",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTurnoNoAbierto))
	assert.Empty(t, pagoRepo.pagos)
}

func TestRegistrarPago_Validaciones(t *testing.T) {
	cajaRepo := newMemCajaRepo()
	pagoRepo := newMemPagoRepo(cajaRepo)
	svc := NewPagoService(pagoRepo, &fakeFacturacion{})
	ctx := context.Background()
	turnoID := abrirTurnoDirecto(t, cajaRepo, cajaRepo.addCaja("Recepción"))

	_, err := svc.RegistrarPago(ctx, uuid.New(), dto.RegistrarPagoRequest{
		TurnoID: turnoID.String(), Metodo: model.MetodoEfectivo,
		Moneda: model.MonedaPEN, Monto: dec("0"), Concepto: "Estadía",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))

	_, err = svc.RegistrarPago(ctx, uuid.New(), dto.RegistrarPagoRequest{
		TurnoID: turnoID.String(), Metodo: "cheque",
		Moneda: model.MonedaPEN, Monto: dec("80.00"), Concepto: "Estadía",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))
}
