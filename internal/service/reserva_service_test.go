package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes ────────────────────────────────────────────────────────────────────

type memReservaRepo struct {
	reservas map[uuid.UUID]*model.Reserva
	// extenderErr simulates a DB failure while pushing the checkout forward.
	extenderErr error
}

func newMemReservaRepo() *memReservaRepo {
	return &memReservaRepo{reservas: make(map[uuid.UUID]*model.Reserva)}
}

func (r *memReservaRepo) Create(_ context.Context, res *model.Reserva) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	copia := *res
	r.reservas[res.ID] = &copia
	return nil
}

func (r *memReservaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Reserva, error) {
	res, ok := r.reservas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copia := *res
	return &copia, nil
}

func (r *memReservaRepo) Update(_ context.Context, res *model.Reserva) error {
	if _, ok := r.reservas[res.ID]; !ok {
		return errors.New("not found")
	}
	copia := *res
	r.reservas[res.ID] = &copia
	return nil
}

func (r *memReservaRepo) ExtenderCheckout(_ context.Context, id uuid.UUID, nueva time.Time) error {
	if r.extenderErr != nil {
		return r.extenderErr
	}
	res, ok := r.reservas[id]
	if !ok || res.Estado != model.ReservaEnCurso {
		return errors.New("reserva no está en curso")
	}
	res.CheckoutFecha = nueva
	return nil
}

func (r *memReservaRepo) ListActivas(_ context.Context) ([]model.Reserva, error) {
	var out []model.Reserva
	for _, res := range r.reservas {
		if res.Estado == model.ReservaConfirmada || res.Estado == model.ReservaEnCurso {
			out = append(out, *res)
		}
	}
	return out, nil
}

type memHabitacionRepo struct {
	habitaciones map[uuid.UUID]*model.Habitacion
}

func newMemHabitacionRepo() *memHabitacionRepo {
	return &memHabitacionRepo{habitaciones: make(map[uuid.UUID]*model.Habitacion)}
}

func (r *memHabitacionRepo) add(numero, tarifa string) uuid.UUID {
	id := uuid.New()
	r.habitaciones[id] = &model.Habitacion{
		ID: id, Numero: numero, Tipo: "simple",
		TarifaNoche: dec(tarifa), Estado: model.HabitacionDisponible, Activa: true,
	}
	return id
}

func (r *memHabitacionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Habitacion, error) {
	h, ok := r.habitaciones[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copia := *h
	return &copia, nil
}

func (r *memHabitacionRepo) List(_ context.Context) ([]model.Habitacion, error) {
	var out []model.Habitacion
	for _, h := range r.habitaciones {
		out = append(out, *h)
	}
	return out, nil
}

func (r *memHabitacionRepo) SetEstado(_ context.Context, id uuid.UUID, estado string) error {
	h, ok := r.habitaciones[id]
	if !ok {
		return errors.New("not found")
	}
	h.Estado = estado
	return nil
}

type memHuespedRepo struct {
	huespedes map[uuid.UUID]*model.Huesped
}

func newMemHuespedRepo() *memHuespedRepo {
	return &memHuespedRepo{huespedes: make(map[uuid.UUID]*model.Huesped)}
}

func (r *memHuespedRepo) Create(_ context.Context, h *model.Huesped) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	copia := *h
	r.huespedes[h.ID] = &copia
	return nil
}

func (r *memHuespedRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Huesped, error) {
	h, ok := r.huespedes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return h, nil
}

func (r *memHuespedRepo) FindByDocumento(_ context.Context, documento string) (*model.Huesped, error) {
	for _, h := range r.huespedes {
		if h.Documento == documento {
			return h, nil
		}
	}
	return nil, errors.New("not found")
}

// spyPagoService records every payment it is asked to take.
type spyPagoService struct {
	registrados []dto.RegistrarPagoRequest
	err         error
}

func (s *spyPagoService) RegistrarPago(_ context.Context, _ uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.registrados = append(s.registrados, req)
	return &dto.PagoResponse{
		ID:       uuid.NewString(),
		TurnoID:  req.TurnoID,
		Metodo:   req.Metodo,
		Moneda:   req.Moneda,
		Monto:    req.Monto,
		Concepto: req.Concepto,
	}, nil
}

func (s *spyPagoService) ObtenerPago(context.Context, uuid.UUID) (*dto.PagoResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *spyPagoService) ListarPorTurno(context.Context, uuid.UUID) ([]dto.PagoResponse, error) {
	return nil, errors.New("not implemented")
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

type reservaFixture struct {
	svc         ReservaService
	reservaRepo *memReservaRepo
	habRepo     *memHabitacionRepo
	huespedRepo *memHuespedRepo
	pagos       *spyPagoService
}

func newReservaFixture() *reservaFixture {
	f := &reservaFixture{
		reservaRepo: newMemReservaRepo(),
		habRepo:     newMemHabitacionRepo(),
		huespedRepo: newMemHuespedRepo(),
		pagos:       &spyPagoService{},
	}
	f.svc = NewReservaService(f.reservaRepo, f.habRepo, f.huespedRepo, f.pagos)
	return f
}

func (f *reservaFixture) reservaEnCurso(t *testing.T, tarifa string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	habID := f.habRepo.add("101", tarifa)
	checkin := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	reserva := &model.Reserva{
		HabitacionID:  habID,
		HuespedID:     uuid.New(),
		CheckinFecha:  checkin,
		CheckoutFecha: checkin.AddDate(0, 0, 2),
		Estado:        model.ReservaEnCurso,
	}
	require.NoError(t, f.reservaRepo.Create(context.Background(), reserva))
	return reserva.ID, habID
}

// ── Ciclo de vida ────────────────────────────────────────────────────────────

func TestCrearReserva_ValidaFechas(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	habID := f.habRepo.add("101", "90.00")
	huesped := &model.Huesped{TipoDocumento: "dni", Documento: "45677231", Nombre: "Juan Pérez"}
	require.NoError(t, f.huespedRepo.Create(ctx, huesped))

	base := dto.CrearReservaRequest{
		HabitacionID:  habID.String(),
		HuespedID:     huesped.ID.String(),
		CheckinFecha:  "2026-09-01",
		CheckoutFecha: "2026-09-03",
	}

	resp, err := f.svc.CrearReserva(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaConfirmada, resp.Estado)

	req := base
	req.CheckoutFecha = "2026-09-01" // igual al checkin
	_, err = f.svc.CrearReserva(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))

	req = base
	req.CheckoutFecha = "2026/09/03"
	_, err = f.svc.CrearReserva(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))
}

func TestCheckin_Checkout_EstadosDeHabitacion(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	habID := f.habRepo.add("201", "120.00")
	huesped := &model.Huesped{TipoDocumento: "dni", Documento: "45677231", Nombre: "Juan Pérez"}
	require.NoError(t, f.huespedRepo.Create(ctx, huesped))

	resp, err := f.svc.CrearReserva(ctx, dto.CrearReservaRequest{
		HabitacionID:  habID.String(),
		HuespedID:     huesped.ID.String(),
		CheckinFecha:  "2026-09-01",
		CheckoutFecha: "2026-09-03",
	})
	require.NoError(t, err)
	reservaID := uuid.MustParse(resp.ID)

	resp, err = f.svc.Checkin(ctx, reservaID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaEnCurso, resp.Estado)
	hab, _ := f.habRepo.FindByID(ctx, habID)
	assert.Equal(t, model.HabitacionOcupada, hab.Estado)

	// Check-in repetido rechazado
	_, err = f.svc.Checkin(ctx, reservaID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))

	resp, err = f.svc.Checkout(ctx, reservaID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaFinalizada, resp.Estado)
	// La habitación pasa a limpieza, no directo a disponible
	hab, _ = f.habRepo.FindByID(ctx, habID)
	assert.Equal(t, model.HabitacionLimpieza, hab.Estado)
}

func TestCancelar_NoDependeDeLaCaja(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	reservaID, habID := f.reservaEnCurso(t, "90.00")

	resp, err := f.svc.Cancelar(ctx, reservaID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservaCancelada, resp.Estado)
	hab, _ := f.habRepo.FindByID(ctx, habID)
	assert.Equal(t, model.HabitacionLimpieza, hab.Estado)

	// Cancelar dos veces es inválido
	_, err = f.svc.Cancelar(ctx, reservaID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))
}

// ── Late checkout ────────────────────────────────────────────────────────────

func TestCobrarLateCheckout_BucketParcial(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	reservaID, _ := f.reservaEnCurso(t, "100.00")

	resp, err := f.svc.CobrarLateCheckout(ctx, uuid.New(), reservaID, dto.LateCheckoutRequest{
		TurnoID: uuid.NewString(),
		Horas:   3,
		Metodo:  model.MetodoEfectivo,
		Moneda:  model.MonedaPEN,
	})
	require.NoError(t, err)
	assert.True(t, resp.Tarifa.Monto.Equal(dec("50.00")))
	assert.False(t, resp.Tarifa.DiaCompleto)
	assert.Equal(t, "2026-09-03", resp.CheckoutFecha) // estadía NO extendida

	require.Len(t, f.pagos.registrados, 1)
	assert.Contains(t, f.pagos.registrados[0].Concepto, "Late checkout 3h")
	assert.Contains(t, f.pagos.registrados[0].Concepto, "101")
}

func TestCobrarLateCheckout_DiaCompletoExtiendeLaEstadia(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	reservaID, _ := f.reservaEnCurso(t, "100.00")

	resp, err := f.svc.CobrarLateCheckout(ctx, uuid.New(), reservaID, dto.LateCheckoutRequest{
		TurnoID: uuid.NewString(),
		Horas:   24,
		Metodo:  model.MetodoEfectivo,
		Moneda:  model.MonedaPEN,
	})
	require.NoError(t, err)
	assert.True(t, resp.Tarifa.Monto.Equal(dec("100.00")))
	assert.True(t, resp.Tarifa.DiaCompleto)
	assert.Equal(t, "2026-09-04", resp.CheckoutFecha)

	stored, err := f.reservaRepo.FindByID(ctx, reservaID)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-04", stored.CheckoutFecha.Format(fechaLayout))
	require.Len(t, f.pagos.registrados, 1)
}

func TestCobrarLateCheckout_SinExtensionNoHayCobro(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	reservaID, _ := f.reservaEnCurso(t, "100.00")
	f.reservaRepo.extenderErr = errors.New("deadlock detected")

	_, err := f.svc.CobrarLateCheckout(ctx, uuid.New(), reservaID, dto.LateCheckoutRequest{
		TurnoID: uuid.NewString(),
		Horas:   24,
		Metodo:  model.MetodoEfectivo,
		Moneda:  model.MonedaPEN,
	})
	require.Error(t, err)
	// Primero la extensión, después el dinero: si falla, ni un sol se mueve
	assert.Empty(t, f.pagos.registrados)
}

func TestCobrarLateCheckout_SoloReservasEnCurso(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	habID := f.habRepo.add("101", "100.00")
	reserva := &model.Reserva{
		HabitacionID:  habID,
		HuespedID:     uuid.New(),
		CheckinFecha:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckoutFecha: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		Estado:        model.ReservaConfirmada,
	}
	require.NoError(t, f.reservaRepo.Create(ctx, reserva))

	_, err := f.svc.CobrarLateCheckout(ctx, uuid.New(), reserva.ID, dto.LateCheckoutRequest{
		TurnoID: uuid.NewString(),
		Horas:   2,
		Metodo:  model.MetodoEfectivo,
		Moneda:  model.MonedaPEN,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))
	assert.Empty(t, f.pagos.registrados)
}

func TestCobrarLateCheckout_HoraFueraDeTablaNoCobra(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()
	reservaID, _ := f.reservaEnCurso(t, "100.00")

	_, err := f.svc.CobrarLateCheckout(ctx, uuid.New(), reservaID, dto.LateCheckoutRequest{
		TurnoID: uuid.NewString(),
		Horas:   7,
		Metodo:  model.MetodoEfectivo,
		Moneda:  model.MonedaPEN,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))
	assert.Empty(t, f.pagos.registrados)
}

// ── Huéspedes ────────────────────────────────────────────────────────────────

func TestCrearHuesped_ReusaDocumentoExistente(t *testing.T) {
	f := newReservaFixture()
	ctx := context.Background()

	primero, err := f.svc.CrearHuesped(ctx, dto.CrearHuespedRequest{
		TipoDocumento: "dni", Documento: "45677231", Nombre: "Juan Pérez",
	})
	require.NoError(t, err)

	segundo, err := f.svc.CrearHuesped(ctx, dto.CrearHuespedRequest{
		TipoDocumento: "dni", Documento: "45677231", Nombre: "Juan P. Díaz",
	})
	require.NoError(t, err)
	assert.Equal(t, primero.ID, segundo.ID)
	assert.Len(t, f.huespedRepo.huespedes, 1)
}
