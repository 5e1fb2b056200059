package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory CajaRepository ─────────────────────────────────────────────────

type memCajaRepo struct {
	cajas       map[uuid.UUID]*model.Caja
	turnos      map[uuid.UUID]*model.Turno
	movimientos []model.MovimientoCaja

	// antesDeCerrar corre justo antes de que la transición de cierre tome
	// efecto, para simular escrituras que le ganan la carrera al cierre.
	antesDeCerrar func()
}

func newMemCajaRepo() *memCajaRepo {
	return &memCajaRepo{
		cajas:  make(map[uuid.UUID]*model.Caja),
		turnos: make(map[uuid.UUID]*model.Turno),
	}
}

func (r *memCajaRepo) addCaja(nombre string) uuid.UUID {
	id := uuid.New()
	r.cajas[id] = &model.Caja{ID: id, Nombre: nombre, Activa: true}
	return id
}

func (r *memCajaRepo) ListCajas(_ context.Context) ([]model.Caja, error) {
	var out []model.Caja
	for _, c := range r.cajas {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memCajaRepo) FindCajaByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *memCajaRepo) CreateTurno(_ context.Context, t *model.Turno) error {
	// Mirror of the partial unique index: one open turno per caja.
	for _, existing := range r.turnos {
		if existing.CajaID == t.CajaID && existing.Estado == model.TurnoAbierto {
			return model.ErrCajaOcupada
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	copia := *t
	r.turnos[t.ID] = &copia
	return nil
}

func (r *memCajaRepo) FindTurnoByID(_ context.Context, id uuid.UUID) (*model.Turno, error) {
	t, ok := r.turnos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copia := *t
	copia.Movimientos = nil
	for _, m := range r.movimientos {
		if m.TurnoID == id {
			copia.Movimientos = append(copia.Movimientos, m)
		}
	}
	return &copia, nil
}

func (r *memCajaRepo) FindTurnoAbiertoPorCaja(_ context.Context, cajaID uuid.UUID) (*model.Turno, error) {
	for _, t := range r.turnos {
		if t.CajaID == cajaID && t.Estado == model.TurnoAbierto {
			copia := *t
			return &copia, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memCajaRepo) FindTurnoAbiertoPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.Turno, error) {
	for _, t := range r.turnos {
		if t.UsuarioID == usuarioID && t.Estado == model.TurnoAbierto {
			copia := *t
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *memCajaRepo) UpdateTurno(_ context.Context, t *model.Turno) error {
	if r.antesDeCerrar != nil {
		r.antesDeCerrar()
	}
	// Mirror of the guarded UPDATE ... WHERE estado = 'abierto'.
	stored, ok := r.turnos[t.ID]
	if !ok || stored.Estado != model.TurnoAbierto {
		return model.ErrTurnoNoAbierto
	}
	copia := *t
	r.turnos[t.ID] = &copia
	return nil
}

func (r *memCajaRepo) ActualizarArqueo(_ context.Context, t *model.Turno) error {
	stored, ok := r.turnos[t.ID]
	if !ok {
		return errors.New("not found")
	}
	stored.EsperadoPEN = t.EsperadoPEN
	stored.EsperadoUSD = t.EsperadoUSD
	stored.DesvioPEN = t.DesvioPEN
	stored.DesvioUSD = t.DesvioUSD
	stored.ClasificacionPEN = t.ClasificacionPEN
	stored.ClasificacionUSD = t.ClasificacionUSD
	return nil
}

func (r *memCajaRepo) ListTurnos(_ context.Context, _, _ int) ([]model.Turno, int64, error) {
	var out []model.Turno
	for _, t := range r.turnos {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *memCajaRepo) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	t, ok := r.turnos[m.TurnoID]
	if !ok || t.Estado != model.TurnoAbierto {
		return model.ErrTurnoNoAbierto
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *memCajaRepo) ListMovimientos(_ context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.TurnoID == turnoID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── In-memory PagoRepository ─────────────────────────────────────────────────

type memPagoRepo struct {
	pagos map[uuid.UUID]*model.Pago
	caja  *memCajaRepo
}

func newMemPagoRepo(caja *memCajaRepo) *memPagoRepo {
	return &memPagoRepo{pagos: make(map[uuid.UUID]*model.Pago), caja: caja}
}

func (r *memPagoRepo) Create(_ context.Context, p *model.Pago) error {
	if r.caja != nil {
		t, ok := r.caja.turnos[p.TurnoID]
		if !ok || t.Estado != model.TurnoAbierto {
			return model.ErrTurnoNoAbierto
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	copia := *p
	r.pagos[p.ID] = &copia
	return nil
}

func (r *memPagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pago, error) {
	p, ok := r.pagos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *memPagoRepo) ListByTurno(_ context.Context, turnoID uuid.UUID) ([]model.Pago, error) {
	var out []model.Pago
	for _, p := range r.pagos {
		if p.TurnoID == turnoID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPagoRepo) ListByReserva(_ context.Context, reservaID uuid.UUID) ([]model.Pago, error) {
	var out []model.Pago
	for _, p := range r.pagos {
		if p.ReservaID != nil && *p.ReservaID == reservaID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPagoRepo) SetComprobante(_ context.Context, pagoID, comprobanteID uuid.UUID) error {
	p, ok := r.pagos[pagoID]
	if !ok {
		return errors.New("not found")
	}
	p.ComprobanteID = &comprobanteID
	return nil
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func newCajaSvc(t *testing.T) (CajaService, *memCajaRepo, *memPagoRepo, uuid.UUID) {
	t.Helper()
	cajaRepo := newMemCajaRepo()
	pagoRepo := newMemPagoRepo(cajaRepo)
	svc := NewCajaService(cajaRepo, pagoRepo, nil, nil, tol)
	cajaID := cajaRepo.addCaja("Recepción")
	return svc, cajaRepo, pagoRepo, cajaID
}

func abrirTurno(t *testing.T, svc CajaService, cajaID, usuarioID uuid.UUID, aperturaPEN string) *dto.TurnoResponse {
	t.Helper()
	resp, err := svc.AbrirTurno(context.Background(), usuarioID, dto.AbrirTurnoRequest{
		CajaID:      cajaID.String(),
		AperturaPEN: dec(aperturaPEN),
		AperturaUSD: decimal.Zero,
	})
	require.NoError(t, err)
	return resp
}

// ── Apertura ─────────────────────────────────────────────────────────────────

func TestAbrirTurno_DobleAperturaMismaCaja(t *testing.T) {
	svc, _, _, cajaID := newCajaSvc(t)
	ctx := context.Background()

	abrirTurno(t, svc, cajaID, uuid.New(), "100.00")

	_, err := svc.AbrirTurno(ctx, uuid.New(), dto.AbrirTurnoRequest{
		CajaID:      cajaID.String(),
		AperturaPEN: dec("50.00"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrCajaOcupada))
}

func TestAbrirTurno_AperturaNegativa(t *testing.T) {
	svc, _, _, cajaID := newCajaSvc(t)

	_, err := svc.AbrirTurno(context.Background(), uuid.New(), dto.AbrirTurnoRequest{
		CajaID:      cajaID.String(),
		AperturaPEN: dec("-1.00"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))
}

func TestAbrirTurno_TrasCierreLiberaLaCaja(t *testing.T) {
	svc, _, _, cajaID := newCajaSvc(t)
	ctx := context.Background()
	operador := uuid.New()

	turno := abrirTurno(t, svc, cajaID, operador, "100.00")
	declarado := dec("100.00")
	_, err := svc.CerrarTurno(ctx, operador, dto.CerrarTurnoRequest{
		TurnoID:     turno.TurnoID,
		Declaracion: dto.DeclaracionCierre{PEN: declarado, USD: decimal.Zero},
	})
	require.NoError(t, err)

	// La caja queda libre para el siguiente turno
	abrirTurno(t, svc, cajaID, uuid.New(), "100.00")
}

// ── Cierre ───────────────────────────────────────────────────────────────────

func TestCerrarTurno_DobleCierre(t *testing.T) {
	svc, _, _, cajaID := newCajaSvc(t)
	ctx := context.Background()
	operador := uuid.New()

	turno := abrirTurno(t, svc, cajaID, operador, "100.00")
	req := dto.CerrarTurnoRequest{
		TurnoID:     turno.TurnoID,
		Declaracion: dto.DeclaracionCierre{PEN: dec("100.00"), USD: decimal.Zero},
	}

	_, err := svc.CerrarTurno(ctx, operador, req)
	require.NoError(t, err)

	_, err = svc.CerrarTurno(ctx, operador, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTurnoNoAbierto))
}

func TestCerrarTurno_SoloElOperadorQueAbrio(t *testing.T) {
	svc, _, _, cajaID := newCajaSvc(t)
	operador := uuid.New()
	turno := abrirTurno(t, svc, cajaID, operador, "100.00")

	_, err := svc.CerrarTurno(context.Background(), uuid.New(), dto.CerrarTurnoRequest{
		TurnoID:     turno.TurnoID,
		Declaracion: dto.DeclaracionCierre{PEN: dec("100.00"), USD: decimal.Zero},
	})
	require.Error(t, err)
}

func TestCerrarTurno_ClasificaElDesvio(t *testing.T) {
	svc, _, pagoRepo, cajaID := newCajaSvc(t)
	ctx := context.Background()
	operador := uuid.New()

	turno := abrirTurno(t, svc, cajaID, operador, "200.00")
	turnoID := uuid.MustParse(turno.TurnoID)

	require.NoError(t, pagoRepo.Create(ctx, &model.Pago{
		TurnoID: turnoID, Metodo: model.MetodoEfectivo, Moneda: model.MonedaPEN,
		Monto: dec("120.00"), Concepto: "Estadía", UsuarioID: operador,
	}))
	require.NoError(t, svc.RegistrarMovimiento(ctx, operador, dto.MovimientoRequest{
		TurnoID: turno.TurnoID, Tipo: model.MovEgreso, Moneda: model.MonedaPEN,
		Monto: dec("20.00"), Categoria: model.CategoriaGastoOperativo,
		Razon: "Compra de focos",
	}))

	// Esperado: 200 + 120 − 20 = 300; declarado 296.80 → faltante de 3.20
	resp, err := svc.CerrarTurno(ctx, operador, dto.CerrarTurnoRequest{
		TurnoID:     turno.TurnoID,
		Declaracion: dto.DeclaracionCierre{PEN: dec("296.80"), USD: decimal.Zero},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Arqueo.PEN.Desvio)
	assert.True(t, resp.Arqueo.PEN.Esperado.Equal(dec("300.00")))
	assert.True(t, resp.Arqueo.PEN.Desvio.Equal(dec("-3.20")))
	assert.Equal(t, model.ClasifFaltante, *resp.Arqueo.PEN.Clasificacion)
	assert.Equal(t, model.TurnoCerrado, resp.Estado)
	assert.False(t, resp.CierreForzado)
}

// Un pago que se registra justo antes de que la transición de cierre tome
// efecto debe aparecer en el arqueo persistido: el esperado se calcula
// después del cierre, cuando el ledger ya no puede cambiar.
func TestCerrarTurno_PagoQueGanaLaCarreraAlCierre(t *testing.T) {
	svc, cajaRepo, pagoRepo, cajaID := newCajaSvc(t)
	ctx := context.Background()
	operador := uuid.New()

	turno := abrirTurno(t, svc, cajaID, operador, "100.00")
	turnoID := uuid.MustParse(turno.TurnoID)

	cajaRepo.antesDeCerrar = func() {
		cajaRepo.antesDeCerrar = nil
		require.NoError(t, pagoRepo.Create(ctx, &model.Pago{
			TurnoID: turnoID, Metodo: model.MetodoEfectivo, Moneda: model.MonedaPEN,
			Monto: dec("50.00"), Concepto: "Estadía", UsuarioID: operador,
		}))
	}

	resp, err := svc.CerrarTurno(ctx, operador, dto.CerrarTurnoRequest{
		TurnoID:     turno.TurnoID,
		Declaracion: dto.DeclaracionCierre{PEN: dec("150.00"), USD: decimal.Zero},
	})
	require.NoError(t, err)
	assert.True(t, resp.Arqueo.PEN.Esperado.Equal(dec("150.00")))
	assert.Equal(t, model.ClasifCuadrada, *resp.Arqueo.PEN.Clasificacion)

	// El arqueo guardado también incluye el pago tardío.
	stored, err := cajaRepo.FindTurnoByID(ctx, turnoID)
	require.NoError(t, err)
	require.NotNil(t, stored.EsperadoPEN)
	assert.True(t, stored.EsperadoPEN.Equal(dec("150.00")))
}

func TestCerrarTurnoForzado_AuditaAlSupervisor(t *testing.T) {
	svc, repo, _, cajaID := newCajaSvc(t)
	operador := uuid.New()
	supervisor := uuid.New()
	turno := abrirTurno(t, svc, cajaID, operador, "100.00")

	resp, err := svc.CerrarTurnoForzado(context.Background(), supervisor, dto.CerrarTurnoRequest{
		TurnoID:     turno.TurnoID,
		Declaracion: dto.DeclaracionCierre{PEN: dec("100.00"), USD: decimal.Zero},
	})
	require.NoError(t, err)
	assert.True(t, resp.CierreForzado)
	require.NotNil(t, resp.CerradoPor)
	assert.Equal(t, supervisor.String(), *resp.CerradoPor)

	stored := repo.turnos[uuid.MustParse(turno.TurnoID)]
	assert.True(t, stored.CierreForzado)
}

// ── Movimientos ──────────────────────────────────────────────────────────────

func TestRegistrarMovimiento_Validaciones(t *testing.T) {
	svc, _, _, cajaID := newCajaSvc(t)
	ctx := context.Background()
	operador := uuid.New()
	turno := abrirTurno(t, svc, cajaID, operador, "100.00")

	base := dto.MovimientoRequest{
		TurnoID: turno.TurnoID, Tipo: model.MovEgreso, Moneda: model.MonedaPEN,
		Monto: dec("10.00"), Categoria: model.CategoriaGastoOperativo, Razon: "Compra de agua",
	}

	t.Run("monto cero", func(t *testing.T) {
		req := base
		req.Monto = decimal.Zero
		err := svc.RegistrarMovimiento(ctx, operador, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrValidacion))
	})

	t.Run("razon corta", func(t *testing.T) {
		req := base
		req.Razon = "agua" // 4 caracteres
		err := svc.RegistrarMovimiento(ctx, operador, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrValidacion))
	})

	t.Run("categoria desconocida", func(t *testing.T) {
		req := base
		req.Categoria = "sobrecosto"
		err := svc.RegistrarMovimiento(ctx, operador, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrValidacion))
	})

	t.Run("turno cerrado", func(t *testing.T) {
		_, err := svc.CerrarTurno(ctx, operador, dto.CerrarTurnoRequest{
			TurnoID:     turno.TurnoID,
			Declaracion: dto.DeclaracionCierre{PEN: dec("100.00"), USD: decimal.Zero},
		})
		require.NoError(t, err)
		err = svc.RegistrarMovimiento(ctx, operador, base)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrTurnoNoAbierto))
	})
}

func TestRegistrarMovimiento_RetiroAdministrativo(t *testing.T) {
	svc, repo, _, cajaID := newCajaSvc(t)
	ctx := context.Background()
	operador := uuid.New()
	turno := abrirTurno(t, svc, cajaID, operador, "100.00")

	req := dto.MovimientoRequest{
		TurnoID: turno.TurnoID, Tipo: model.MovEgreso, Moneda: model.MonedaPEN,
		Monto: dec("50.00"), Categoria: model.CategoriaRetiroAdministrativo,
		Razon: "Depósito bancario",
	}

	// Sin destinatario → rechazado
	err := svc.RegistrarMovimiento(ctx, operador, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidacion))

	// Con destinatario → queda en la razón para auditoría
	destinatario := "María Quispe"
	req.Destinatario = &destinatario
	require.NoError(t, svc.RegistrarMovimiento(ctx, operador, req))

	require.Len(t, repo.movimientos, 1)
	assert.True(t, strings.Contains(repo.movimientos[0].Razon, "María Quispe"))
	assert.True(t, strings.Contains(repo.movimientos[0].Razon, "Depósito bancario"))
}

// ── Reporte ──────────────────────────────────────────────────────────────────

func TestObtenerReporte_TurnoAbiertoSinClasificacion(t *testing.T) {
	svc, _, _, cajaID := newCajaSvc(t)
	operador := uuid.New()
	turno := abrirTurno(t, svc, cajaID, operador, "150.00")

	resp, err := svc.ObtenerReporte(context.Background(), uuid.MustParse(turno.TurnoID))
	require.NoError(t, err)
	assert.Equal(t, model.TurnoAbierto, resp.Estado)
	assert.True(t, resp.Arqueo.PEN.Esperado.Equal(dec("150.00")))
	assert.Nil(t, resp.Arqueo.PEN.Clasificacion)
}
