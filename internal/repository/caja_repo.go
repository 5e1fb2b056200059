package repository

import (
	"context"
	"errors"

	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	ListCajas(ctx context.Context) ([]model.Caja, error)
	FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)

	CreateTurno(ctx context.Context, t *model.Turno) error
	FindTurnoByID(ctx context.Context, id uuid.UUID) (*model.Turno, error)
	FindTurnoAbiertoPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.Turno, error)
	FindTurnoAbiertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Turno, error)
	UpdateTurno(ctx context.Context, t *model.Turno) error
	ActualizarArqueo(ctx context.Context, t *model.Turno) error
	ListTurnos(ctx context.Context, page, limit int) ([]model.Turno, int64, error)

	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) ListCajas(ctx context.Context) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).Where("activa = true").Order("nombre ASC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

// CreateTurno relies on the partial unique index ux_turnos_caja_abierto to
// reject a second open turno on the same caja: two concurrent opens cannot
// both succeed even if both passed the application-level check.
func (r *cajaRepo) CreateTurno(ctx context.Context, t *model.Turno) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrCajaOcupada
	}
	return err
}

func (r *cajaRepo) FindTurnoByID(ctx context.Context, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).Preload("Movimientos").First(&t, id).Error
	return &t, err
}

func (r *cajaRepo) FindTurnoAbiertoPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND estado = ?", cajaID, model.TurnoAbierto).
		First(&t).Error
	return &t, err
}

func (r *cajaRepo) FindTurnoAbiertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND estado = ?", usuarioID, model.TurnoAbierto).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

// UpdateTurno closes a turno. The WHERE estado='abierto' guard makes the
// transition single-shot: a concurrent close loses the race and sees zero
// rows affected. The arqueo fields are persisted separately, after the
// transition, once the ledger can no longer change.
func (r *cajaRepo) UpdateTurno(ctx context.Context, t *model.Turno) error {
	res := r.db.WithContext(ctx).
		Model(&model.Turno{}).
		Where("id = ? AND estado = ?", t.ID, model.TurnoAbierto).
		Select("declarado_pen", "declarado_usd",
			"estado", "cierre_forzado", "cerrado_por", "observaciones", "cerrado_at").
		Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrTurnoNoAbierto
	}
	return nil
}

// ActualizarArqueo persists the computed arqueo of an already cerrado turno.
func (r *cajaRepo) ActualizarArqueo(ctx context.Context, t *model.Turno) error {
	return r.db.WithContext(ctx).
		Model(&model.Turno{}).
		Where("id = ?", t.ID).
		Select("esperado_pen", "esperado_usd", "desvio_pen", "desvio_usd",
			"clasificacion_pen", "clasificacion_usd").
		Updates(t).Error
}

func (r *cajaRepo) ListTurnos(ctx context.Context, page, limit int) ([]model.Turno, int64, error) {
	var turnos []model.Turno
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Turno{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("abierto_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&turnos).Error
	return turnos, total, err
}

// CreateMovimiento appends a ledger entry. The turno-open check happens
// inside the same transaction as the insert, with the turno row locked, so a
// close racing with the insert cannot leave a movement on a cerrado turno.
func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Turno
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, m.TurnoID).Error; err != nil {
			return model.ErrTurnoNoAbierto
		}
		if t.Estado != model.TurnoAbierto {
			return model.ErrTurnoNoAbierto
		}
		return tx.Create(m).Error
	})
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}
