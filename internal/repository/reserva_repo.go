package repository

import (
	"context"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservaRepository interface {
	Create(ctx context.Context, res *model.Reserva) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reserva, error)
	Update(ctx context.Context, res *model.Reserva) error
	// ExtenderCheckout pushes the checkout date forward by one day. Fails on
	// reservas that are not en_curso.
	ExtenderCheckout(ctx context.Context, id uuid.UUID, nueva time.Time) error
	ListActivas(ctx context.Context) ([]model.Reserva, error)
}

type reservaRepo struct{ db *gorm.DB }

func NewReservaRepository(db *gorm.DB) ReservaRepository { return &reservaRepo{db: db} }

func (r *reservaRepo) Create(ctx context.Context, res *model.Reserva) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *reservaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Reserva, error) {
	var res model.Reserva
	err := r.db.WithContext(ctx).
		Preload("Habitacion").
		Preload("Huesped").
		First(&res, id).Error
	return &res, err
}

func (r *reservaRepo) Update(ctx context.Context, res *model.Reserva) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *reservaRepo) ExtenderCheckout(ctx context.Context, id uuid.UUID, nueva time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Reserva{}).
		Where("id = ? AND estado = ?", id, model.ReservaEnCurso).
		Update("checkout_fecha", nueva)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reservaRepo) ListActivas(ctx context.Context) ([]model.Reserva, error) {
	var reservas []model.Reserva
	err := r.db.WithContext(ctx).
		Preload("Habitacion").
		Preload("Huesped").
		Where("estado IN ?", []string{model.ReservaConfirmada, model.ReservaEnCurso}).
		Order("checkin_fecha ASC").
		Find(&reservas).Error
	return reservas, err
}

// ── Habitaciones y huéspedes ─────────────────────────────────────────────────
// Thin lookups only — record management lives in the admin surface, outside
// this service's scope.

type HabitacionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Habitacion, error)
	List(ctx context.Context) ([]model.Habitacion, error)
	SetEstado(ctx context.Context, id uuid.UUID, estado string) error
}

type habitacionRepo struct{ db *gorm.DB }

func NewHabitacionRepository(db *gorm.DB) HabitacionRepository { return &habitacionRepo{db: db} }

func (r *habitacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Habitacion, error) {
	var h model.Habitacion
	err := r.db.WithContext(ctx).First(&h, id).Error
	return &h, err
}

func (r *habitacionRepo) List(ctx context.Context) ([]model.Habitacion, error) {
	var habs []model.Habitacion
	err := r.db.WithContext(ctx).Where("activa = true").Order("numero ASC").Find(&habs).Error
	return habs, err
}

func (r *habitacionRepo) SetEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).
		Model(&model.Habitacion{}).
		Where("id = ?", id).
		Update("estado", estado).Error
}

type HuespedRepository interface {
	Create(ctx context.Context, h *model.Huesped) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Huesped, error)
	FindByDocumento(ctx context.Context, documento string) (*model.Huesped, error)
}

type huespedRepo struct{ db *gorm.DB }

func NewHuespedRepository(db *gorm.DB) HuespedRepository { return &huespedRepo{db: db} }

func (r *huespedRepo) Create(ctx context.Context, h *model.Huesped) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *huespedRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Huesped, error) {
	var h model.Huesped
	err := r.db.WithContext(ctx).First(&h, id).Error
	return &h, err
}

func (r *huespedRepo) FindByDocumento(ctx context.Context, documento string) (*model.Huesped, error) {
	var h model.Huesped
	err := r.db.WithContext(ctx).Where("documento = ?", documento).First(&h).Error
	return &h, err
}
