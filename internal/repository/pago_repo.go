package repository

import (
	"context"

	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PagoRepository interface {
	Create(ctx context.Context, p *model.Pago) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error)
	ListByTurno(ctx context.Context, turnoID uuid.UUID) ([]model.Pago, error)
	ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.Pago, error)
	SetComprobante(ctx context.Context, pagoID, comprobanteID uuid.UUID) error
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

// Create inserts the payment only while its turno is abierto, checked under a
// row lock in the same transaction as the insert.
func (r *pagoRepo) Create(ctx context.Context, p *model.Pago) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Turno
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, p.TurnoID).Error; err != nil {
			return model.ErrTurnoNoAbierto
		}
		if t.Estado != model.TurnoAbierto {
			return model.ErrTurnoNoAbierto
		}
		return tx.Create(p).Error
	})
}

func (r *pagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error) {
	var p model.Pago
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *pagoRepo) ListByTurno(ctx context.Context, turnoID uuid.UUID) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("created_at ASC").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).
		Where("reserva_id = ?", reservaID).
		Order("created_at ASC").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) SetComprobante(ctx context.Context, pagoID, comprobanteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Pago{}).
		Where("id = ?", pagoID).
		Update("comprobante_id", comprobanteID).Error
}
