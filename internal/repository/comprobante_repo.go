package repository

import (
	"context"

	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComprobanteRepository interface {
	// Create persists the comprobante. When c.Numero is zero it also
	// allocates the next number of c.Serie, in the same transaction, so
	// concurrent emissions never share serie+numero.
	Create(ctx context.Context, c *model.Comprobante) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error)
	FindBySerieNumero(ctx context.Context, serie string, numero int64) (*model.Comprobante, error)
	FindByPagoID(ctx context.Context, pagoID uuid.UUID) (*model.Comprobante, error)
	ListPendientes(ctx context.Context, limit int) ([]model.Comprobante, error)
	Update(ctx context.Context, c *model.Comprobante) error
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository {
	return &comprobanteRepo{db: db}
}

func (r *comprobanteRepo) Create(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.Numero == 0 {
			// The upsert takes a row lock on the serie counter, so two
			// emissions on the same serie serialize here and each gets
			// its own numero.
			var next int64
			err := tx.Raw(`INSERT INTO series_comprobante (serie, ultimo_numero) VALUES (?, 1)
				ON CONFLICT (serie) DO UPDATE SET ultimo_numero = series_comprobante.ultimo_numero + 1
				RETURNING ultimo_numero`, c.Serie).
				Scan(&next).Error
			if err != nil {
				return err
			}
			c.Numero = next
		}
		return tx.Create(c).Error
	})
}

func (r *comprobanteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *comprobanteRepo) FindBySerieNumero(ctx context.Context, serie string, numero int64) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).
		Where("serie = ? AND numero = ?", serie, numero).
		First(&c).Error
	return &c, err
}

func (r *comprobanteRepo) FindByPagoID(ctx context.Context, pagoID uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).Where("pago_id = ?", pagoID).First(&c).Error
	return &c, err
}

func (r *comprobanteRepo) ListPendientes(ctx context.Context, limit int) ([]model.Comprobante, error) {
	var comps []model.Comprobante
	err := r.db.WithContext(ctx).
		Where("estado_sunat = ?", model.SunatPendiente).
		Order("created_at ASC").
		Limit(limit).
		Find(&comps).Error
	return comps, err
}

func (r *comprobanteRepo) Update(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Save(c).Error
}
