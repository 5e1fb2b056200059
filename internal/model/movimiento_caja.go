package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movimiento tipos
const (
	MovIngreso = "ingreso"
	MovEgreso  = "egreso"
)

// Movimiento categorías (closed enumeration — behavior keys off the tag,
// never the label).
const (
	CategoriaGastoOperativo       = "gasto_operativo"
	CategoriaCompraInsumos        = "compra_insumos"
	CategoriaRetiroAdministrativo = "retiro_administrativo"
	CategoriaOtros                = "otros"
)

var categoriaLabels = map[string]string{
	CategoriaGastoOperativo:       "Gasto operativo",
	CategoriaCompraInsumos:        "Compra de insumos",
	CategoriaRetiroAdministrativo: "Retiro administrativo",
	CategoriaOtros:                "Otros",
}

// CategoriaLabel returns the display label for a movement category.
func CategoriaLabel(categoria string) string {
	if l, ok := categoriaLabels[categoria]; ok {
		return l
	}
	return categoria
}

// CategoriaValida reports whether the tag belongs to the closed enumeration.
func CategoriaValida(categoria string) bool {
	_, ok := categoriaLabels[categoria]
	return ok
}

// MovimientoCaja is an immutable entry in the cash drawer ledger. Monto is
// always positive; direction lives in Tipo. Movements are NEVER updated or
// deleted — corrections create inverse entries. Totals are recomputed from
// the ledger on read, never stored as running aggregates.
// TableName pins the Spanish plural; GORM's inflector would produce
// "movimiento_cajas".
func (MovimientoCaja) TableName() string { return "movimientos_caja" }

type MovimientoCaja struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID uuid.UUID `gorm:"type:uuid;index;not null"`
	// Tipo: "ingreso" | "egreso"
	Tipo      string          `gorm:"type:varchar(10);not null"`
	Moneda    string          `gorm:"type:varchar(3);not null;default:'PEN'"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Categoria string          `gorm:"type:varchar(30);not null"`
	Razon     string          `gorm:"not null"`
	// Referencia links to an external document (voucher number, etc.)
	Referencia *string
	UsuarioID  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
}
