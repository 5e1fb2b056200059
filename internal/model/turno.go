package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Turno estados
const (
	TurnoAbierto = "abierto"
	TurnoCerrado = "cerrado"
)

// Monedas manejadas por la caja.
const (
	MonedaPEN = "PEN"
	MonedaUSD = "USD"
)

// Clasificación del desvío al cierre, per currency.
const (
	ClasifCuadrada = "cuadrada"
	ClasifSobrante = "sobrante"
	ClasifFaltante = "faltante"
)

// Turno represents one operator's accountable period of custody over a cash
// drawer. At most one turno per caja may be "abierto" at any time — enforced
// by a partial unique index at the DB level (see infra.applySchemaPatches),
// not merely by application checks.
type Turno struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null"`
	// Opening float per currency. PEN is mandatory, USD optional (zero when
	// the drawer carries no dollars).
	AperturaPEN decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AperturaUSD decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Declared closing counts — nil while the turno is open.
	DeclaradoPEN *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DeclaradoUSD *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Computed at close and persisted for audit; live reports recompute.
	EsperadoPEN *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EsperadoUSD *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DesvioPEN   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DesvioUSD   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// ClasificacionPEN/USD: "cuadrada" | "sobrante" | "faltante"
	ClasificacionPEN *string `gorm:"type:varchar(20)"`
	ClasificacionUSD *string `gorm:"type:varchar(20)"`
	Estado           string  `gorm:"type:varchar(20);not null;default:'abierto'"`
	// CierreForzado marks an administrative override close; CerradoPor keeps
	// who actually executed the close (differs from UsuarioID on override).
	CierreForzado bool       `gorm:"not null;default:false"`
	CerradoPor    *uuid.UUID `gorm:"type:uuid"`
	Observaciones *string
	AbiertoAt     time.Time
	CerradoAt     *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:TurnoID"`
}

// Caja is a named physical cash point (recepción, bar, …) that turnos open
// against.
type Caja struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Activa    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}
