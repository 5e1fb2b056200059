package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Comprobante tipos
const (
	ComprobanteBoleta      = "boleta"
	ComprobanteFactura     = "factura"
	ComprobanteNotaCredito = "nota_credito"
)

// Estados SUNAT. "pendiente" means the provider has not yet confirmed nor
// denied; the sync job and the webhook converge it to a terminal state.
const (
	SunatPendiente = "pendiente"
	SunatAceptado  = "aceptado"
	SunatRechazado = "rechazado"
	SunatAnulado   = "anulado"
)

// Comprobante stores an electronic tax document (boleta / factura / nota de
// crédito) submitted to SUNAT through NubeFact. Serie+Numero identify the
// document at the provider and must be unique together.
type Comprobante struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PagoID uuid.UUID `gorm:"type:uuid;index;not null"`
	Tipo   string    `gorm:"type:varchar(20);not null"`
	Serie  string    `gorm:"type:varchar(10);not null;uniqueIndex:ux_comprobantes_serie_numero"`
	Numero int64     `gorm:"not null;uniqueIndex:ux_comprobantes_serie_numero"`
	// Receptor: DNI for boletas, RUC for facturas.
	ReceptorDocumento string          `gorm:"type:varchar(15);not null"`
	ReceptorNombre    string          `gorm:"not null"`
	Moneda            string          `gorm:"type:varchar(3);not null;default:'PEN'"`
	MontoTotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EstadoSunat       string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// Filled once SUNAT accepts the document.
	CodigoHash   *string `gorm:"type:varchar(100)"`
	EnlaceCDR    *string
	EnlaceXML    *string
	EnlacePDF    *string
	ExternalID   *string `gorm:"type:varchar(60)"`
	// UltimoError keeps the provider's last rejection / communication error.
	UltimoError *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SerieComprobante is the per-serie numbering counter. Numbers are allocated
// with an atomic upsert on this row, never by scanning comprobantes.
type SerieComprobante struct {
	Serie        string `gorm:"type:varchar(10);primaryKey"`
	UltimoNumero int64  `gorm:"not null;default:0"`
}

func (SerieComprobante) TableName() string { return "series_comprobante" }
