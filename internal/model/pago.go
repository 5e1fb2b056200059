package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Métodos de pago. Only "efectivo" affects the physical drawer's expected
// balance; every method counts toward the turno's total sales.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoYape          = "yape"
	MetodoPlin          = "plin"
	MetodoTransferencia = "transferencia"
)

var metodoLabels = map[string]string{
	MetodoEfectivo:      "Efectivo",
	MetodoTarjeta:       "Tarjeta",
	MetodoYape:          "Yape",
	MetodoPlin:          "Plin",
	MetodoTransferencia: "Transferencia",
}

// MetodoLabel returns the display label for a payment method.
func MetodoLabel(metodo string) string {
	if l, ok := metodoLabels[metodo]; ok {
		return l
	}
	return metodo
}

// MetodoValido reports whether the tag belongs to the closed enumeration.
func MetodoValido(metodo string) bool {
	_, ok := metodoLabels[metodo]
	return ok
}

// Pago is a guest payment taken against an open turno. Concepto documents
// what was charged (estadía, late checkout, consumo, …).
type Pago struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ReservaID     *uuid.UUID      `gorm:"type:uuid;index"`
	ComprobanteID *uuid.UUID      `gorm:"type:uuid"`
	Metodo        string          `gorm:"type:varchar(20);not null"`
	Moneda        string          `gorm:"type:varchar(3);not null;default:'PEN'"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Concepto      string          `gorm:"not null"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}
