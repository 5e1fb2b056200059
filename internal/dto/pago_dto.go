package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarPagoRequest struct {
	TurnoID   string          `json:"turno_id"   validate:"required,uuid"`
	ReservaID *string         `json:"reserva_id" validate:"omitempty,uuid"`
	Metodo    string          `json:"metodo"     validate:"required,oneof=efectivo tarjeta yape plin transferencia"`
	Moneda    string          `json:"moneda"     validate:"required,oneof=PEN USD"`
	Monto     decimal.Decimal `json:"monto"      validate:"required,gt=0"`
	Concepto  string          `json:"concepto"   validate:"required,min=3"`
	// Emitir comprobante electrónico for this payment.
	Comprobante *EmitirComprobanteRequest `json:"comprobante"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoResponse struct {
	ID          string               `json:"id"`
	TurnoID     string               `json:"turno_id"`
	ReservaID   *string              `json:"reserva_id,omitempty"`
	Metodo      string               `json:"metodo"`
	Moneda      string               `json:"moneda"`
	Monto       decimal.Decimal      `json:"monto"`
	Concepto    string               `json:"concepto"`
	Comprobante *ComprobanteResponse `json:"comprobante,omitempty"`
	CreatedAt   string               `json:"created_at"`
}
