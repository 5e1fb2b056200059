package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearHuespedRequest struct {
	TipoDocumento string  `json:"tipo_documento" validate:"required,oneof=dni ruc pasaporte ce"`
	Documento     string  `json:"documento"      validate:"required,min=6,max=15"`
	Nombre        string  `json:"nombre"         validate:"required,min=3"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Telefono      *string `json:"telefono"`
}

type CrearReservaRequest struct {
	HabitacionID  string `json:"habitacion_id"  validate:"required,uuid"`
	HuespedID     string `json:"huesped_id"     validate:"required,uuid"`
	CheckinFecha  string `json:"checkin_fecha"  validate:"required,datetime=2006-01-02"`
	CheckoutFecha string `json:"checkout_fecha" validate:"required,datetime=2006-01-02"`
}

type LateCheckoutRequest struct {
	TurnoID string `json:"turno_id" validate:"required,uuid"`
	// Horas must be one of the tabulated buckets {1,2,3,4,5,6,24}; anything
	// else is rejected, never interpolated.
	Horas       int                       `json:"horas"  validate:"required"`
	Metodo      string                    `json:"metodo" validate:"required,oneof=efectivo tarjeta yape plin transferencia"`
	Moneda      string                    `json:"moneda" validate:"required,oneof=PEN USD"`
	Comprobante *EmitirComprobanteRequest `json:"comprobante"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TarifaLateCheckout struct {
	Monto       decimal.Decimal `json:"monto"`
	Porcentaje  int             `json:"porcentaje"`
	DiaCompleto bool            `json:"dia_completo"`
}

type LateCheckoutResponse struct {
	Tarifa        TarifaLateCheckout `json:"tarifa"`
	Pago          PagoResponse       `json:"pago"`
	CheckoutFecha string             `json:"checkout_fecha"`
}

type HuespedResponse struct {
	ID            string  `json:"id"`
	TipoDocumento string  `json:"tipo_documento"`
	Documento     string  `json:"documento"`
	Nombre        string  `json:"nombre"`
	Email         *string `json:"email,omitempty"`
	Telefono      *string `json:"telefono,omitempty"`
}

type ReservaResponse struct {
	ID            string  `json:"id"`
	HabitacionID  string  `json:"habitacion_id"`
	Habitacion    string  `json:"habitacion,omitempty"`
	HuespedID     string  `json:"huesped_id"`
	Huesped       string  `json:"huesped,omitempty"`
	CheckinFecha  string  `json:"checkin_fecha"`
	CheckoutFecha string  `json:"checkout_fecha"`
	Estado        string  `json:"estado"`
	CheckinAt     *string `json:"checkin_at,omitempty"`
	CheckoutAt    *string `json:"checkout_at,omitempty"`
}
