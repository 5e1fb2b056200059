package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirTurnoRequest struct {
	CajaID      string          `json:"caja_id"      validate:"required,uuid"`
	AperturaPEN decimal.Decimal `json:"apertura_pen" validate:"min=0"`
	AperturaUSD decimal.Decimal `json:"apertura_usd" validate:"min=0"`
}

// DeclaracionCierre carries the operator's blind count per currency.
type DeclaracionCierre struct {
	PEN decimal.Decimal `json:"pen" validate:"min=0"`
	USD decimal.Decimal `json:"usd" validate:"min=0"`
}

type CerrarTurnoRequest struct {
	TurnoID       string            `json:"turno_id"    validate:"required,uuid"`
	Declaracion   DeclaracionCierre `json:"declaracion" validate:"required"`
	Observaciones *string           `json:"observaciones"`
}

type MovimientoRequest struct {
	TurnoID   string          `json:"turno_id"  validate:"required,uuid"`
	Tipo      string          `json:"tipo"      validate:"required,oneof=ingreso egreso"`
	Moneda    string          `json:"moneda"    validate:"required,oneof=PEN USD"`
	Monto     decimal.Decimal `json:"monto"     validate:"required,gt=0"`
	Categoria string          `json:"categoria" validate:"required"`
	Razon     string          `json:"razon"     validate:"required,min=5"`
	// Destinatario is mandatory for categoria "retiro_administrativo"; it is
	// appended to the stored razon for the audit trail.
	Destinatario *string `json:"destinatario"`
	Referencia   *string `json:"referencia"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ArqueoMoneda is the reconciliation detail for one currency.
type ArqueoMoneda struct {
	Apertura      decimal.Decimal  `json:"apertura"`
	PagosEfectivo decimal.Decimal  `json:"pagos_efectivo"`
	Ingresos      decimal.Decimal  `json:"ingresos"`
	Egresos       decimal.Decimal  `json:"egresos"`
	Esperado      decimal.Decimal  `json:"esperado"`
	Declarado     *decimal.Decimal `json:"declarado,omitempty"`
	Desvio        *decimal.Decimal `json:"desvio,omitempty"`
	// Clasificacion: cuadrada | sobrante | faltante (only when declarado set)
	Clasificacion *string `json:"clasificacion,omitempty"`
}

// VentasPorMetodo breaks a turno's sales down by payment method, one
// currency at a time. Every method counts toward Total; only Efectivo feeds
// the drawer's expected cash.
type VentasPorMetodo struct {
	Efectivo      decimal.Decimal `json:"efectivo"`
	Tarjeta       decimal.Decimal `json:"tarjeta"`
	Yape          decimal.Decimal `json:"yape"`
	Plin          decimal.Decimal `json:"plin"`
	Transferencia decimal.Decimal `json:"transferencia"`
	Total         decimal.Decimal `json:"total"`
}

// ArqueoSnapshot is the full reconciliation picture of a turno. Derived on
// demand from the ledger — never stored as its own entity.
type ArqueoSnapshot struct {
	PEN       ArqueoMoneda    `json:"pen"`
	USD       ArqueoMoneda    `json:"usd"`
	VentasPEN VentasPorMetodo `json:"ventas_pen"`
	VentasUSD VentasPorMetodo `json:"ventas_usd"`
}

type TurnoResponse struct {
	TurnoID       string         `json:"turno_id"`
	CajaID        string         `json:"caja_id"`
	CajaNombre    string         `json:"caja_nombre,omitempty"`
	UsuarioID     string         `json:"usuario_id"`
	Estado        string         `json:"estado"`
	CierreForzado bool           `json:"cierre_forzado"`
	CerradoPor    *string        `json:"cerrado_por,omitempty"`
	Arqueo        ArqueoSnapshot `json:"arqueo"`
	Observaciones *string        `json:"observaciones,omitempty"`
	AbiertoAt     string         `json:"abierto_at"`
	CerradoAt     *string        `json:"cerrado_at,omitempty"`
}

type MovimientoResponse struct {
	ID             string          `json:"id"`
	TurnoID        string          `json:"turno_id"`
	Tipo           string          `json:"tipo"`
	Moneda         string          `json:"moneda"`
	Monto          decimal.Decimal `json:"monto"`
	Categoria      string          `json:"categoria"`
	CategoriaLabel string          `json:"categoria_label"`
	Razon          string          `json:"razon"`
	Referencia     *string         `json:"referencia,omitempty"`
	CreatedAt      string          `json:"created_at"`
}
