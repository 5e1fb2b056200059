package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EmitirComprobanteRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof=boleta factura nota_credito"`
	// DNI for boletas, RUC for facturas.
	ReceptorDocumento string `json:"receptor_documento" validate:"required,min=8,max=11"`
	ReceptorNombre    string `json:"receptor_nombre"    validate:"required,min=3"`
}

// WebhookNubeFact is the inbound callback NubeFact sends after SUNAT resolves
// a document. Field names follow the provider's wire format verbatim.
type WebhookNubeFact struct {
	Serie            string  `json:"serie"`
	Numero           int64   `json:"numero"`
	Operacion        string  `json:"operacion"` // generar_comprobante | generar_anulacion
	AceptadaPorSunat *bool   `json:"aceptada_por_sunat"`
	SunatDescription *string `json:"sunat_description"`
	CodigoHash       *string `json:"codigo_hash"`
	EnlaceDelCDR     *string `json:"enlace_del_cdr"`
	EnlaceDelXML     *string `json:"enlace_del_xml"`
	EnlaceDelPDF     *string `json:"enlace_del_pdf"`
	ExternalID       *string `json:"external_id"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComprobanteResponse struct {
	ID                string          `json:"id"`
	Tipo              string          `json:"tipo"`
	Serie             string          `json:"serie"`
	Numero            int64           `json:"numero"`
	ReceptorDocumento string          `json:"receptor_documento"`
	ReceptorNombre    string          `json:"receptor_nombre"`
	Moneda            string          `json:"moneda"`
	MontoTotal        decimal.Decimal `json:"monto_total"`
	EstadoSunat       string          `json:"estado_sunat"`
	CodigoHash        *string         `json:"codigo_hash,omitempty"`
	EnlaceCDR         *string         `json:"enlace_cdr,omitempty"`
	EnlaceXML         *string         `json:"enlace_xml,omitempty"`
	EnlacePDF         *string         `json:"enlace_pdf,omitempty"`
	UltimoError       *string         `json:"ultimo_error,omitempty"`
	CreatedAt         string          `json:"created_at"`
}

// SincronizarResponse reports one sync run over pending comprobantes.
type SincronizarResponse struct {
	Procesados int `json:"procesados"`
	Aceptados  int `json:"aceptados"`
	Rechazados int `json:"rechazados"`
	Pendientes int `json:"pendientes"`
	Errores    int `json:"errores"`
}
