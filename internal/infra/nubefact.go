package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Operaciones soportadas por el API de NubeFact.
const (
	OperacionGenerarComprobante = "generar_comprobante"
	OperacionConsultar          = "consultar_comprobante"
	OperacionGenerarAnulacion   = "generar_anulacion"
)

// NubeFactItem is one line of the document.
type NubeFactItem struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

// NubeFactRequest is the payload sent to NubeFact for issuance, query and
// cancellation. The provider multiplexes all three on one endpoint, switched
// by Operacion.
type NubeFactRequest struct {
	Operacion           string          `json:"operacion"`
	TipoDeComprobante   int             `json:"tipo_de_comprobante"` // 1=factura, 2=boleta, 3=nota de crédito
	Serie               string          `json:"serie"`
	Numero              int64           `json:"numero"`
	ClienteTipoDoc      string          `json:"cliente_tipo_de_documento,omitempty"` // 1=DNI, 6=RUC
	ClienteNumeroDoc    string          `json:"cliente_numero_de_documento,omitempty"`
	ClienteDenominacion string          `json:"cliente_denominacion,omitempty"`
	Moneda              int             `json:"moneda,omitempty"` // 1=PEN, 2=USD
	Total               decimal.Decimal `json:"total,omitempty"`
	Items               []NubeFactItem  `json:"items,omitempty"`
	MotivoAnulacion     string          `json:"motivo,omitempty"`
}

// NubeFactResponse mirrors the provider's reply. AceptadaPorSunat is a
// tri-state: nil means SUNAT has not resolved the document yet and the caller
// must keep it pendiente.
type NubeFactResponse struct {
	Serie            string  `json:"serie"`
	Numero           int64   `json:"numero"`
	AceptadaPorSunat *bool   `json:"aceptada_por_sunat"`
	SunatDescription *string `json:"sunat_description"`
	CodigoHash       *string `json:"codigo_hash"`
	EnlaceDelCDR     *string `json:"enlace_del_cdr"`
	EnlaceDelXML     *string `json:"enlace_del_xml"`
	EnlaceDelPDF     *string `json:"enlace_del_pdf"`
	ExternalID       *string `json:"external_id"`
	Errors           *string `json:"errors"`
}

// NubeFactClient talks to the NubeFact REST API, which fronts SUNAT's
// electronic invoicing. All calls are synchronous HTTP; asynchronous
// resolution arrives later through the webhook or the sync job.
type NubeFactClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewNubeFactClient(baseURL, token string) *NubeFactClient {
	return &NubeFactClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Emitir submits a new document for issuance.
func (c *NubeFactClient) Emitir(ctx context.Context, req NubeFactRequest) (*NubeFactResponse, error) {
	req.Operacion = OperacionGenerarComprobante
	return c.post(ctx, req)
}

// Consultar asks the provider for the current SUNAT state of serie+numero.
func (c *NubeFactClient) Consultar(ctx context.Context, tipo int, serie string, numero int64) (*NubeFactResponse, error) {
	return c.post(ctx, NubeFactRequest{
		Operacion:         OperacionConsultar,
		TipoDeComprobante: tipo,
		Serie:             serie,
		Numero:            numero,
	})
}

// Anular requests the cancellation of an already issued document.
func (c *NubeFactClient) Anular(ctx context.Context, tipo int, serie string, numero int64, motivo string) (*NubeFactResponse, error) {
	return c.post(ctx, NubeFactRequest{
		Operacion:         OperacionGenerarAnulacion,
		TipoDeComprobante: tipo,
		Serie:             serie,
		Numero:            numero,
		MotivoAnulacion:   motivo,
	})
}

func (c *NubeFactClient) post(ctx context.Context, payload NubeFactRequest) (*NubeFactResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("nubefact: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nubefact: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token token=\""+c.token+"\"")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nubefact: unreachable: %w", err)
	}
	defer resp.Body.Close()

	// NubeFact reports business rejections inside a 200 body; non-2xx means
	// transport or auth trouble.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("nubefact: status %d: %s", resp.StatusCode, snippet)
	}

	var result NubeFactResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("nubefact: decode response: %w", err)
	}
	return &result, nil
}
