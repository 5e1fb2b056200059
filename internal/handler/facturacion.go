package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/xzero11x/app-hotel-sub001/internal/apierror"
	"github.com/xzero11x/app-hotel-sub001/internal/config"
	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturacionHandler struct {
	svc service.FacturacionService
	cfg *config.Config
}

func NewFacturacionHandler(svc service.FacturacionService, cfg *config.Config) *FacturacionHandler {
	return &FacturacionHandler{svc: svc, cfg: cfg}
}

// Webhook godoc
// @Summary Callback de NubeFact con la resolución de SUNAT
// @Tags facturacion
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Secreto compartido"
// @Success 200
// @Failure 401 {object} apierror.APIError
// @Router /v1/facturacion/webhook [post]
func (h *FacturacionHandler) Webhook(c *gin.Context) {
	secret := c.GetHeader("X-Webhook-Secret")
	if h.cfg.WebhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.WebhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, apierror.New("Secreto inválido"))
		return
	}

	var payload dto.WebhookNubeFact
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}

	// Business-level outcomes always acknowledge with 200: a non-2xx would
	// only make the provider replay a notification we cannot apply.
	if err := h.svc.ProcesarWebhook(c.Request.Context(), payload); err != nil {
		c.Error(err) //nolint:errcheck
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Sincronizar godoc
// @Summary Fuerza una corrida de sincronización de comprobantes pendientes
// @Tags facturacion
// @Produce json
// @Success 200 {object} dto.SincronizarResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/facturacion/sincronizar [post]
func (h *FacturacionHandler) Sincronizar(c *gin.Context) {
	// Gated by its own token, separate from user JWTs: the caller is an
	// operations script, not a receptionist.
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if h.cfg.SyncToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.SyncToken)) != 1 {
		c.JSON(http.StatusUnauthorized, apierror.New("Token de sincronización inválido"))
		return
	}

	resp, err := h.svc.Sincronizar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorPago returns the comprobante issued for a payment.
func (h *FacturacionHandler) ObtenerPorPago(c *gin.Context) {
	pagoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerPorPago(c.Request.Context(), pagoID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary Solicita la anulación de un comprobante aceptado
// @Tags facturacion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de comprobante"
// @Success 200 {object} dto.ComprobanteResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/facturacion/comprobantes/{id}/anular [post]
func (h *FacturacionHandler) Anular(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req struct {
		Motivo string `json:"motivo" validate:"required,min=5"`
	}
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
