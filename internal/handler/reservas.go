package handler

import (
	"net/http"

	"github.com/xzero11x/app-hotel-sub001/internal/apierror"
	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/middleware"
	"github.com/xzero11x/app-hotel-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservaHandler struct{ svc service.ReservaService }

func NewReservaHandler(svc service.ReservaService) *ReservaHandler {
	return &ReservaHandler{svc: svc}
}

// Crear godoc
// @Summary Crea una reserva
// @Tags reservas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearReservaRequest true "Datos de la reserva"
// @Success 201 {object} dto.ReservaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/reservas [post]
func (h *ReservaHandler) Crear(c *gin.Context) {
	var req dto.CrearReservaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearReserva(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReservaHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObtenerReserva(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservaHandler) ListarActivas(c *gin.Context) {
	resp, err := h.svc.ListarActivas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *ReservaHandler) Checkin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Checkin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservaHandler) Checkout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservaHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LateCheckout godoc
// @Summary Cobra el late checkout de una reserva en curso
// @Tags reservas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de reserva"
// @Param body body dto.LateCheckoutRequest true "Horas y método de pago"
// @Success 201 {object} dto.LateCheckoutResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/reservas/{id}/late-checkout [post]
func (h *ReservaHandler) LateCheckout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.LateCheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.CobrarLateCheckout(c.Request.Context(), usuarioID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Huéspedes ────────────────────────────────────────────────────────────────

func (h *ReservaHandler) CrearHuesped(c *gin.Context) {
	var req dto.CrearHuespedRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearHuesped(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReservaHandler) BuscarHuesped(c *gin.Context) {
	documento := c.Query("documento")
	if documento == "" {
		c.JSON(http.StatusBadRequest, apierror.New("documento requerido"))
		return
	}
	resp, err := h.svc.BuscarHuesped(c.Request.Context(), documento)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
