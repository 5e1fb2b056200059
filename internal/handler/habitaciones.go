package handler

import (
	"net/http"

	"github.com/xzero11x/app-hotel-sub001/internal/apierror"
	"github.com/xzero11x/app-hotel-sub001/internal/model"
	"github.com/xzero11x/app-hotel-sub001/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HabitacionHandler is thin CRUD over rooms; the interesting state changes
// (ocupada, limpieza) happen through the reservation flow.
type HabitacionHandler struct {
	repo     repository.HabitacionRepository
	cajaRepo repository.CajaRepository
}

func NewHabitacionHandler(repo repository.HabitacionRepository, cajaRepo repository.CajaRepository) *HabitacionHandler {
	return &HabitacionHandler{repo: repo, cajaRepo: cajaRepo}
}

func (h *HabitacionHandler) Listar(c *gin.Context) {
	habitaciones, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": habitaciones})
}

// CambiarEstado lets housekeeping move a room between limpieza /
// mantenimiento / disponible.
func (h *HabitacionHandler) CambiarEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req struct {
		Estado string `json:"estado" validate:"required,oneof=disponible limpieza mantenimiento"`
	}
	if !bindAndValidate(c, &req) {
		return
	}
	habitacion, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("habitación no encontrada"))
		return
	}
	if habitacion.Estado == model.HabitacionOcupada {
		c.JSON(http.StatusConflict, apierror.New("una habitación ocupada se libera con el check-out"))
		return
	}
	if err := h.repo.SetEstado(c.Request.Context(), id, req.Estado); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarCajas exposes the configured cash drawers for the open-shift form.
func (h *HabitacionHandler) ListarCajas(c *gin.Context) {
	cajas, err := h.cajaRepo.ListCajas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cajas})
}
