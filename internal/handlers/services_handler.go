package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/httpresp"
	"github.com/wizmedik/booking-api/internal/middleware"
	"github.com/wizmedik/booking-api/internal/models"
)

type ServicesHandler struct {
	catalog ServiceCatalog
	log     *zap.Logger
}

func NewServicesHandler(catalog ServiceCatalog, log *zap.Logger) *ServicesHandler {
	return &ServicesHandler{catalog: catalog, log: log}
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=255"`
	DurationMin int     `json:"duration_min" binding:"required,min=5,max=480"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    string  `json:"category" binding:"max=50"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=255"`
	DurationMin *int     `json:"duration_min" binding:"omitempty,min=5,max=480"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Category    *string  `json:"category" binding:"omitempty,max=50"`
	Active      *bool    `json:"active"`
}

func (h *ServicesHandler) List(c *gin.Context) {
	services, err := h.catalog.ListAllServices(c.Request.Context(), middleware.ProviderID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.List(c, services)
}

func (h *ServicesHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	svc := models.MedicalService{
		ProviderID:  middleware.ProviderID(c),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		DurationMin: req.DurationMin,
		Price:       req.Price,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Active:      true,
	}

	if err := h.catalog.CreateService(c.Request.Context(), &svc); err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, svc)
}

func (h *ServicesHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid service id")
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.DurationMin != nil {
		fields["duration_min"] = *req.DurationMin
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Category != nil {
		fields["category"] = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		httperr.BadRequest(c, "nothing_to_update", "no fields given")
		return
	}

	svc, err := h.catalog.UpdateService(c.Request.Context(), middleware.ProviderID(c), uint(id), fields)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, svc)
}
