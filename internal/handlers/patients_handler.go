package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wizmedik/booking-api/internal/httpresp"
	"github.com/wizmedik/booking-api/internal/middleware"
)

type PatientsHandler struct {
	patients PatientDirectory
	log      *zap.Logger
}

func NewPatientsHandler(patients PatientDirectory, log *zap.Logger) *PatientsHandler {
	return &PatientsHandler{patients: patients, log: log}
}

func (h *PatientsHandler) List(c *gin.Context) {
	patients, err := h.patients.ListPatients(c.Request.Context(), middleware.ProviderID(c), c.Query("query"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.List(c, patients)
}
