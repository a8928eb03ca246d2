package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/httpresp"
	"github.com/wizmedik/booking-api/internal/middleware"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create   AppointmentCreator
	complete AppointmentStatusChanger
	cancel   AppointmentStatusChanger
	list     AppointmentLister
	log      *zap.Logger
}

func NewAppointmentHandler(
	create AppointmentCreator,
	complete AppointmentStatusChanger,
	cancel AppointmentStatusChanger,
	list AppointmentLister,
	log *zap.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:   create,
		complete: complete,
		cancel:   cancel,
		list:     list,
		log:      log,
	}
}

// ======================================================
// CREATE (staff booking on behalf of a patient)
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	in, ok := bookingInput(c, req)
	if !ok {
		return
	}
	in.ProviderID = middleware.ProviderID(c)
	userID := middleware.UserID(c)
	in.UserID = &userID

	ap, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "date is required")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "expected YYYY-MM-DD")
		return
	}

	aps, err := h.list.ByDate(c.Request.Context(), middleware.ProviderID(c), date)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	yearStr := c.Query("year")
	monthStr := c.Query("month")

	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "year and month are required")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "invalid year")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "invalid month")
		return
	}

	aps, err := h.list.ByMonth(c.Request.Context(), middleware.ProviderID(c), year, month)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": aps,
	})
}

// ======================================================
// COMPLETE / CANCEL
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.changeStatus(c, h.complete)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.cancel)
}

func (h *AppointmentHandler) changeStatus(c *gin.Context, uc AppointmentStatusChanger) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid appointment id")
		return
	}

	ap, err := uc.Execute(
		c.Request.Context(),
		middleware.ProviderID(c),
		middleware.UserID(c),
		uint(id),
	)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}
