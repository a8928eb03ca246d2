package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/domain/availability"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/httpresp"
	"github.com/wizmedik/booking-api/internal/middleware"
	"github.com/wizmedik/booking-api/internal/models"
)

// WorkingHoursHandler edits the weekly template, breaks and holidays. Every
// write is checked with the same conversion the availability engine uses, so
// a stored schedule is always computable, and drops the cached schedule.
type WorkingHoursHandler struct {
	source domain.ScheduleSource
	editor ScheduleEditor
	cache  ScheduleInvalidator
	log    *zap.Logger
}

func NewWorkingHoursHandler(
	source domain.ScheduleSource,
	editor ScheduleEditor,
	cache ScheduleInvalidator,
	log *zap.Logger,
) *WorkingHoursHandler {
	return &WorkingHoursHandler{source: source, editor: editor, cache: cache, log: log}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required,dive"`
}

type CreateBreakRequest struct {
	Weekday   *int    `json:"weekday" binding:"omitempty,min=0,max=6"`
	Date      *string `json:"date"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Reason    string  `json:"reason" binding:"max=255"`
}

type CreateHolidayRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason" binding:"max=255"`
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	rows, err := h.load(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows.WorkingHours)
}

func (h *WorkingHoursHandler) ListBreaks(c *gin.Context) {
	rows, err := h.load(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows.Breaks)
}

func (h *WorkingHoursHandler) ListHolidays(c *gin.Context) {
	rows, err := h.load(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows.Holidays)
}

func (h *WorkingHoursHandler) load(c *gin.Context) (*domain.ScheduleRows, error) {
	rows, err := h.source.LoadSchedule(c.Request.Context(), middleware.ProviderID(c))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = &domain.ScheduleRows{}
	}
	if rows.WorkingHours == nil {
		rows.WorkingHours = []models.WorkingHours{}
	}
	if rows.Breaks == nil {
		rows.Breaks = []models.ScheduleBreak{}
	}
	if rows.Holidays == nil {
		rows.Holidays = []models.Holiday{}
	}
	return rows, nil
}

// --------------------------------------------------
// Working hours
// --------------------------------------------------

func (h *WorkingHoursHandler) Update(c *gin.Context) {
	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	providerID := middleware.ProviderID(c)

	hours := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		hours = append(hours, models.WorkingHours{
			ProviderID: providerID,
			Weekday:    d.Weekday,
			Active:     d.Active,
			StartTime:  strings.TrimSpace(d.StartTime),
			EndTime:    strings.TrimSpace(d.EndTime),
			LunchStart: strings.TrimSpace(d.LunchStart),
			LunchEnd:   strings.TrimSpace(d.LunchEnd),
		})
	}

	if !validSchedule(c, &domain.ScheduleRows{WorkingHours: hours}) {
		return
	}

	if err := h.editor.ReplaceWorkingHours(c.Request.Context(), providerID, hours); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), providerID)

	c.JSON(http.StatusOK, hours)
}

// --------------------------------------------------
// Breaks
// --------------------------------------------------

func (h *WorkingHoursHandler) CreateBreak(c *gin.Context) {
	var req CreateBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if req.Weekday != nil && req.Date != nil {
		httperr.BadRequest(c, "invalid_break", "a break is either weekly or on a date, not both")
		return
	}

	providerID := middleware.ProviderID(c)
	b := models.ScheduleBreak{
		ProviderID: providerID,
		Weekday:    req.Weekday,
		Date:       req.Date,
		StartTime:  strings.TrimSpace(req.StartTime),
		EndTime:    strings.TrimSpace(req.EndTime),
		Reason:     strings.TrimSpace(req.Reason),
	}

	if !validSchedule(c, &domain.ScheduleRows{Breaks: []models.ScheduleBreak{b}}) {
		return
	}

	if err := h.editor.CreateBreak(c.Request.Context(), &b); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), providerID)

	httpresp.Created(c, b)
}

func (h *WorkingHoursHandler) DeleteBreak(c *gin.Context) {
	h.delete(c, h.editor.DeleteBreak)
}

// --------------------------------------------------
// Holidays
// --------------------------------------------------

func (h *WorkingHoursHandler) CreateHoliday(c *gin.Context) {
	var req CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	end := req.EndDate
	if end == "" {
		end = req.StartDate
	}

	start, err1 := availability.ParseDate(req.StartDate)
	last, err2 := availability.ParseDate(end)
	if err1 != nil || err2 != nil {
		httperr.BadRequest(c, "invalid_date", "expected YYYY-MM-DD")
		return
	}
	if last.Before(start) {
		httperr.BadRequest(c, "invalid_range", "end_date is before start_date")
		return
	}

	providerID := middleware.ProviderID(c)
	hol := models.Holiday{
		ProviderID: providerID,
		StartDate:  start.String(),
		EndDate:    last.String(),
		Reason:     strings.TrimSpace(req.Reason),
	}

	if err := h.editor.CreateHoliday(c.Request.Context(), &hol); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), providerID)

	httpresp.Created(c, hol)
}

func (h *WorkingHoursHandler) DeleteHoliday(c *gin.Context) {
	h.delete(c, h.editor.DeleteHoliday)
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func (h *WorkingHoursHandler) delete(c *gin.Context, del func(ctx context.Context, providerID, id uint) error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid id")
		return
	}

	providerID := middleware.ProviderID(c)
	if err := del(c.Request.Context(), providerID, uint(id)); err != nil {
		writeError(c, h.log, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), providerID)

	c.Status(http.StatusNoContent)
}

// validSchedule rejects rows the availability engine could not use and
// writes the 400 itself.
func validSchedule(c *gin.Context, rows *domain.ScheduleRows) bool {
	s, err := domain.BuildSchedule(rows)
	if err == nil {
		err = availability.Validate(availability.Request{
			WorkingHours:        s.WorkingHours,
			Breaks:              s.Breaks,
			Holidays:            s.Holidays,
			SlotDurationMinutes: 1,
			SelectedDate:        "2000-01-01",
		})
	}
	if err != nil {
		httperr.BadRequest(c, "invalid_schedule", err.Error())
		return false
	}
	return true
}
