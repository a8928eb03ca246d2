package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/httpresp"
	"github.com/wizmedik/booking-api/internal/infra/repository"
	ucAppointment "github.com/wizmedik/booking-api/internal/usecase/appointment"
	"github.com/wizmedik/booking-api/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	directory    ProviderDirectory
	availability AvailabilityQuery
	create       AppointmentCreator
	log          *zap.Logger
}

func NewPublicHandler(
	directory ProviderDirectory,
	availability AvailabilityQuery,
	create AppointmentCreator,
	log *zap.Logger,
) *PublicHandler {
	return &PublicHandler{
		directory:    directory,
		availability: availability,
		create:       create,
		log:          log,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

// PurposeRequest is the wire form of the booking purpose: either a listed
// service or a free-text reason.
type PurposeRequest struct {
	Kind      string `json:"kind" binding:"required"`
	ServiceID uint   `json:"service_id"`
	Reason    string `json:"reason"`
}

type PublicCreateAppointmentRequest struct {
	PatientName  string         `json:"patient_name" binding:"required"`
	PatientPhone string         `json:"patient_phone" binding:"required"`
	PatientEmail string         `json:"patient_email" binding:"omitempty,email"`
	Purpose      PurposeRequest `json:"purpose" binding:"required"`
	Date         string         `json:"date" binding:"required"` // YYYY-MM-DD
	Time         string         `json:"time" binding:"required"` // HH:MM
	Notes        string         `json:"notes" binding:"max=255"`
}

////////////////////////////////////////////////////////
// DIRECTORY
////////////////////////////////////////////////////////

func (h *PublicHandler) SearchProviders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	providers, err := h.directory.Search(c.Request.Context(), repository.ProviderFilter{
		Kind:      strings.TrimSpace(c.Query("kind")),
		Specialty: strings.TrimSpace(c.Query("specialty")),
		City:      strings.TrimSpace(c.Query("city")),
		Query:     strings.TrimSpace(c.Query("query")),
		Limit:     limit,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, providers)
}

func (h *PublicHandler) ListServices(c *gin.Context) {
	p, err := h.directory.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "provider_not_found", "provider not found")
			return
		}
		writeError(c, h.log, err)
		return
	}

	services, err := h.directory.ListServices(c.Request.Context(), p.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider": providerView(p),
		"services": services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "date is required")
		return
	}

	var serviceID uint64
	if s := c.Query("service_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service_id", "invalid service")
			return
		}
		serviceID = id
	}

	days := 1
	if s := c.Query("days"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil {
			httperr.BadRequest(c, "invalid_days", "days must be a number")
			return
		}
		days = d
	}

	res, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		ProviderSlug: c.Param("slug"),
		ServiceID:    uint(serviceID),
		Date:         date,
		Days:         days,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	in, ok := bookingInput(c, req)
	if !ok {
		return
	}
	in.ProviderSlug = c.Param("slug")

	ap, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         ap.ID,
		"reference":  ap.Reference,
		"start_time": ap.StartTime,
		"end_time":   ap.EndTime,
		"status":     ap.Status,
	})
}

// bookingInput validates the parts of a booking request shared by the
// public and staff endpoints. It writes the error response itself.
func bookingInput(c *gin.Context, req PublicCreateAppointmentRequest) (ucAppointment.CreateAppointmentInput, bool) {
	purpose, err := domain.ParsePurpose(req.Purpose.Kind, req.Purpose.ServiceID, req.Purpose.Reason)
	if err != nil {
		httperr.BadRequest(c, "invalid_purpose", businessMessage["invalid_purpose"])
		return ucAppointment.CreateAppointmentInput{}, false
	}

	phone := validators.NormalizePhone(req.PatientPhone)
	if phone == "" {
		httperr.BadRequest(c, "invalid_phone", "invalid phone number")
		return ucAppointment.CreateAppointmentInput{}, false
	}

	return ucAppointment.CreateAppointmentInput{
		PatientName:  req.PatientName,
		PatientPhone: phone,
		PatientEmail: req.PatientEmail,
		Purpose:      purpose,
		Date:         req.Date,
		Time:         req.Time,
		Notes:        req.Notes,
	}, true
}
