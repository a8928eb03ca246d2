package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/domain/availability"
	"github.com/wizmedik/booking-api/internal/httperr"
	ucAppointment "github.com/wizmedik/booking-api/internal/usecase/appointment"
)

// businessStatus maps business codes to HTTP statuses. Unlisted codes are
// 400.
var businessStatus = map[string]int{
	"provider_not_found":    http.StatusNotFound,
	"service_not_found":     http.StatusNotFound,
	"appointment_not_found": http.StatusNotFound,
	"invalid_state":         http.StatusConflict,
	"not_started":           http.StatusConflict,
	"time_conflict":         http.StatusConflict,
}

var businessMessage = map[string]string{
	"provider_not_found":    "provider not found",
	"service_not_found":     "service not found",
	"appointment_not_found": "appointment not found",
	"invalid_state":         "appointment can no longer change",
	"not_started":           "appointment has not started yet",
	"time_conflict":         "the selected time is no longer available",
	"too_soon":              "the selected time is too soon or in the past",
	"outside_working_hours": "the selected time is outside working hours",
	"invalid_purpose":       "choose a service or describe the reason for the visit",
	"invalid_patient":       "patient name and phone are required",
	"invalid_date_or_time":  "invalid date or time",
}

// writeError renders a use case error. Unknown errors are logged and hidden.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var taken *ucAppointment.SlotTakenError
	if errors.As(err, &taken) {
		httperr.WriteDetails(c, http.StatusConflict, "time_conflict", businessMessage["time_conflict"], gin.H{
			"alternatives": taken.Alternatives,
		})
		return
	}

	var cfgErr *availability.InvalidConfigurationError
	if errors.As(err, &cfgErr) {
		log.Warn("provider schedule is misconfigured",
			zap.String("field", cfgErr.Field),
			zap.String("reason", cfgErr.Reason),
			zap.String("path", c.Request.URL.Path),
		)
		httperr.Unavailable(c, "schedule_unavailable", "schedule temporarily unavailable, please contact the provider")
		return
	}

	var reqErr *availability.InvalidRequestError
	if errors.As(err, &reqErr) {
		httperr.BadRequest(c, "invalid_request", reqErr.Error())
		return
	}

	if code, ok := httperr.BusinessCode(err); ok {
		status, found := businessStatus[code]
		if !found {
			status = http.StatusBadRequest
		}
		msg := businessMessage[code]
		if msg == "" {
			msg = code
		}
		httperr.Write(c, status, code, msg)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "not_found", "resource not found")
		return
	}

	log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	httperr.Internal(c, "internal_error", "something went wrong")
}
