package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/media"
	"github.com/wizmedik/booking-api/internal/middleware"
	"github.com/wizmedik/booking-api/internal/storage"
	"github.com/wizmedik/booking-api/internal/timezone"
	"github.com/wizmedik/booking-api/internal/validators"
)

type ProviderHandler struct {
	profiles ProviderProfiles
	// uploader is nil when object storage is not configured.
	uploader storage.Uploader
	log      *zap.Logger
}

func NewProviderHandler(profiles ProviderProfiles, uploader storage.Uploader, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{profiles: profiles, uploader: uploader, log: log}
}

type UpdateProviderRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=2,max=100"`
	Kind              *string `json:"kind" binding:"omitempty,oneof=doctor clinic lab spa care_home"`
	Specialty         *string `json:"specialty" binding:"omitempty,max=100"`
	City              *string `json:"city" binding:"omitempty,max=100"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address" binding:"omitempty,max=255"`
	Timezone          *string `json:"timezone"`
	SlotDurationMin   *int    `json:"slot_duration_min" binding:"omitempty,min=5,max=480"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes" binding:"omitempty,min=0,max=10080"`
}

func (h *ProviderHandler) Get(c *gin.Context) {
	p, err := h.profiles.GetByID(c.Request.Context(), middleware.ProviderID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProviderHandler) Update(c *gin.Context) {
	var req UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	fields := map[string]any{}
	setString := func(col string, v *string) {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	setString("name", req.Name)
	setString("kind", req.Kind)
	setString("specialty", req.Specialty)
	setString("city", req.City)
	setString("address", req.Address)

	if req.Phone != nil {
		phone := validators.NormalizePhone(*req.Phone)
		if phone == "" && strings.TrimSpace(*req.Phone) != "" {
			httperr.BadRequest(c, "invalid_phone", "invalid phone number")
			return
		}
		fields["phone"] = phone
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "unknown IANA timezone")
			return
		}
		fields["timezone"] = *req.Timezone
	}
	if req.SlotDurationMin != nil {
		fields["slot_duration_min"] = *req.SlotDurationMin
	}
	if req.MinAdvanceMinutes != nil {
		fields["min_advance_minutes"] = *req.MinAdvanceMinutes
	}

	if len(fields) == 0 {
		httperr.BadRequest(c, "nothing_to_update", "no fields given")
		return
	}

	providerID := middleware.ProviderID(c)
	if err := h.profiles.Update(c.Request.Context(), providerID, fields); err != nil {
		writeError(c, h.log, err)
		return
	}

	h.Get(c)
}

// UploadPhoto accepts a multipart "photo" field, stores it as a resized WebP
// and points the provider's photo_url at it.
func (h *ProviderHandler) UploadPhoto(c *gin.Context) {
	if h.uploader == nil {
		httperr.Unavailable(c, "media_disabled", "photo uploads are not configured")
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "photo file is required")
		return
	}
	if fh.Size > media.MaxUploadBytes {
		httperr.BadRequest(c, "photo_too_large", "photo must be at most 5 MB")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_photo", "could not read photo")
		return
	}
	defer f.Close()

	img, err := media.ToWebP(f, media.DefaultMaxSide)
	if err != nil {
		httperr.BadRequest(c, "invalid_photo", "photo must be a JPEG, PNG or WebP image")
		return
	}

	providerID := middleware.ProviderID(c)
	key := fmt.Sprintf("providers/%d/%s.webp", providerID, uuid.NewString())

	url, err := h.uploader.Put(c.Request.Context(), key, img, "image/webp")
	if err != nil {
		h.log.Error("photo upload failed", zap.Uint("provider_id", providerID), zap.Error(err))
		httperr.Unavailable(c, "upload_failed", "could not store photo, try again later")
		return
	}

	if err := h.profiles.Update(c.Request.Context(), providerID, map[string]any{"photo_url": url}); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
