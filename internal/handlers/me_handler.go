package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/middleware"
	"github.com/wizmedik/booking-api/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Provider").
		Where("provider_id = ?", middleware.ProviderID(c)).
		First(&user, middleware.UserID(c)).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "user no longer exists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     userView(&user),
		"provider": providerView(&user.Provider),
	})
}
