package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/config"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/models"
	"github.com/wizmedik/booking-api/internal/timezone"
	"github.com/wizmedik/booking-api/internal/validators"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	log    *zap.Logger

	// emailDomainOK is swapped in tests to avoid DNS lookups.
	emailDomainOK func(string) bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		db:            db,
		config:        cfg,
		log:           log,
		emailDomainOK: validators.IsEmailDomainValid,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	ProviderName      string `json:"provider_name" binding:"required"`
	ProviderSlug      string `json:"provider_slug" binding:"required"`
	ProviderKind      string `json:"provider_kind" binding:"omitempty,oneof=doctor clinic lab spa care_home"`
	ProviderSpecialty string `json:"provider_specialty"`
	ProviderCity      string `json:"provider_city"`
	ProviderPhone     string `json:"provider_phone"`
	ProviderAddress   string `json:"provider_address"`
	Timezone          string `json:"timezone"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.ProviderSlug))
	if !validators.IsSlug(slug) {
		httperr.BadRequest(c, "invalid_slug", "slug may contain lowercase letters, digits and dashes")
		return
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = h.config.DefaultTimezone
	}
	if !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "unknown IANA timezone")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !h.emailDomainOK(email) {
		httperr.BadRequest(c, "invalid_email_domain", "the email domain does not accept mail")
		return
	}

	kind := req.ProviderKind
	if kind == "" {
		kind = models.ProviderDoctor
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "could not register")
		return
	}

	provider := models.Provider{
		Name:      strings.TrimSpace(req.ProviderName),
		Slug:      slug,
		Kind:      kind,
		Specialty: strings.TrimSpace(req.ProviderSpecialty),
		City:      strings.TrimSpace(req.ProviderCity),
		Phone:     validators.NormalizePhone(req.ProviderPhone),
		Address:   strings.TrimSpace(req.ProviderAddress),
		Timezone:  tz,
	}
	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        validators.NormalizePhone(req.Phone),
		Role:         models.RoleOwner,
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Provider{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return httperr.ErrBusiness("slug_already_exists")
		}

		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return httperr.ErrBusiness("email_already_exists")
		}

		if err := tx.Create(&provider).Error; err != nil {
			return err
		}
		user.ProviderID = provider.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		if code, ok := httperr.BusinessCode(err); ok {
			httperr.Conflict(c, code, "already registered")
			return
		}
		if httperr.IsExclusionConflict(err) {
			httperr.Conflict(c, "already_exists", "slug or email already registered")
			return
		}
		h.log.Error("register failed", zap.Error(err))
		httperr.Internal(c, "failed_to_register", "could not register")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "could not issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":     userView(&user),
		"provider": providerView(&provider),
		"token":    token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Provider").
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "email or password is wrong")
			return
		}
		httperr.Internal(c, "internal_error", "could not log in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "email or password is wrong")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "could not issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     userView(&user),
		"provider": providerView(&user.Provider),
		"token":    token,
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"providerId": user.ProviderID,
		"role":       user.Role,
		"exp":        now.Add(tokenTTL).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

// --------- Views ---------

func userView(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"phone":       u.Phone,
		"role":        u.Role,
		"provider_id": u.ProviderID,
	}
}

func providerView(p *models.Provider) gin.H {
	return gin.H{
		"id":        p.ID,
		"name":      p.Name,
		"slug":      p.Slug,
		"kind":      p.Kind,
		"specialty": p.Specialty,
		"city":      p.City,
		"phone":     p.Phone,
		"address":   p.Address,
		"timezone":  p.Timezone,
		"photo_url": p.PhotoURL,
	}
}
