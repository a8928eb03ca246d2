package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/models"
)

// Logger persists audit events as AuditLog rows.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Write(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	row := models.AuditLog{
		ProviderID: ev.ProviderID,
		UserID:     ev.UserID,
		Action:     ev.Action,
		Entity:     ev.Entity,
		EntityID:   ev.EntityID,
		Metadata:   metaJSON,
	}

	return l.db.WithContext(ctx).Create(&row).Error
}
