package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/wizmedik/booking-api/internal/models"
)

// ProviderFilter narrows the public directory. Empty fields match anything.
type ProviderFilter struct {
	Kind      string
	Specialty string
	City      string
	Query     string
	Limit     int
}

const maxProviderResults = 100

type ProviderGormRepository struct {
	db *gorm.DB
}

func NewProviderGormRepository(db *gorm.DB) *ProviderGormRepository {
	return &ProviderGormRepository{db: db}
}

func (r *ProviderGormRepository) Search(
	ctx context.Context,
	f ProviderFilter,
) ([]models.Provider, error) {

	q := r.db.WithContext(ctx).Model(&models.Provider{})

	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Specialty != "" {
		q = q.Where("LOWER(specialty) = ?", strings.ToLower(f.Specialty))
	}
	if f.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(specialty) LIKE ?", like, like)
	}

	limit := f.Limit
	if limit <= 0 || limit > maxProviderResults {
		limit = maxProviderResults
	}

	var out []models.Provider
	if err := q.Order("name ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListServices returns the provider's active services for the public page.
func (r *ProviderGormRepository) ListServices(
	ctx context.Context,
	providerID uint,
) ([]models.MedicalService, error) {

	var out []models.MedicalService
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND active = ?", providerID, true).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProviderGormRepository) GetBySlug(
	ctx context.Context,
	slug string,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Update writes only the given columns.
func (r *ProviderGormRepository) Update(
	ctx context.Context,
	id uint,
	fields map[string]any,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (r *ProviderGormRepository) ListAllServices(
	ctx context.Context,
	providerID uint,
) ([]models.MedicalService, error) {

	var out []models.MedicalService
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProviderGormRepository) CreateService(
	ctx context.Context,
	svc *models.MedicalService,
) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *ProviderGormRepository) UpdateService(
	ctx context.Context,
	providerID uint,
	serviceID uint,
	fields map[string]any,
) (*models.MedicalService, error) {

	db := r.db.WithContext(ctx)

	var svc models.MedicalService
	if err := db.
		Where("id = ? AND provider_id = ?", serviceID, providerID).
		First(&svc).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&svc).Updates(fields).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Schedule edits
// --------------------------------------------------

// ReplaceWorkingHours swaps the weekly template in one transaction.
func (r *ProviderGormRepository) ReplaceWorkingHours(
	ctx context.Context,
	providerID uint,
	hours []models.WorkingHours,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("provider_id = ?", providerID).
			Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}

		if len(hours) == 0 {
			return nil
		}
		for i := range hours {
			hours[i].ProviderID = providerID
		}
		return tx.Create(&hours).Error
	})
}

func (r *ProviderGormRepository) CreateBreak(
	ctx context.Context,
	b *models.ScheduleBreak,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// DeleteBreak reports gorm.ErrRecordNotFound when the provider owns no such
// break.
func (r *ProviderGormRepository) DeleteBreak(
	ctx context.Context,
	providerID uint,
	id uint,
) error {
	return deleteOwned(r.db.WithContext(ctx), &models.ScheduleBreak{}, providerID, id)
}

func (r *ProviderGormRepository) CreateHoliday(
	ctx context.Context,
	h *models.Holiday,
) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *ProviderGormRepository) DeleteHoliday(
	ctx context.Context,
	providerID uint,
	id uint,
) error {
	return deleteOwned(r.db.WithContext(ctx), &models.Holiday{}, providerID, id)
}

func deleteOwned(db *gorm.DB, model any, providerID, id uint) error {
	res := db.Where("id = ? AND provider_id = ?", id, providerID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --------------------------------------------------
// Patients
// --------------------------------------------------

func (r *ProviderGormRepository) ListPatients(
	ctx context.Context,
	providerID uint,
	query string,
) ([]models.Patient, error) {

	q := r.db.WithContext(ctx).Where("provider_id = ?", providerID)
	if query = strings.TrimSpace(strings.ToLower(query)); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}

	var out []models.Patient
	if err := q.Order("name ASC").Limit(maxProviderResults).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
