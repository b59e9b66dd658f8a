package repository

import (
	"time"

	"github.com/Omballaa/eni-sortir/internal/models"
	"gorm.io/gorm"
)

type OutingRepository struct {
	db *gorm.DB
}

func NewOutingRepository(db *gorm.DB) *OutingRepository {
	return &OutingRepository{db: db}
}

func (r *OutingRepository) Create(outing *models.Outing) error {
	return r.db.Create(outing).Error
}

func (r *OutingRepository) FindByID(id uint) (*models.Outing, error) {
	var outing models.Outing
	err := r.db.Preload("Organizer").First(&outing, id).Error
	if err != nil {
		return nil, err
	}
	return &outing, nil
}

func (r *OutingRepository) UpdateState(outingID uint, state models.OutingState) error {
	return r.db.Model(&models.Outing{}).Where("id = ?", outingID).Update("state", state).Error
}

func (r *OutingRepository) UpdateCancelation(outingID uint, reason string) error {
	return r.db.Model(&models.Outing{}).Where("id = ?", outingID).
		Updates(map[string]interface{}{
			"state":         models.OutingCanceled,
			"cancel_reason": reason,
		}).Error
}

func (r *OutingRepository) ListByState(state models.OutingState) ([]models.Outing, error) {
	var outings []models.Outing
	err := r.db.Where("state = ?", state).
		Preload("Organizer").
		Order("starts_at ASC").
		Find(&outings).Error
	return outings, err
}

// ListExpiredOpen returns open outings whose start time has passed; the
// scheduler closes them.
func (r *OutingRepository) ListExpiredOpen(now time.Time) ([]models.Outing, error) {
	var outings []models.Outing
	err := r.db.Where("state = ? AND starts_at < ?", models.OutingOpen, now).
		Preload("Organizer").
		Find(&outings).Error
	return outings, err
}

func (r *OutingRepository) AddRegistration(outingID, userID uint) error {
	reg := models.Registration{OutingID: outingID, UserID: userID}
	return r.db.Create(&reg).Error
}

func (r *OutingRepository) RemoveRegistration(outingID, userID uint) error {
	return r.db.Where("outing_id = ? AND user_id = ?", outingID, userID).
		Delete(&models.Registration{}).Error
}

func (r *OutingRepository) CountRegistrations(outingID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Registration{}).
		Where("outing_id = ?", outingID).
		Count(&count).Error
	return count, err
}

func (r *OutingRepository) IsRegistered(outingID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Registration{}).
		Where("outing_id = ? AND user_id = ?", outingID, userID).
		Count(&count).Error
	return count > 0, err
}
