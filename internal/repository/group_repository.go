package repository

import (
	"github.com/Omballaa/eni-sortir/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

// CreateForOuting inserts an outing-bound group. The unique index on
// outing_id makes this safe under concurrent calls for the same outing: the
// losing insert is swallowed by DO NOTHING and reported as created=false so
// the caller can fall back to a lookup instead of surfacing a conflict.
func (r *GroupRepository) CreateForOuting(group *models.Group) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outing_id"}},
		DoNothing: true,
	}).Create(group)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GroupRepository) FindByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.Preload("Creator").Preload("Outing").First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByOutingID(outingID uint) (*models.Group, error) {
	var group models.Group
	err := r.db.Where("outing_id = ? AND type = ?", outingID, models.GroupTypeOuting).
		Preload("Creator").
		Preload("Outing").
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) SetActive(groupID uint, active bool) error {
	return r.db.Model(&models.Group{}).Where("id = ?", groupID).Update("is_active", active).Error
}
