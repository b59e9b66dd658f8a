package repository

import (
	"time"

	"github.com/Omballaa/eni-sortir/internal/models"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// AddOrReactivate is the sole mutator of membership state on join. It is a
// single atomic upsert keyed on (group_id, user_id): a re-join reactivates
// the existing row, clears left_at, and takes the passed admin flag; two
// concurrent joins serialize on the unique index instead of racing a
// read-modify-write.
func (r *MembershipRepository) AddOrReactivate(groupID, userID uint, isAdmin bool) (*models.Membership, error) {
	now := time.Now()
	err := r.db.Exec(`
		INSERT INTO memberships (group_id, user_id, active, is_admin, notify, joined_at)
		VALUES (?, ?, true, ?, true, ?)
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET active = true,
			is_admin = EXCLUDED.is_admin,
			left_at = NULL
	`, groupID, userID, isAdmin, now).Error
	if err != nil {
		return nil, err
	}
	return r.Find(groupID, userID)
}

// Remove soft-deletes an active membership. Removing a non-member is a no-op,
// not an error.
func (r *MembershipRepository) Remove(groupID, userID uint) error {
	return r.db.Model(&models.Membership{}).
		Where("group_id = ? AND user_id = ? AND active = true", groupID, userID).
		Updates(map[string]interface{}{
			"active":  false,
			"left_at": time.Now(),
		}).Error
}

func (r *MembershipRepository) Find(groupID, userID uint) (*models.Membership, error) {
	var m models.Membership
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) IsActiveMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("group_id = ? AND user_id = ? AND active = true", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *MembershipRepository) ListActiveMembers(groupID uint) ([]models.Membership, error) {
	var members []models.Membership
	err := r.db.Where("group_id = ? AND active = true", groupID).
		Preload("User").
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *MembershipRepository) CountActiveMembers(groupID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("group_id = ? AND active = true", groupID).
		Count(&count).Error
	return count, err
}

func (r *MembershipRepository) SetNotificationsEnabled(groupID, userID uint, enabled bool) error {
	return r.db.Model(&models.Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("notify", enabled).Error
}

func (r *MembershipRepository) TouchLastVisited(groupID, userID uint, at time.Time) error {
	return r.db.Model(&models.Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("last_visit", at).Error
}
