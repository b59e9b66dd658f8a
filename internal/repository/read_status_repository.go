package repository

import (
	"time"

	"github.com/Omballaa/eni-sortir/internal/models"
	"gorm.io/gorm"
)

type ReadStatusRepository struct {
	db *gorm.DB
}

func NewReadStatusRepository(db *gorm.DB) *ReadStatusRepository {
	return &ReadStatusRepository{db: db}
}

func (r *ReadStatusRepository) Get(messageID, userID uint) (*models.ReadStatus, error) {
	var status models.ReadStatus
	err := r.db.Where("message_id = ? AND user_id = ?", messageID, userID).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *ReadStatusRepository) IsRead(messageID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ReadStatus{}).
		Where("message_id = ? AND user_id = ? AND read = true", messageID, userID).
		Count(&count).Error
	return count > 0, err
}

// MarkRead upserts the pair to read. read_at is only written on the
// transition to read, so concurrent calls converge to a single stable
// timestamp and a repeated call changes nothing.
func (r *ReadStatusRepository) MarkRead(messageID, userID uint, at time.Time) error {
	return r.db.Exec(`
		INSERT INTO read_statuses (message_id, user_id, read, read_at, created_at)
		VALUES (?, ?, true, ?, NOW())
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET read = true,
			read_at = CASE WHEN read_statuses.read THEN read_statuses.read_at ELSE EXCLUDED.read_at END
	`, messageID, userID, at).Error
}

func (r *ReadStatusRepository) MarkUnread(messageID, userID uint) error {
	return r.db.Exec(`
		INSERT INTO read_statuses (message_id, user_id, read, read_at, created_at)
		VALUES (?, ?, false, NULL, NOW())
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET read = false,
			read_at = NULL
	`, messageID, userID).Error
}

// MarkAllReadInGroup upserts a read status for every message in the group not
// authored by the user, in one statement. Called together with the
// membership last-visit touch when a user opens a group.
func (r *ReadStatusRepository) MarkAllReadInGroup(groupID, userID uint, asOf time.Time) error {
	return r.db.Exec(`
		INSERT INTO read_statuses (message_id, user_id, read, read_at, created_at)
		SELECT m.id, ?, true, ?, NOW()
		FROM messages m
		WHERE m.group_id = ? AND m.sender_id <> ?
		ON CONFLICT (message_id, user_id) DO UPDATE
		SET read = true,
			read_at = CASE WHEN read_statuses.read THEN read_statuses.read_at ELSE EXCLUDED.read_at END
	`, userID, asOf, groupID, userID).Error
}
