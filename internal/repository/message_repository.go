package repository

import (
	"errors"

	"github.com/Omballaa/eni-sortir/internal/models"
	"gorm.io/gorm"
)

// ErrInvalidTarget is returned when a message sets neither or both of
// group and direct recipient.
var ErrInvalidTarget = errors.New("message must target exactly one of group or recipient")

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	if !message.Valid() {
		return ErrInvalidTarget
	}
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindGroupMessagesSince returns all group messages with id > lastSeenID in
// ascending id order. lastSeenID = 0 returns the whole log. This is the poll
// clients' cursor query.
func (r *MessageRepository) FindGroupMessagesSince(groupID uint, lastSeenID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.Preload("Sender").Where("group_id = ?", groupID)
	if lastSeenID > 0 {
		q = q.Where("id > ?", lastSeenID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("id ASC").Find(&messages).Error
	return messages, err
}

// FindGroupMessagesPage returns a page of a group's history ordered by
// sent-at ascending, for scroll-back.
func (r *MessageRepository) FindGroupMessagesPage(groupID uint, page, pageSize int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("group_id = ?", groupID).
		Order("sent_at ASC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) FindDirectMessages(userID1, userID2 uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("group_id IS NULL").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *MessageRepository) GetLatestGroupMessageID(groupID uint) (uint, error) {
	var maxID uint
	err := r.db.Model(&models.Message{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}
