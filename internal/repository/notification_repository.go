package repository

import (
	"database/sql"
	"strings"
	"time"

	"gorm.io/gorm"
)

// GroupNotificationRow is a denormalized row for the "which conversations
// need attention" view: one row per active group membership of the user, with
// unread count + last message + linked outing, produced by a single query.
type GroupNotificationRow struct {
	GroupID   uint   `gorm:"column:group_id"`
	GroupName string `gorm:"column:group_name"`
	GroupType string `gorm:"column:group_type"`

	OutingID       sql.NullInt64  `gorm:"column:outing_id"`
	OutingName     sql.NullString `gorm:"column:outing_name"`
	OutingStartsAt *time.Time     `gorm:"column:outing_starts_at"`

	UnreadCount int64 `gorm:"column:unread_count"`

	MessageID       sql.NullInt64  `gorm:"column:message_id"`
	MessageBody     sql.NullString `gorm:"column:message_body"`
	MessageIsSystem sql.NullBool   `gorm:"column:message_is_system"`
	MessageSentAt   *time.Time     `gorm:"column:message_sent_at"`
	SenderName      sql.NullString `gorm:"column:sender_name"`

	// LastActivity is the last message's sent-at, or the epoch for a group
	// with no messages so it sorts after everything else.
	LastActivity time.Time `gorm:"column:last_activity"`
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// UnreadCountInGroup counts the group's messages that the user did not send
// and has no read status for. A missing read_statuses row means unread.
func (r *NotificationRepository) UnreadCountInGroup(groupID, userID uint) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*)
		FROM messages m
		LEFT JOIN read_statuses rs ON rs.message_id = m.id AND rs.user_id = ? AND rs.read = true
		WHERE m.group_id = ?
			AND m.sender_id <> ?
			AND rs.message_id IS NULL
	`, userID, groupID, userID).Scan(&count).Error
	return count, err
}

// UnreadCountGroups counts unread messages across every active group
// membership of the user in one pass.
func (r *NotificationRepository) UnreadCountGroups(userID uint) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*)
		FROM messages m
		JOIN memberships gm ON gm.group_id = m.group_id AND gm.user_id = ? AND gm.active = true
		JOIN groups g ON g.id = m.group_id AND g.is_active = true
		LEFT JOIN read_statuses rs ON rs.message_id = m.id AND rs.user_id = ? AND rs.read = true
		WHERE m.sender_id <> ?
			AND rs.message_id IS NULL
	`, userID, userID, userID).Scan(&count).Error
	return count, err
}

// UnreadCountDirect counts unread direct messages addressed to the user.
func (r *NotificationRepository) UnreadCountDirect(userID uint) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*)
		FROM messages m
		LEFT JOIN read_statuses rs ON rs.message_id = m.id AND rs.user_id = ? AND rs.read = true
		WHERE m.group_id IS NULL
			AND m.recipient_id = ?
			AND m.sender_id <> ?
			AND rs.message_id IS NULL
	`, userID, userID, userID).Scan(&count).Error
	return count, err
}

func (r *NotificationRepository) ListGroupSummaries(userID uint) ([]GroupNotificationRow, error) {
	query := strings.TrimSpace(`
WITH last_message AS (
	SELECT
		m.group_id,
		m.id,
		m.body,
		m.is_system,
		m.sent_at,
		m.sender_id,
		ROW_NUMBER() OVER (
			PARTITION BY m.group_id
			ORDER BY m.sent_at DESC, m.id DESC
		) AS rn
	FROM messages m
	WHERE m.group_id IS NOT NULL
),
unread AS (
	SELECT m.group_id, COUNT(*) AS unread_count
	FROM messages m
	LEFT JOIN read_statuses rs ON rs.message_id = m.id AND rs.user_id = ? AND rs.read = true
	WHERE m.group_id IS NOT NULL
		AND m.sender_id <> ?
		AND rs.message_id IS NULL
	GROUP BY m.group_id
)
SELECT
	g.id AS group_id,
	g.name AS group_name,
	g.type AS group_type,
	o.id AS outing_id,
	o.name AS outing_name,
	o.starts_at AS outing_starts_at,
	COALESCE(u.unread_count, 0) AS unread_count,
	lm.id AS message_id,
	lm.body AS message_body,
	lm.is_system AS message_is_system,
	lm.sent_at AS message_sent_at,
	sender.username AS sender_name,
	COALESCE(lm.sent_at, to_timestamp(0)) AS last_activity
FROM memberships gm
JOIN groups g ON g.id = gm.group_id
LEFT JOIN outings o ON o.id = g.outing_id
LEFT JOIN last_message lm ON lm.group_id = g.id AND lm.rn = 1
LEFT JOIN users sender ON sender.id = lm.sender_id
LEFT JOIN unread u ON u.group_id = g.id
WHERE gm.user_id = ?
	AND gm.active = true
	AND g.is_active = true
ORDER BY unread_count DESC, last_activity DESC, g.id DESC
`)

	var rows []GroupNotificationRow
	if err := r.db.Raw(query, userID, userID, userID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
