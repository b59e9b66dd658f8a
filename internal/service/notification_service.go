package service

import (
	"time"

	"github.com/Omballaa/eni-sortir/internal/cache"
	"github.com/Omballaa/eni-sortir/internal/models"
	"github.com/Omballaa/eni-sortir/internal/repository"
)

// GroupNotification is one row of the "conversations needing attention" view.
type GroupNotification struct {
	GroupID     uint                  `json:"group_id" msgpack:"group_id"`
	GroupName   string                `json:"group_name" msgpack:"group_name"`
	GroupType   string                `json:"group_type" msgpack:"group_type"`
	UnreadCount int64                 `json:"unread_count" msgpack:"unread_count"`
	LastMessage *LastMessageSummary   `json:"last_message,omitempty" msgpack:"last_message,omitempty"`
	Outing      *models.OutingSummary `json:"outing,omitempty" msgpack:"outing,omitempty"`
}

type LastMessageSummary struct {
	ID       uint      `json:"id" msgpack:"id"`
	Body     string    `json:"body" msgpack:"body"`
	Sender   string    `json:"sender" msgpack:"sender"`
	IsSystem bool      `json:"is_system" msgpack:"is_system"`
	SentAt   time.Time `json:"sent_at" msgpack:"sent_at"`
}

// NotificationService aggregates unread state across the message log, the
// membership registry and the read ledger.
type NotificationService struct {
	notificationRepo repository.NotificationRepositoryInterface
	membershipRepo   repository.MembershipRepositoryInterface
	readRepo         repository.ReadStatusRepositoryInterface
	notifCache       *cache.NotificationCache
}

func NewNotificationService(
	notificationRepo repository.NotificationRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	readRepo repository.ReadStatusRepositoryInterface,
	notifCache *cache.NotificationCache,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		membershipRepo:   membershipRepo,
		readRepo:         readRepo,
		notifCache:       notifCache,
	}
}

func (s *NotificationService) UnreadCountInGroup(groupID, userID uint) (int64, error) {
	return s.notificationRepo.UnreadCountInGroup(groupID, userID)
}

// UnreadCountTotal is the user's unread messages across every group they are
// an active member of, plus unread direct messages addressed to them.
func (s *NotificationService) UnreadCountTotal(userID uint) (int64, error) {
	if count, ok := s.notifCache.GetUnreadTotal(userID); ok {
		return count, nil
	}

	groups, err := s.notificationRepo.UnreadCountGroups(userID)
	if err != nil {
		return 0, err
	}
	direct, err := s.notificationRepo.UnreadCountDirect(userID)
	if err != nil {
		return 0, err
	}

	total := groups + direct
	_ = s.notifCache.SetUnreadTotal(userID, total)
	return total, nil
}

// ListGroupNotifications returns one entry per active group membership,
// computed in a single batched query, sorted by unread count descending with
// ties broken by most recent message; messageless groups sort last.
func (s *NotificationService) ListGroupNotifications(userID uint) ([]GroupNotification, error) {
	var cached []GroupNotification
	if s.notifCache.GetGroupList(userID, &cached) {
		return cached, nil
	}

	rows, err := s.notificationRepo.ListGroupSummaries(userID)
	if err != nil {
		return nil, err
	}

	notifications := make([]GroupNotification, 0, len(rows))
	for _, row := range rows {
		n := GroupNotification{
			GroupID:     row.GroupID,
			GroupName:   row.GroupName,
			GroupType:   row.GroupType,
			UnreadCount: row.UnreadCount,
		}
		if row.MessageID.Valid {
			n.LastMessage = &LastMessageSummary{
				ID:       uint(row.MessageID.Int64),
				Body:     row.MessageBody.String,
				Sender:   row.SenderName.String,
				IsSystem: row.MessageIsSystem.Bool,
			}
			if row.MessageSentAt != nil {
				n.LastMessage.SentAt = *row.MessageSentAt
			}
		}
		if row.OutingID.Valid {
			n.Outing = &models.OutingSummary{
				ID:   uint(row.OutingID.Int64),
				Name: row.OutingName.String,
			}
			if row.OutingStartsAt != nil {
				n.Outing.StartsAt = *row.OutingStartsAt
			}
		}
		notifications = append(notifications, n)
	}

	_ = s.notifCache.SetGroupList(userID, notifications)
	return notifications, nil
}

// MarkGroupVisited is what "the user opened the group" means: every message
// not their own becomes read as of now, and the membership's last-visit
// timestamp moves.
func (s *NotificationService) MarkGroupVisited(groupID, userID uint) error {
	now := time.Now()
	if err := s.readRepo.MarkAllReadInGroup(groupID, userID, now); err != nil {
		return err
	}
	if err := s.membershipRepo.TouchLastVisited(groupID, userID, now); err != nil {
		return err
	}
	return s.notifCache.InvalidateUser(userID)
}

// InvalidateAfterAppend drops cached aggregates once a new message lands.
func (s *NotificationService) InvalidateAfterAppend() {
	_ = s.notifCache.InvalidateAll()
}
