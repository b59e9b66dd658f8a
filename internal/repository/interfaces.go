package repository

import (
	"time"

	"github.com/Omballaa/eni-sortir/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
	SearchUsers(query string, limit int) ([]models.User, error)
}

// OutingRepositoryInterface defines the contract for outing repository operations
type OutingRepositoryInterface interface {
	Create(outing *models.Outing) error
	FindByID(id uint) (*models.Outing, error)
	UpdateState(outingID uint, state models.OutingState) error
	UpdateCancelation(outingID uint, reason string) error
	ListByState(state models.OutingState) ([]models.Outing, error)
	ListExpiredOpen(now time.Time) ([]models.Outing, error)
	AddRegistration(outingID, userID uint) error
	RemoveRegistration(outingID, userID uint) error
	CountRegistrations(outingID uint) (int64, error)
	IsRegistered(outingID, userID uint) (bool, error)
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	// CreateForOuting inserts an outing group or, when one already exists for
	// the outing, reports so without error; the caller falls back to a lookup.
	CreateForOuting(group *models.Group) (created bool, err error)
	FindByID(id uint) (*models.Group, error)
	FindByOutingID(outingID uint) (*models.Group, error)
	SetActive(groupID uint, active bool) error
}

// MembershipRepositoryInterface defines the contract for membership operations
type MembershipRepositoryInterface interface {
	AddOrReactivate(groupID, userID uint, isAdmin bool) (*models.Membership, error)
	Remove(groupID, userID uint) error
	Find(groupID, userID uint) (*models.Membership, error)
	IsActiveMember(groupID, userID uint) (bool, error)
	ListActiveMembers(groupID uint) ([]models.Membership, error)
	CountActiveMembers(groupID uint) (int64, error)
	SetNotificationsEnabled(groupID, userID uint, enabled bool) error
	TouchLastVisited(groupID, userID uint, at time.Time) error
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	FindGroupMessagesSince(groupID uint, lastSeenID uint, limit int) ([]models.Message, error)
	FindGroupMessagesPage(groupID uint, page, pageSize int) ([]models.Message, error)
	FindDirectMessages(userID1, userID2 uint, limit int) ([]models.Message, error)
	GetLatestGroupMessageID(groupID uint) (uint, error)
}

// ReadStatusRepositoryInterface defines the contract for the read ledger
type ReadStatusRepositoryInterface interface {
	Get(messageID, userID uint) (*models.ReadStatus, error)
	IsRead(messageID, userID uint) (bool, error)
	MarkRead(messageID, userID uint, at time.Time) error
	MarkUnread(messageID, userID uint) error
	MarkAllReadInGroup(groupID, userID uint, asOf time.Time) error
}

// NotificationRepositoryInterface computes per-user unread aggregates in
// single batched queries rather than one round trip per group.
type NotificationRepositoryInterface interface {
	UnreadCountInGroup(groupID, userID uint) (int64, error)
	UnreadCountGroups(userID uint) (int64, error)
	UnreadCountDirect(userID uint) (int64, error)
	ListGroupSummaries(userID uint) ([]GroupNotificationRow, error)
}
