package service

import (
	"time"
	"unicode/utf8"

	"github.com/Omballaa/eni-sortir/internal/models"
	"github.com/Omballaa/eni-sortir/internal/repository"
	"github.com/Omballaa/eni-sortir/internal/validation"
	"github.com/google/uuid"
)

// MessageService is the use-case layer over the append-only message log. The
// repository itself trusts its callers; membership authorization happens
// here, and fails closed when membership cannot be confirmed.
type MessageService struct {
	messageRepo    repository.MessageRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	readRepo       repository.ReadStatusRepositoryInterface
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	readRepo repository.ReadStatusRepositoryInterface,
) *MessageService {
	return &MessageService{
		messageRepo:    messageRepo,
		membershipRepo: membershipRepo,
		readRepo:       readRepo,
	}
}

func (s *MessageService) validateBody(body string) error {
	if body == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > validation.MaxMessageLength() {
		return ErrMessageTooLong
	}
	return nil
}

// SendGroupMessage appends a user message to a group after checking the
// sender is an active member. A clientID already seen from this sender
// returns the existing message instead of appending twice.
func (s *MessageService) SendGroupMessage(senderID, groupID uint, body, clientID string) (*models.Message, error) {
	isMember, err := s.membershipRepo.IsActiveMember(groupID, senderID)
	if err != nil || !isMember {
		return nil, ErrNotGroupMember
	}

	body = validation.TrimMessageBody(body)
	if err := s.validateBody(body); err != nil {
		return nil, err
	}

	if clientID != "" {
		if existing, err := s.messageRepo.FindByClientID(clientID, senderID); err == nil {
			return existing, nil
		}
	} else {
		clientID = uuid.NewString()
	}

	message := models.NewGroupMessage(groupID, senderID, body)
	message.ClientID = clientID
	message.SentAt = time.Now()

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	// Reload with sender info
	return s.messageRepo.FindByID(message.ID)
}

// SendDirectMessage appends a direct message between two users.
func (s *MessageService) SendDirectMessage(senderID, recipientID uint, body, clientID string) (*models.Message, error) {
	body = validation.TrimMessageBody(body)
	if err := s.validateBody(body); err != nil {
		return nil, err
	}

	if clientID != "" {
		if existing, err := s.messageRepo.FindByClientID(clientID, senderID); err == nil {
			return existing, nil
		}
	} else {
		clientID = uuid.NewString()
	}

	message := models.NewDirectMessage(recipientID, senderID, body)
	message.ClientID = clientID
	message.SentAt = time.Now()

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByID(message.ID)
}

// AppendSystem records a lifecycle announcement in the group. The acting
// user (normally the group creator) is recorded as sender for display; the
// user-message length limits do not apply.
func (s *MessageService) AppendSystem(groupID, actingUserID uint, body string, subtype models.SystemType) (*models.Message, error) {
	message := models.NewSystemMessage(groupID, actingUserID, body, subtype)
	message.ClientID = uuid.NewString()
	message.SentAt = time.Now()

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	return message, nil
}

// FetchGroupMessagesSince returns the group's messages with id > lastSeenID
// in ascending id order; lastSeenID = 0 means the whole log.
func (s *MessageService) FetchGroupMessagesSince(userID, groupID, lastSeenID uint, limit int) ([]models.Message, error) {
	isMember, err := s.membershipRepo.IsActiveMember(groupID, userID)
	if err != nil || !isMember {
		return nil, ErrNotGroupMember
	}
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	return s.messageRepo.FindGroupMessagesSince(groupID, lastSeenID, limit)
}

// FetchGroupHistory pages through a group's log by sent-at for scroll-back.
func (s *MessageService) FetchGroupHistory(userID, groupID uint, page, pageSize int) ([]models.Message, error) {
	isMember, err := s.membershipRepo.IsActiveMember(groupID, userID)
	if err != nil || !isMember {
		return nil, ErrNotGroupMember
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	return s.messageRepo.FindGroupMessagesPage(groupID, page, pageSize)
}

func (s *MessageService) GetDirectConversation(userID, peerID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messageRepo.FindDirectMessages(userID, peerID, limit)
}

func (s *MessageService) IsRead(messageID, userID uint) (bool, error) {
	return s.readRepo.IsRead(messageID, userID)
}

func (s *MessageService) MarkRead(messageID, userID uint) error {
	return s.readRepo.MarkRead(messageID, userID, time.Now())
}

func (s *MessageService) MarkUnread(messageID, userID uint) error {
	return s.readRepo.MarkUnread(messageID, userID)
}
