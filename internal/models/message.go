package models

import (
	"time"
)

// SystemType tags system messages emitted by the outing lifecycle.
type SystemType string

const (
	SystemGroupCreated        SystemType = "group_created"
	SystemPrivateGroupCreated SystemType = "private_group_created"
	SystemMemberJoined        SystemType = "member_joined"
	SystemMemberLeft          SystemType = "member_left"
	SystemEventPublished      SystemType = "event_published"
	SystemEventCanceled       SystemType = "event_canceled"
	SystemRegistrationsClosed SystemType = "registrations_closed"
)

// Message is an immutable entry in a group log or a direct conversation.
// Exactly one of GroupID / RecipientID is set; the constructors below are the
// only way message rows are built, and the repository re-checks the invariant
// before insert.
type Message struct {
	ID     uint      `gorm:"primarykey" json:"id"`
	SentAt time.Time `gorm:"not null;index" json:"sent_at"`

	// Client-supplied UUID so a retried send does not duplicate the row.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	SenderID    uint  `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	RecipientID *uint `gorm:"index" json:"recipient_id,omitempty"` // null for group messages
	GroupID     *uint `gorm:"index" json:"group_id,omitempty"`     // null for direct messages

	Body       string     `gorm:"type:text;not null" json:"body"`
	IsSystem   bool       `gorm:"default:false" json:"is_system"`
	SystemType SystemType `gorm:"type:varchar(30)" json:"system_type,omitempty"`

	Sender User   `gorm:"foreignKey:SenderID" json:"sender"`
	Group  *Group `gorm:"foreignKey:GroupID" json:"-"`
}

func NewGroupMessage(groupID, senderID uint, body string) *Message {
	id := groupID
	return &Message{
		GroupID:  &id,
		SenderID: senderID,
		Body:     body,
	}
}

func NewDirectMessage(recipientID, senderID uint, body string) *Message {
	id := recipientID
	return &Message{
		RecipientID: &id,
		SenderID:    senderID,
		Body:        body,
	}
}

func NewSystemMessage(groupID, senderID uint, body string, subtype SystemType) *Message {
	m := NewGroupMessage(groupID, senderID, body)
	m.IsSystem = true
	m.SystemType = subtype
	return m
}

// Valid reports whether the group-XOR-recipient invariant holds.
func (m *Message) Valid() bool {
	return (m.GroupID != nil) != (m.RecipientID != nil)
}

type MessageResponse struct {
	ID          uint       `json:"id"`
	ClientID    string     `json:"client_id,omitempty"`
	SenderID    uint       `json:"sender_id"`
	Sender      string     `json:"sender"`
	RecipientID *uint      `json:"recipient_id,omitempty"`
	GroupID     *uint      `json:"group_id,omitempty"`
	Body        string     `json:"body"`
	IsSystem    bool       `json:"is_system"`
	SystemType  SystemType `json:"system_type,omitempty"`
	SentAt      time.Time  `json:"sent_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		ClientID:    m.ClientID,
		SenderID:    m.SenderID,
		Sender:      m.Sender.DisplayName(),
		RecipientID: m.RecipientID,
		GroupID:     m.GroupID,
		Body:        m.Body,
		IsSystem:    m.IsSystem,
		SystemType:  m.SystemType,
		SentAt:      m.SentAt,
	}
}
