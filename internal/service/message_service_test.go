package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/Omballaa/eni-sortir/internal/models"
	"github.com/Omballaa/eni-sortir/internal/validation"
)

func newMessageServiceFixture() (*MessageService, *MockMessageRepository, *MockMembershipRepository, *MockReadStatusRepository) {
	messageRepo := NewMockMessageRepository()
	membershipRepo := NewMockMembershipRepository()
	readRepo := NewMockReadStatusRepository(messageRepo)
	svc := NewMessageService(messageRepo, membershipRepo, readRepo)
	return svc, messageRepo, membershipRepo, readRepo
}

func TestSendGroupMessage(t *testing.T) {
	svc, _, membershipRepo, _ := newMessageServiceFixture()
	membershipRepo.AddOrReactivate(1, 1, false)

	tests := []struct {
		name    string
		sender  uint
		group   uint
		body    string
		wantErr error
	}{
		{"Valid message", 1, 1, "Hello everyone!", nil},
		{"Whitespace only", 1, 1, "   \t  ", ErrEmptyMessage},
		{"Empty body", 1, 1, "", ErrEmptyMessage},
		{"Too long", 1, 1, strings.Repeat("a", validation.MaxMessageLength()+1), ErrMessageTooLong},
		{"Not a member", 2, 1, "Hi!", ErrNotGroupMember},
		{"Unknown group", 1, 99, "Hi!", ErrNotGroupMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := svc.SendGroupMessage(tt.sender, tt.group, tt.body, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SendGroupMessage error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if msg == nil {
					t.Fatalf("SendGroupMessage returned nil message")
				}
				if msg.GroupID == nil || *msg.GroupID != tt.group {
					t.Errorf("message not bound to group %d", tt.group)
				}
				if msg.ClientID == "" {
					t.Errorf("client ID not generated")
				}
			}
		})
	}
}

func TestSendGroupMessageBodyLimitCountsRunes(t *testing.T) {
	svc, _, membershipRepo, _ := newMessageServiceFixture()
	membershipRepo.AddOrReactivate(1, 1, false)

	// Multi-byte characters: the limit is runes, not bytes.
	body := strings.Repeat("é", validation.MaxMessageLength())
	if _, err := svc.SendGroupMessage(1, 1, body, ""); err != nil {
		t.Errorf("max-length multi-byte message rejected: %v", err)
	}
}

func TestSendGroupMessageClientIDDedup(t *testing.T) {
	svc, messageRepo, membershipRepo, _ := newMessageServiceFixture()
	membershipRepo.AddOrReactivate(1, 1, false)

	first, err := svc.SendGroupMessage(1, 1, "Hello!", "retry-1")
	if err != nil {
		t.Fatalf("SendGroupMessage error = %v", err)
	}
	// A retried send with the same client ID returns the first row.
	second, err := svc.SendGroupMessage(1, 1, "Hello!", "retry-1")
	if err != nil {
		t.Fatalf("retried SendGroupMessage error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry produced a new message %d, want %d", second.ID, first.ID)
	}
	if n := len(messageRepo.GroupMessages(1)); n != 1 {
		t.Errorf("got %d messages after retry, want 1", n)
	}
}

func TestAppendSystemSkipsLengthLimit(t *testing.T) {
	svc, _, _, _ := newMessageServiceFixture()

	body := strings.Repeat("x", validation.MaxMessageLength()+100)
	msg, err := svc.AppendSystem(1, 1, body, models.SystemEventCanceled)
	if err != nil {
		t.Fatalf("AppendSystem error = %v", err)
	}
	if !msg.IsSystem || msg.SystemType != models.SystemEventCanceled {
		t.Errorf("system flags not set: %+v", msg)
	}
}

func TestFetchGroupMessagesSince(t *testing.T) {
	svc, messageRepo, membershipRepo, _ := newMessageServiceFixture()
	membershipRepo.AddOrReactivate(1, 1, false)

	for i := 0; i < 5; i++ {
		msg := models.NewGroupMessage(1, 1, "message")
		msg.ClientID = "c-" + string(rune('a'+i))
		messageRepo.Create(msg)
	}

	tests := []struct {
		name     string
		lastSeen uint
		limit    int
		want     int
	}{
		{"From the beginning", 0, 0, 5},
		{"After the third", 3, 0, 2},
		{"With limit", 0, 2, 2},
		{"Nothing newer", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := svc.FetchGroupMessagesSince(1, 1, tt.lastSeen, tt.limit)
			if err != nil {
				t.Fatalf("FetchGroupMessagesSince error = %v", err)
			}
			if len(msgs) != tt.want {
				t.Errorf("got %d messages, want %d", len(msgs), tt.want)
			}
			// Ascending id order, each above the cursor.
			prev := tt.lastSeen
			for _, m := range msgs {
				if m.ID <= prev {
					t.Errorf("ordering broken: id %d after %d", m.ID, prev)
				}
				prev = m.ID
			}
		})
	}
}

func TestFetchGroupMessagesSinceRequiresMembership(t *testing.T) {
	svc, _, _, _ := newMessageServiceFixture()
	if _, err := svc.FetchGroupMessagesSince(7, 1, 0, 0); !errors.Is(err, ErrNotGroupMember) {
		t.Errorf("error = %v, want ErrNotGroupMember", err)
	}
}

func TestSendDirectMessage(t *testing.T) {
	svc, _, _, _ := newMessageServiceFixture()

	msg, err := svc.SendDirectMessage(1, 2, "Hi Bob", "")
	if err != nil {
		t.Fatalf("SendDirectMessage error = %v", err)
	}
	if msg.RecipientID == nil || *msg.RecipientID != 2 {
		t.Errorf("recipient not set")
	}
	if msg.GroupID != nil {
		t.Errorf("direct message has a group ID")
	}

	conv, err := svc.GetDirectConversation(1, 2, 0)
	if err != nil {
		t.Fatalf("GetDirectConversation error = %v", err)
	}
	if len(conv) != 1 {
		t.Errorf("got %d messages, want 1", len(conv))
	}
}

func TestReadToggle(t *testing.T) {
	svc, messageRepo, _, _ := newMessageServiceFixture()

	msg := models.NewGroupMessage(1, 1, "hello")
	msg.ClientID = "c-1"
	messageRepo.Create(msg)

	if read, _ := svc.IsRead(msg.ID, 2); read {
		t.Errorf("fresh message already read")
	}
	if err := svc.MarkRead(msg.ID, 2); err != nil {
		t.Fatalf("MarkRead error = %v", err)
	}
	if read, _ := svc.IsRead(msg.ID, 2); !read {
		t.Errorf("message not read after MarkRead")
	}
	if err := svc.MarkUnread(msg.ID, 2); err != nil {
		t.Fatalf("MarkUnread error = %v", err)
	}
	if read, _ := svc.IsRead(msg.ID, 2); read {
		t.Errorf("message still read after MarkUnread")
	}
}

func TestMarkReadKeepsOriginalTimestamp(t *testing.T) {
	svc, messageRepo, _, readRepo := newMessageServiceFixture()

	msg := models.NewGroupMessage(1, 1, "hello")
	msg.ClientID = "c-1"
	messageRepo.Create(msg)

	svc.MarkRead(msg.ID, 2)
	first, _ := readRepo.Get(msg.ID, 2)
	firstAt := *first.ReadAt

	// A second mark-read must not move the timestamp.
	svc.MarkRead(msg.ID, 2)
	second, _ := readRepo.Get(msg.ID, 2)
	if !second.ReadAt.Equal(firstAt) {
		t.Errorf("ReadAt moved on repeated MarkRead: %v -> %v", firstAt, *second.ReadAt)
	}
}
