package handlers

import (
	"errors"
	"strconv"

	"github.com/Omballaa/eni-sortir/internal/httpx"
	"github.com/Omballaa/eni-sortir/internal/service"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messageService      *service.MessageService
	notificationService *service.NotificationService
}

func NewMessageHandler(messageService *service.MessageService, notificationService *service.NotificationService) *MessageHandler {
	return &MessageHandler{
		messageService:      messageService,
		notificationService: notificationService,
	}
}

type SendMessageRequest struct {
	Body     string `json:"body"`
	ClientID string `json:"client_id"`
}

// SendGroupMessage returns a specific error code per failure reason so the
// client can tell an empty body from an oversized one from a membership
// problem.
func (h *MessageHandler) SendGroupMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.messageService.SendGroupMessage(userID, uint(groupID), req.Body, req.ClientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			return httpx.BadRequest(c, "empty_message", "Message cannot be empty")
		case errors.Is(err, service.ErrMessageTooLong):
			return httpx.BadRequest(c, "message_too_long", "Message is too long")
		case errors.Is(err, service.ErrNotGroupMember):
			return httpx.Forbidden(c, "not_a_member", "You are not a member of this group")
		default:
			return httpx.Internal(c, "send_message_failed")
		}
	}

	h.notificationService.InvalidateAfterAppend()

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// GetGroupMessages serves the poll clients: everything after last_id, in
// ascending id order.
func (h *MessageHandler) GetGroupMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	lastID := uint64(0)
	if lastStr := c.Query("last_id"); lastStr != "" {
		lastID, err = strconv.ParseUint(lastStr, 10, 32)
		if err != nil {
			return httpx.BadRequest(c, "invalid_last_id", "Invalid last_id")
		}
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	messages, err := h.messageService.FetchGroupMessagesSince(userID, uint(groupID), uint(lastID), limit)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			return httpx.Forbidden(c, "not_a_member", "You are not a member of this group")
		}
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]interface{}, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}

	result := fiber.Map{
		"messages": responses,
		"count":    len(messages),
	}
	if len(messages) > 0 {
		result["last_id"] = messages[len(messages)-1].ID
	}
	return c.JSON(result)
}

// GetGroupHistory pages the log by sent-at for scroll-back.
func (h *MessageHandler) GetGroupHistory(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))

	messages, err := h.messageService.FetchGroupHistory(userID, uint(groupID), page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrNotGroupMember) {
			return httpx.Forbidden(c, "not_a_member", "You are not a member of this group")
		}
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]interface{}, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}
	return c.JSON(fiber.Map{"messages": responses, "page": page, "count": len(messages)})
}

// MarkGroupVisited marks everything in the group read for the caller and
// bumps their last-visit timestamp.
func (h *MessageHandler) MarkGroupVisited(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	if err := h.notificationService.MarkGroupVisited(uint(groupID), userID); err != nil {
		return httpx.Internal(c, "mark_visited_failed")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *MessageHandler) MarkMessageRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	messageID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message ID")
	}

	if err := h.messageService.MarkRead(uint(messageID), userID); err != nil {
		return httpx.Internal(c, "mark_read_failed")
	}
	h.notificationService.InvalidateAfterAppend()
	return c.JSON(fiber.Map{"status": "ok", "read": true})
}

func (h *MessageHandler) MarkMessageUnread(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	messageID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message ID")
	}

	if err := h.messageService.MarkUnread(uint(messageID), userID); err != nil {
		return httpx.Internal(c, "mark_unread_failed")
	}
	h.notificationService.InvalidateAfterAppend()
	return c.JSON(fiber.Map{"status": "ok", "read": false})
}

type SendDirectMessageRequest struct {
	RecipientID uint   `json:"recipient_id"`
	Body        string `json:"body"`
	ClientID    string `json:"client_id"`
}

func (h *MessageHandler) SendDirectMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req SendDirectMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.RecipientID == 0 {
		return httpx.BadRequest(c, "missing_recipient", "recipient_id is required")
	}

	message, err := h.messageService.SendDirectMessage(userID, req.RecipientID, req.Body, req.ClientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			return httpx.BadRequest(c, "empty_message", "Message cannot be empty")
		case errors.Is(err, service.ErrMessageTooLong):
			return httpx.BadRequest(c, "message_too_long", "Message is too long")
		default:
			return httpx.Internal(c, "send_message_failed")
		}
	}

	h.notificationService.InvalidateAfterAppend()

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) GetDirectMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	peerID, err := strconv.ParseUint(c.Query("peer_id"), 10, 32)
	if err != nil || peerID == 0 {
		return httpx.BadRequest(c, "invalid_peer", "peer_id is required")
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	messages, err := h.messageService.GetDirectConversation(userID, uint(peerID), limit)
	if err != nil {
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]interface{}, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}
	return c.JSON(fiber.Map{"messages": responses, "count": len(messages)})
}
