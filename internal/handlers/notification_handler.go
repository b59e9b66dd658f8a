package handlers

import (
	"github.com/Omballaa/eni-sortir/internal/httpx"
	"github.com/Omballaa/eni-sortir/internal/service"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications is the badge-and-list endpoint: the total unread count for
// the navbar plus one entry per group the caller belongs to, ordered so the
// conversations needing attention come first.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	total, err := h.notificationService.UnreadCountTotal(userID)
	if err != nil {
		return httpx.Internal(c, "notifications_failed")
	}

	groups, err := h.notificationService.ListGroupNotifications(userID)
	if err != nil {
		return httpx.Internal(c, "notifications_failed")
	}

	return c.JSON(fiber.Map{
		"unread_total": total,
		"groups":       groups,
	})
}

// GetMyGroups lists the caller's groups. It reuses the aggregated view, so
// each entry already carries its unread count and last message.
func (h *NotificationHandler) GetMyGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groups, err := h.notificationService.ListGroupNotifications(userID)
	if err != nil {
		return httpx.Internal(c, "list_groups_failed")
	}
	return c.JSON(fiber.Map{"groups": groups, "count": len(groups)})
}

// GetUnreadCount serves lightweight badge polling without the group list.
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	total, err := h.notificationService.UnreadCountTotal(userID)
	if err != nil {
		return httpx.Internal(c, "notifications_failed")
	}
	return c.JSON(fiber.Map{"unread_total": total})
}
