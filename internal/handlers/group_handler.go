package handlers

import (
	"errors"
	"strconv"

	"github.com/Omballaa/eni-sortir/internal/httpx"
	"github.com/Omballaa/eni-sortir/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type CreatePrivateGroupRequest struct {
	Name         string `json:"name"`
	Participants []uint `json:"participants"`
}

func (h *GroupHandler) CreatePrivateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req CreatePrivateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.Name == "" {
		return httpx.BadRequest(c, "missing_name", "Group name is required")
	}

	group, err := h.groupService.CreatePrivateGroup(req.Name, userID, req.Participants)
	if err != nil {
		return httpx.Internal(c, "create_group_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(group.ToResponse())
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	group, err := h.groupService.GetGroup(uint(groupID))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return httpx.NotFound(c, "group_not_found", "Group not found")
		}
		return httpx.Internal(c, "fetch_group_failed")
	}
	return c.JSON(group.ToResponse())
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	members, err := h.groupService.ListActiveMembers(uint(groupID))
	if err != nil {
		return httpx.Internal(c, "fetch_members_failed")
	}

	responses := make([]interface{}, len(members))
	for i, m := range members {
		responses[i] = fiber.Map{
			"user":      m.User.ToResponse(),
			"is_admin":  m.IsAdmin,
			"joined_at": m.JoinedAt,
		}
	}
	return c.JSON(fiber.Map{"members": responses, "count": len(members)})
}

type NotificationPrefRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *GroupHandler) SetNotificationPref(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	var req NotificationPrefRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.groupService.SetNotificationsEnabled(uint(groupID), userID, req.Enabled); err != nil {
		return httpx.Internal(c, "set_notification_pref_failed")
	}
	return c.JSON(fiber.Map{"enabled": req.Enabled})
}
