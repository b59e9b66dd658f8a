package handlers

import (
	"errors"
	"strconv"

	"github.com/Omballaa/eni-sortir/internal/httpx"
	"github.com/Omballaa/eni-sortir/internal/service"
	"github.com/gofiber/fiber/v2"
)

type OutingHandler struct {
	outingService *service.OutingService
}

func NewOutingHandler(outingService *service.OutingService) *OutingHandler {
	return &OutingHandler{outingService: outingService}
}

func (h *OutingHandler) CreateOuting(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateOutingInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	outing, err := h.outingService.Create(userID, input)
	if err != nil {
		return httpx.BadRequest(c, "invalid_outing", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(outing.ToResponse())
}

func (h *OutingHandler) GetOuting(c *fiber.Ctx) error {
	outingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_outing_id", "Invalid outing ID")
	}

	outing, err := h.outingService.Get(uint(outingID))
	if err != nil {
		if errors.Is(err, service.ErrOutingNotFound) {
			return httpx.NotFound(c, "outing_not_found", "Outing not found")
		}
		return httpx.Internal(c, "get_outing_failed")
	}
	return c.JSON(outing.ToResponse())
}

// PublishOuting opens registrations; only the organizer may do it, and only
// from the draft state. Publishing also brings the discussion group to life.
func (h *OutingHandler) PublishOuting(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	outingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_outing_id", "Invalid outing ID")
	}

	outing, err := h.outingService.Publish(uint(outingID), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOutingNotFound):
			return httpx.NotFound(c, "outing_not_found", "Outing not found")
		case errors.Is(err, service.ErrNotOrganizer):
			return httpx.Forbidden(c, "not_organizer", "Only the organizer can publish this outing")
		case errors.Is(err, service.ErrInvalidTransition):
			return httpx.Conflict(c, "invalid_transition", "Outing cannot be published from its current state")
		default:
			return httpx.Internal(c, "publish_failed")
		}
	}
	return c.JSON(outing.ToResponse())
}

type CancelOutingRequest struct {
	Reason string `json:"reason"`
}

func (h *OutingHandler) CancelOuting(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	outingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_outing_id", "Invalid outing ID")
	}

	var req CancelOutingRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	outing, err := h.outingService.Cancel(uint(outingID), userID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOutingNotFound):
			return httpx.NotFound(c, "outing_not_found", "Outing not found")
		case errors.Is(err, service.ErrNotOrganizer):
			return httpx.Forbidden(c, "not_organizer", "Only the organizer can cancel this outing")
		case errors.Is(err, service.ErrInvalidTransition):
			return httpx.Conflict(c, "invalid_transition", "Only an open outing can be canceled")
		default:
			return httpx.Internal(c, "cancel_failed")
		}
	}
	return c.JSON(outing.ToResponse())
}

func (h *OutingHandler) Register(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	outingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_outing_id", "Invalid outing ID")
	}

	if err := h.outingService.Register(uint(outingID), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrOutingNotFound):
			return httpx.NotFound(c, "outing_not_found", "Outing not found")
		case errors.Is(err, service.ErrOutingNotOpen):
			return httpx.Conflict(c, "outing_not_open", "Registrations are not open for this outing")
		case errors.Is(err, service.ErrDeadlinePassed):
			return httpx.Conflict(c, "deadline_passed", "The registration deadline has passed")
		case errors.Is(err, service.ErrAlreadyRegistered):
			return httpx.Conflict(c, "already_registered", "You are already registered")
		case errors.Is(err, service.ErrOutingFull):
			return httpx.Conflict(c, "outing_full", "The outing is full")
		default:
			return httpx.Internal(c, "register_failed")
		}
	}
	return c.JSON(fiber.Map{"status": "registered"})
}

func (h *OutingHandler) Unregister(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	outingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_outing_id", "Invalid outing ID")
	}

	if err := h.outingService.Unregister(uint(outingID), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrOutingNotFound):
			return httpx.NotFound(c, "outing_not_found", "Outing not found")
		case errors.Is(err, service.ErrNotRegistered):
			return httpx.Conflict(c, "not_registered", "You are not registered for this outing")
		default:
			return httpx.Internal(c, "unregister_failed")
		}
	}
	return c.JSON(fiber.Map{"status": "unregistered"})
}
