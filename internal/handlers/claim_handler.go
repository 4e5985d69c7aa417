package handlers

import (
	"errors"

	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/campusfind/lostfound-backend/internal/middleware"
	"github.com/campusfind/lostfound-backend/internal/models"
	"github.com/campusfind/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	claimService *services.ClaimService
}

func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

func (h *ClaimHandler) Create(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	var req dto.CreateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid request body"})
	}
	if req.ItemID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "itemId is required"})
	}

	claim, err := h.claimService.Create(user, &req)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(claim)
}

func (h *ClaimHandler) List(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	q := dto.ListClaimsQuery{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Status: c.Query("status"),
		ItemID: c.Query("itemId"),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}

	claims, total, err := h.claimService.List(user, &q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to fetch claims"})
	}

	return c.JSON(dto.ClaimListResponse{
		Claims:     claims,
		Page:       q.Page,
		TotalPages: totalPages(total, q.Limit),
		Total:      total,
	})
}

func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid claim ID"})
	}

	claim, err := h.claimService.Get(user, id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) Update(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid claim ID"})
	}

	var req dto.UpdateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid request body"})
	}

	claim, err := h.claimService.Update(user, id, &req)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) Approve(c *fiber.Ctx) error {
	return h.setStatus(c, models.ClaimStatusApproved)
}

func (h *ClaimHandler) Reject(c *fiber.Ctx) error {
	return h.setStatus(c, models.ClaimStatusRejected)
}

func (h *ClaimHandler) Delete(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid claim ID"})
	}

	if err := h.claimService.Delete(user, id); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Deleted"})
}

func (h *ClaimHandler) setStatus(c *fiber.Ctx, status string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid claim ID"})
	}

	claim, err := h.claimService.SetStatus(id, status)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrStatusAdminOnly):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrDuplicateClaim),
		errors.Is(err, services.ErrClaimNotEditable),
		errors.Is(err, services.ErrInvalidClaimStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Server error"})
	}
}
