package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/middleware"
	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/service"
	"github.com/huggnote/api/pkg/response"
)

type AccountHandler struct {
	service   *service.AccountService
	validator *validator.Validate
}

func NewAccountHandler(svc *service.AccountService, v *validator.Validate) *AccountHandler {
	return &AccountHandler{
		service:   svc,
		validator: v,
	}
}

// PurchaseResponse is returned by POST /api/orders
type PurchaseResponse struct {
	Success bool        `json:"success"`
	Order   model.Order `json:"order"`
	Credits int         `json:"credits"`
}

// Dashboard handles GET /api/dashboard
// @Summary      Get the dashboard
// @Description  Credits, songs with their display state and orders, derived from the stored record
// @Tags         Dashboard
// @Produce      json
// @Success      200 {object} model.DashboardView
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/dashboard [get]
func (h *AccountHandler) Dashboard(c *fiber.Ctx) error {
	view, err := h.service.Dashboard(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, view)
}

// Purchase handles POST /api/orders
// @Summary      Buy a plan
// @Tags         Dashboard
// @Accept       json
// @Produce      json
// @Param        request body model.PurchaseRequest true "Plan"
// @Success      201 {object} PurchaseResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/orders [post]
func (h *AccountHandler) Purchase(c *fiber.Ctx) error {
	var req model.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	order, credits, err := h.service.Purchase(c.Context(), middleware.GetUserID(c), req.Plan)
	if err != nil {
		return writeError(c, err)
	}

	return response.Created(c, PurchaseResponse{
		Success: true,
		Order:   *order,
		Credits: credits,
	})
}

// Reset handles POST /api/reset
// @Summary      Reset all data
// @Description  Stops polling and clears credits, songs, orders and the draft. Irreversible.
// @Tags         Dashboard
// @Produce      json
// @Success      200 {object} model.DashboardView
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/reset [post]
func (h *AccountHandler) Reset(c *fiber.Ctx) error {
	owner := middleware.GetUserID(c)
	if err := h.service.Reset(c.Context(), owner); err != nil {
		return writeError(c, err)
	}
	view, err := h.service.Dashboard(c.Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, view)
}

// Draft handles GET /api/draft
// @Summary      Get the last drafted prompt
// @Tags         Dashboard
// @Produce      json
// @Success      200 {object} model.Draft
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/draft [get]
func (h *AccountHandler) Draft(c *fiber.Ctx) error {
	draft, err := h.service.Draft(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, draft)
}
