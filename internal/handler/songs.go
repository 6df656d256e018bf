package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/middleware"
	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/service"
	"github.com/huggnote/api/pkg/response"
)

type SongHandler struct {
	service   *service.SongService
	validator *validator.Validate
}

func NewSongHandler(svc *service.SongService, v *validator.Validate) *SongHandler {
	return &SongHandler{
		service:   svc,
		validator: v,
	}
}

// Finalize handles POST /api/songs/finalize
// @Summary      Create a song from the drafted prompt
// @Description  Submits the drafted prompt, spends one credit and starts status polling
// @Tags         Songs
// @Accept       json
// @Produce      json
// @Param        request body model.FinalizeRequest false "Optional prompt and style overrides"
// @Success      202 {object} model.FinalizeResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      402 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/songs/finalize [post]
func (h *SongHandler) Finalize(c *fiber.Ctx) error {
	var req model.FinalizeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, "Invalid request body", nil)
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Finalize(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		return writeError(c, err)
	}

	return response.Accepted(c, result)
}

// Get handles GET /api/songs/:id
// @Summary      Get a song
// @Tags         Songs
// @Produce      json
// @Param        id path string true "Song ID"
// @Success      200 {object} model.Song
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/songs/{id} [get]
func (h *SongHandler) Get(c *fiber.Ctx) error {
	song, err := h.service.Get(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, song)
}

// Resume handles POST /api/songs/:id/resume
// @Summary      Resume polling
// @Description  Starts a poller for a song still in Processing, e.g. after a restart
// @Tags         Songs
// @Produce      json
// @Param        id path string true "Song ID"
// @Success      202 {object} model.Song
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/songs/{id}/resume [post]
func (h *SongHandler) Resume(c *fiber.Ctx) error {
	song, err := h.service.Resume(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return response.Accepted(c, song)
}
