package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/middleware"
	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/service"
	"github.com/huggnote/api/pkg/response"
)

// MusicRelay forwards raw requests to the music generation service
type MusicRelay interface {
	RelayGenerate(ctx context.Context, body []byte) ([]byte, error)
	RelayStatus(ctx context.Context, id, idType, conversionType string) ([]byte, error)
}

// ProxyHandler exposes the generation, status and prompt endpoints used by
// the browser client
type ProxyHandler struct {
	relay     MusicRelay
	prompts   *service.PromptService
	validator *validator.Validate
}

func NewProxyHandler(relay MusicRelay, prompts *service.PromptService, v *validator.Validate) *ProxyHandler {
	return &ProxyHandler{
		relay:     relay,
		prompts:   prompts,
		validator: v,
	}
}

// Generate handles POST /api/generate
// @Summary      Submit a generation task
// @Description  Forwards the request to MusicGPT and relays its response
// @Tags         Proxy
// @Accept       json
// @Produce      json
// @Param        request body client.GenerateRequest true "Generation request"
// @Success      200 {object} client.GenerateResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generate [post]
func (h *ProxyHandler) Generate(c *fiber.Ctx) error {
	var req client.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	body, err := json.Marshal(&req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	raw, err := h.relay.RelayGenerate(c.Context(), body)
	if err != nil {
		return relayError(c, err, "Internal server error during music generation proxy.")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// Status handles GET /api/status/:id
// @Summary      Query a task or conversion
// @Description  Forwards a status query to MusicGPT and relays its response
// @Tags         Proxy
// @Produce      json
// @Param        id path string true "Task or conversion id"
// @Param        idType query string false "task_id or conversion_id" default(task_id)
// @Param        conversionType query string false "Conversion type" default(MUSIC_AI)
// @Success      200 {object} client.StatusResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/status/{id} [get]
func (h *ProxyHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Missing id", nil)
	}

	idType := c.Query("idType", model.IDTypeTaskID)
	if idType != model.IDTypeTaskID && idType != model.IDTypeConversionID {
		return response.ValidationError(c, "idType must be task_id or conversion_id", nil)
	}

	raw, err := h.relay.RelayStatus(c.Context(), id, idType, c.Query("conversionType"))
	if err != nil {
		return relayError(c, err, "Internal server error during status check proxy.")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// CreatePrompt handles POST /api/create-prompt
// @Summary      Draft a generation prompt
// @Description  Drafts a prompt of at most 300 characters from the song order form and keeps it for finalize
// @Tags         Proxy
// @Accept       json
// @Produce      json
// @Param        request body model.PromptForm true "Song order form"
// @Success      200 {object} model.PromptResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      402 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/create-prompt [post]
func (h *ProxyHandler) CreatePrompt(c *fiber.Ctx) error {
	if !h.prompts.IsConfigured() {
		return response.ServiceError(c, "Groq API is not configured on the server.")
	}

	var form model.PromptForm
	if err := c.BodyParser(&form); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&form); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	prompt, err := h.prompts.Draft(c.Context(), middleware.GetUserID(c), &form)
	if err != nil {
		var extErr *client.ExternalServiceError
		if errors.As(err, &extErr) || errors.Is(err, service.ErrNotConfigured) {
			return response.ServiceError(c, "Failed to generate prompt.")
		}
		return writeError(c, err)
	}

	return response.OK(c, model.PromptResponse{
		Success: true,
		Prompt:  prompt,
	})
}

// relayError keeps the upstream status for upstream failures and reports
// transport failures as 500.
func relayError(c *fiber.Ctx, err error, fallback string) error {
	var extErr *client.ExternalServiceError
	if errors.As(err, &extErr) {
		return writeError(c, err)
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return response.Error(c, fiber.StatusInternalServerError, response.CodeServiceError, msg, nil)
}
