package handler

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/service"
	"github.com/huggnote/api/internal/store"
	"github.com/huggnote/api/pkg/response"
)

// writeError converts a service error into the JSON error envelope.
func writeError(c *fiber.Ctx, err error) error {
	var extErr *client.ExternalServiceError
	switch {
	case errors.As(err, &extErr):
		var details interface{}
		if len(extErr.Details) > 0 {
			details = json.RawMessage(extErr.Details)
		}
		return response.ExternalServiceError(c, extErr.Status, extErr.Message, details)
	case errors.Is(err, store.ErrInsufficientCredits):
		return response.InsufficientCredits(c)
	case errors.Is(err, store.ErrSongNotFound):
		return response.NotFound(c, "Song not found")
	case errors.Is(err, store.ErrUnknownPlan):
		return response.ValidationError(c, "Unknown plan", nil)
	case errors.Is(err, service.ErrNoPrompt):
		return response.NoPrompt(c)
	case errors.Is(err, service.ErrSongNotProcessing):
		return response.Conflict(c, "Song is no longer processing")
	}

	log.Printf("Request %s %s failed: %v", c.Method(), c.Path(), err)
	return response.ServiceError(c, err.Error())
}
