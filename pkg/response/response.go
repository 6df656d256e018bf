package response

import "github.com/gofiber/fiber/v2"

// Error codes
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInsufficientCredits  = "INSUFFICIENT_CREDITS"
	CodeNoPrompt             = "NO_PROMPT"
	CodeExternalServiceError = "EXTERNAL_SERVICE_ERROR"
	CodeServiceError         = "SERVICE_ERROR"
)

// ErrorResponse is the body of every failed request. Message is shown to
// the user as is.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func Error(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Message: message,
		Code:    code,
		Details: details,
	})
}

func ValidationError(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusBadRequest, CodeValidationError, message, details)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, CodeNotFound, message, nil)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, CodeConflict, message, nil)
}

func RateLimited(c *fiber.Ctx) error {
	return Error(c, fiber.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded", nil)
}

func InsufficientCredits(c *fiber.Ctx) error {
	return Error(c, fiber.StatusPaymentRequired, CodeInsufficientCredits, "No credits remaining!", nil)
}

func NoPrompt(c *fiber.Ctx) error {
	return Error(c, fiber.StatusBadRequest, CodeNoPrompt, "No prompt found. Please generate a prompt first.", nil)
}

// ExternalServiceError relays an upstream failure with the upstream status.
func ExternalServiceError(c *fiber.Ctx, status int, message string, details interface{}) error {
	if status < 400 {
		status = fiber.StatusBadGateway
	}
	return Error(c, status, CodeExternalServiceError, message, details)
}

func ServiceError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, CodeServiceError, message, nil)
}

func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func Accepted(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusAccepted).JSON(data)
}
