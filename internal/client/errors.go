package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ExternalServiceError is returned when an upstream answers with a non-2xx
// status. Message is safe to show to the user verbatim.
type ExternalServiceError struct {
	Service string
	Status  int
	Message string
	Details json.RawMessage
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.Status, e.Message)
}

// newExternalServiceError picks the user-facing message from the upstream
// body: "message", then "detail", then the status text.
func newExternalServiceError(service string, status int, body []byte) *ExternalServiceError {
	extErr := &ExternalServiceError{Service: service, Status: status}

	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if json.Valid(body) {
		extErr.Details = json.RawMessage(body)
		if err := json.Unmarshal(body, &payload); err == nil {
			extErr.Message = payload.Message
			if extErr.Message == "" && len(payload.Detail) > 0 {
				var detail string
				if err := json.Unmarshal(payload.Detail, &detail); err == nil {
					extErr.Message = detail
				} else {
					extErr.Message = string(payload.Detail)
				}
			}
		}
	}

	if extErr.Message == "" {
		extErr.Message = fmt.Sprintf("%s API error: %s", service, http.StatusText(status))
	}
	return extErr
}
