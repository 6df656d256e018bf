package model

// WebSocket message types
const (
	WSMessageTypeDashboard = "dashboard"
	WSMessageTypeSong      = "song"
	WSMessageTypeError     = "error"
	WSMessageTypePing      = "ping"
	WSMessageTypePong      = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSDashboardMessage carries a freshly derived dashboard
type WSDashboardMessage struct {
	Type string        `json:"type"`
	View DashboardView `json:"view"`
}

// WSSongMessage announces a terminal song transition
type WSSongMessage struct {
	Type string `json:"type"`
	Song Song   `json:"song"`
}

// WSErrorMessage represents an error
type WSErrorMessage struct {
	Type  string  `json:"type"`
	Error WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
