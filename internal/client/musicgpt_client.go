package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/huggnote/api/internal/config"
	"github.com/huggnote/api/internal/extract"
)

// MusicGenerator defines the interface for music generation operations
type MusicGenerator interface {
	GenerateMusic(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	GetConversion(ctx context.Context, id, idType string) (*StatusResponse, error)
}

// MusicGPTClient implements MusicGenerator for the MusicGPT public API
type MusicGPTClient struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	conversionType string
}

// GenerateRequest represents the request for music generation
type GenerateRequest struct {
	Prompt           string `json:"prompt" validate:"required,max=2000"`
	MusicStyle       string `json:"music_style" validate:"omitempty,max=100"`
	MakeInstrumental bool   `json:"make_instrumental"`
	VocalOnly        bool   `json:"vocal_only"`
}

// GenerateResponse represents the response from music generation
type GenerateResponse struct {
	Success       bool    `json:"success"`
	TaskID        string  `json:"task_id"`
	ConversionID1 string  `json:"conversion_id_1"`
	ConversionID2 string  `json:"conversion_id_2,omitempty"`
	ETA           float64 `json:"eta"`
	Message       string  `json:"message,omitempty"`
}

// ETASeconds returns the estimate rounded up to whole seconds, or fallback
// when the service did not provide one.
func (r *GenerateResponse) ETASeconds(fallback int) int {
	if r.ETA <= 0 {
		return fallback
	}
	secs := int(r.ETA)
	if float64(secs) < r.ETA {
		secs++
	}
	return secs
}

// StatusResponse represents the response of a status query
type StatusResponse struct {
	Success    bool       `json:"success"`
	Conversion Conversion `json:"conversion"`
	Message    string     `json:"message,omitempty"`
}

// Conversion keeps the raw conversion object. The audio and cover fields
// vary between API versions, so they are resolved through extract rules.
type Conversion map[string]any

// Conversion states reported by the service
const (
	ConversionStatusProcessing = "PROCESSING"
	ConversionStatusCompleted  = "COMPLETED"
	ConversionStatusFailed     = "FAILED"
)

// Status returns the normalised status string.
func (c Conversion) Status() string {
	s, _ := c["status"].(string)
	return strings.ToUpper(strings.TrimSpace(s))
}

// StatusMessage returns the optional status_msg.
func (c Conversion) StatusMessage() string {
	s, _ := c["status_msg"].(string)
	return s
}

// AudioURL resolves the result audio URL.
func (c Conversion) AudioURL() extract.Result {
	return extract.AudioURL.Apply(c)
}

// CoverImage resolves the album cover URL.
func (c Conversion) CoverImage() extract.Result {
	return extract.CoverImage.Apply(c)
}

// Keys lists the fields present, for diagnosing schema drift.
func (c Conversion) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// NewMusicGPTClient creates a new MusicGPT API client
func NewMusicGPTClient(cfg *config.MusicGPTConfig) *MusicGPTClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	conversionType := cfg.ConversionType
	if conversionType == "" {
		conversionType = "MUSIC_AI"
	}
	return &MusicGPTClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		conversionType: conversionType,
	}
}

// GenerateMusic submits a generation task
func (c *MusicGPTClient) GenerateMusic(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := c.RelayGenerate(ctx, body)
	if err != nil {
		return nil, err
	}

	var result GenerateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// GetConversion queries the status of a task or conversion
func (c *MusicGPTClient) GetConversion(ctx context.Context, id, idType string) (*StatusResponse, error) {
	raw, err := c.RelayStatus(ctx, id, idType, "")
	if err != nil {
		return nil, err
	}

	var result StatusResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// RelayGenerate forwards a raw generation body and returns the raw response.
func (c *MusicGPTClient) RelayGenerate(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/MusicAI", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req)
}

// RelayStatus forwards a status query and returns the raw response. An empty
// conversionType uses the configured one.
func (c *MusicGPTClient) RelayStatus(ctx context.Context, id, idType, conversionType string) ([]byte, error) {
	if idType != "task_id" && idType != "conversion_id" {
		idType = "task_id"
	}
	if conversionType == "" {
		conversionType = c.conversionType
	}

	query := url.Values{}
	query.Set("conversionType", conversionType)
	query.Set(idType, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/byId?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req)
}

// doRequest executes an HTTP request and returns the body of a 2xx response
func (c *MusicGPTClient) doRequest(req *http.Request) ([]byte, error) {
	// MusicGPT expects the bare key, without a Bearer scheme
	req.Header.Set("Authorization", c.apiKey)

	log.Printf("[MusicGPT API] → %s %s", req.Method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[MusicGPT API] ✗ %s %s: request failed: %v", req.Method, req.URL.Path, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[MusicGPT API] ✗ %s %s: failed to read response: %v", req.Method, req.URL.Path, err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[MusicGPT API] ← %d %s %s", resp.StatusCode, req.Method, req.URL.Path)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		extErr := newExternalServiceError("MusicGPT", resp.StatusCode, respBody)
		log.Printf("[MusicGPT API] ✗ error from upstream: %s", extErr.Message)
		return nil, extErr
	}

	return respBody, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *MusicGPTClient) IsConfigured() bool {
	key := strings.TrimSpace(c.apiKey)
	return key != "" && key != "your_api_key_here"
}
