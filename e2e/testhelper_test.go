package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/auth"
	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/config"
	"github.com/huggnote/api/internal/handler"
	"github.com/huggnote/api/internal/middleware"
	"github.com/huggnote/api/internal/poller"
	"github.com/huggnote/api/internal/service"
	"github.com/huggnote/api/internal/store"
	ws "github.com/huggnote/api/internal/websocket"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testUserID    = "test-user-123"
)

// musicStub plays the MusicGPT API. Status queries report PROCESSING until
// pendingChecks have been answered, then finalStatus.
type musicStub struct {
	srv *httptest.Server

	pendingChecks int32
	finalStatus   string
	audioURL      string

	submits atomic.Int32
	checks  atomic.Int32

	mu        sync.Mutex
	lastQuery map[string][]string
}

func newMusicStub(t *testing.T) *musicStub {
	t.Helper()
	s := &musicStub{
		pendingChecks: 2,
		finalStatus:   "COMPLETED",
		audioURL:      "https://cdn.example.com/song.mp3",
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *musicStub) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "mgpt-test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid API key"}`))
		return
	}

	switch r.URL.Path {
	case "/MusicAI":
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "reject-me") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"message":"Prompt violates content policy"}`))
			return
		}
		s.submits.Add(1)
		w.Write([]byte(`{"success":true,"task_id":"task-1","conversion_id_1":"conv-1","conversion_id_2":"conv-2","eta":1}`))

	case "/byId":
		s.mu.Lock()
		s.lastQuery = r.URL.Query()
		s.mu.Unlock()

		n := s.checks.Add(1)
		if n <= s.pendingChecks {
			w.Write([]byte(`{"success":true,"conversion":{"status":"PROCESSING"}}`))
			return
		}
		if s.finalStatus == "COMPLETED" {
			w.Write([]byte(`{"success":true,"conversion":{"status":"COMPLETED","conversion_path":"` + s.audioURL + `","album_cover_url":"https://cdn.example.com/cover.jpg"}}`))
			return
		}
		w.Write([]byte(`{"success":true,"conversion":{"status":"` + s.finalStatus + `"}}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *musicStub) query() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// testApp holds all components needed for testing
type testApp struct {
	app     *fiber.App
	store   *store.Store
	music   *musicStub
	manager *poller.Manager
}

// setupApp creates a Fiber app wired like main.go with the memory store,
// in-process polling on a short interval and stub upstreams.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWith(t, newMusicStub(t), true)
}

func setupAppWith(t *testing.T, music *musicStub, groqConfigured bool) *testApp {
	t.Helper()

	groqSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  A warm acoustic pop song for Mia, full of gratitude.  "}}]}`))
	}))
	t.Cleanup(groqSrv.Close)

	groqCfg := config.GroqConfig{BaseURL: groqSrv.URL, Model: "test-model"}
	if groqConfigured {
		groqCfg.APIKey = "groq-test-key"
	}
	groqClient := client.NewGroqClient(&groqCfg)
	musicClient := client.NewMusicGPTClient(&config.MusicGPTConfig{
		APIKey:  "mgpt-test-key",
		BaseURL: music.srv.URL,
		Timeout: 5,
	})

	validate := validator.New()

	songStore := store.New(store.NewMemoryBackend())
	hub := ws.NewHub()
	go hub.Run()
	songStore.Subscribe(hub)

	pollCfg := poller.Config{
		Interval:     20 * time.Millisecond,
		Buffer:       5,
		DefaultETA:   120,
		DefaultCover: "assets/img/hero-bg.jpg",
	}
	manager := poller.NewManager(musicClient, songStore, pollCfg, poller.RealClock())
	t.Cleanup(manager.Shutdown)
	dispatcher := service.NewLocalDispatcher(manager)

	// Services
	promptService := service.NewPromptService(groqClient, songStore)
	songService := service.NewSongService(musicClient, songStore, dispatcher, pollCfg.DefaultETA)
	accountService := service.NewAccountService(songStore, dispatcher)

	// Handlers
	proxyHandler := handler.NewProxyHandler(musicClient, promptService, validate)
	songHandler := handler.NewSongHandler(songService, validate)
	accountHandler := handler.NewAccountHandler(accountService, validate)
	healthHandler := handler.NewHealthHandler(groqClient.IsConfigured(), true, false, "memory", nil)
	authHandler := handler.NewAuthHandler(nil, testJWTSecret)

	// Auth middleware: legacy HMAC only
	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(nil)

	app := fiber.New()

	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": 1234567890})
	})
	app.Get("/health", healthHandler.Health)
	app.Get("/auth/verify", authHandler.Verify)

	api := app.Group("/api", authMiddleware.Authenticate())
	api.Post("/generate", rateLimiter.SongLimit(10000), proxyHandler.Generate)
	api.Get("/status/:id", proxyHandler.Status)
	api.Post("/create-prompt", rateLimiter.PromptLimit(10000), proxyHandler.CreatePrompt)
	api.Get("/dashboard", accountHandler.Dashboard)
	api.Get("/draft", accountHandler.Draft)
	api.Post("/orders", accountHandler.Purchase)
	api.Post("/reset", accountHandler.Reset)

	songs := api.Group("/songs")
	songs.Post("/finalize", rateLimiter.SongLimit(10000), songHandler.Finalize)
	songs.Get("/:id", songHandler.Get)
	songs.Post("/:id/resume", songHandler.Resume)

	return &testApp{app: app, store: songStore, music: music, manager: manager}
}

// generateToken creates a legacy HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	signed, err := auth.GenerateLegacyToken(testUserID, "test@example.com", testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// mustAuthRequest is doAuthRequest failing the test on transport errors.
func mustAuthRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	resp, err := doAuthRequest(t, app, method, path, body)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// buyCredits purchases plan for the test user.
func buyCredits(t *testing.T, app *fiber.App, plan string) {
	t.Helper()
	resp := mustAuthRequest(t, app, http.MethodPost, "/api/orders", `{"plan":"`+plan+`"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("purchase %s: status %d: %s", plan, resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()
}

// waitForStatus polls GET /api/songs/:id until the song leaves Processing.
func waitForStatus(t *testing.T, app *fiber.App, songID string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp := mustAuthRequest(t, app, http.MethodGet, "/api/songs/"+songID, "")
		song := parseJSON(t, resp)
		if song["status"] != "Processing" {
			return song
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("song %s still processing after 5s", songID)
	return nil
}
