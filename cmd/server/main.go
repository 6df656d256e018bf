package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/huggnote/api/docs"
	"github.com/huggnote/api/internal/auth"
	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/config"
	"github.com/huggnote/api/internal/handler"
	"github.com/huggnote/api/internal/middleware"
	"github.com/huggnote/api/internal/poller"
	"github.com/huggnote/api/internal/service"
	"github.com/huggnote/api/internal/store"
	ws "github.com/huggnote/api/internal/websocket"
	"github.com/huggnote/api/internal/worker"
	"github.com/huggnote/api/pkg/response"
)

// @title          Huggnote API
// @version        1.0
// @description    Backend API for Huggnote, personalised songs generated with MusicGPT.
// @host           localhost:3000
// @BasePath       /
// @schemes        http https
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
// @description    Enter your bearer token in the format **Bearer &lt;token&gt;**
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Configure Swagger host/scheme based on environment
	if cfg.Server.ApiDomain != "" {
		docs.SwaggerInfo.Host = cfg.Server.ApiDomain
		docs.SwaggerInfo.Schemes = []string{"https"}
	} else {
		docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
		docs.SwaggerInfo.Schemes = []string{"http"}
	}

	queueMode := cfg.Polling.Mode == config.PollingModeQueue

	// Redis backs rate limiting, the redis store and the polling queue
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
		if cfg.Store.Backend == config.StoreBackendRedis || queueMode {
			log.Fatalf("Redis is required for store backend %q and polling mode %q", cfg.Store.Backend, cfg.Polling.Mode)
		}
	}

	// Initialize validator
	validate := validator.New()

	// Initialize external clients
	groqClient := client.NewGroqClient(&cfg.Groq)
	if !groqClient.IsConfigured() {
		log.Println("Warning: GROQ_API_KEY not set, prompt drafting is disabled")
	}
	musicClient := client.NewMusicGPTClient(&cfg.MusicGPT)
	if !musicClient.IsConfigured() {
		log.Println("Warning: MUSICGPT_API_KEY not set, song generation will fail upstream")
	}

	// Initialize R2 client (optional - continues if not configured)
	var r2Client *client.R2Client
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err = client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		}
	}

	// Persistent song store
	backend, closeBackend := openBackend(cfg, redisClient, r2Client)
	defer closeBackend()
	songStore := store.New(backend)
	log.Printf("[STORE] Using %s backend", songStore.BackendName())

	// WebSocket hub receives every dashboard re-render
	hub := ws.NewHub()
	go hub.Run()
	songStore.Subscribe(hub)

	// Polling
	pollCfg := poller.Config{
		Interval:     cfg.Polling.Interval,
		Buffer:       cfg.Polling.Buffer,
		DefaultETA:   cfg.Polling.DefaultETA,
		DefaultCover: cfg.Songs.DefaultCover,
	}
	manager := poller.NewManager(musicClient, songStore, pollCfg, poller.RealClock())
	defer manager.Shutdown()

	var dispatcher service.Dispatcher
	if queueMode {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		inspector := asynq.NewInspector(redisOpt)
		defer inspector.Close()

		dispatcher = service.NewQueueDispatcher(asynqClient, inspector, pollCfg)
		go startWorkerServer(cfg, redisOpt, manager)
	} else {
		dispatcher = service.NewLocalDispatcher(manager)
	}
	log.Printf("[POLLING] Using %s dispatcher, interval %s", dispatcher.Name(), pollCfg.Interval)

	// Initialize OIDC JWKS verifier (optional - falls back to legacy JWT)
	var jwksVerifier *auth.JWKSVerifier
	if cfg.OIDC.Issuer != "" {
		jwksVerifier, err = auth.NewJWKSVerifier(&cfg.OIDC)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			defer jwksVerifier.Close()
		}
	}

	// Initialize services
	promptService := service.NewPromptService(groqClient, songStore)
	songService := service.NewSongService(musicClient, songStore, dispatcher, cfg.Polling.DefaultETA)
	accountService := service.NewAccountService(songStore, dispatcher)

	// Initialize handlers
	proxyHandler := handler.NewProxyHandler(musicClient, promptService, validate)
	songHandler := handler.NewSongHandler(songService, validate)
	accountHandler := handler.NewAccountHandler(accountService, validate)
	dashboardSocket := handler.NewDashboardSocket(hub, accountService)
	healthHandler := handler.NewHealthHandler(
		groqClient.IsConfigured(),
		musicClient.IsConfigured(),
		r2Client != nil,
		songStore.BackendName(),
		redisClient,
	)

	var tokenVerifier auth.TokenVerifier
	if jwksVerifier != nil {
		tokenVerifier = jwksVerifier
	}
	authHandler := handler.NewAuthHandler(tokenVerifier, cfg.JWT.Secret)

	var apiAuthMiddleware fiber.Handler
	if cfg.Gateway.Enabled {
		log.Println("Info: Gateway mode enabled, using header-based auth")
		apiAuthMiddleware = middleware.GatewayAuthMiddleware()
	} else {
		var authMiddleware *middleware.AuthMiddleware
		if jwksVerifier != nil && cfg.JWT.Secret != "" {
			authMiddleware = middleware.NewAuthMiddlewareWithFallback(jwksVerifier, cfg.JWT.Secret)
		} else if jwksVerifier != nil {
			authMiddleware = middleware.NewAuthMiddleware(jwksVerifier)
		} else {
			authMiddleware = middleware.NewLegacyAuthMiddleware(cfg.JWT.Secret)
		}
		apiAuthMiddleware = authMiddleware.Authenticate()
	}
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})
	app.Get("/health", healthHandler.Health)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)
	app.Get("/auth/verify", authHandler.Verify)

	// API routes
	api := app.Group("/api", apiAuthMiddleware)

	// MusicGPT and Groq proxies
	api.Post("/generate", rateLimiter.SongLimit(cfg.RateLimit.SongsPerHour), proxyHandler.Generate)
	api.Get("/status/:id", proxyHandler.Status)
	api.Post("/create-prompt", rateLimiter.PromptLimit(cfg.RateLimit.PromptPerMin), proxyHandler.CreatePrompt)

	// Dashboard
	api.Get("/dashboard", accountHandler.Dashboard)
	api.Get("/draft", accountHandler.Draft)
	api.Post("/orders", accountHandler.Purchase)
	api.Post("/reset", accountHandler.Reset)

	// Songs
	songs := api.Group("/songs")
	songs.Post("/finalize", rateLimiter.SongLimit(cfg.RateLimit.SongsPerHour), songHandler.Finalize)
	songs.Get("/:id", songHandler.Get)
	songs.Post("/:id/resume", songHandler.Resume)

	// WebSocket route, token may come as ?token= since browsers cannot set headers
	app.Get("/ws/dashboard", apiAuthMiddleware, dashboardSocket.Upgrade, dashboardSocket.Serve())

	// Frontend pages and assets
	app.Static("/", cfg.Server.StaticDir)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		manager.Shutdown()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// openBackend picks the store backend from config. The returned func
// releases whatever the backend holds open.
func openBackend(cfg *config.Config, redisClient *redis.Client, r2Client *client.R2Client) (store.Backend, func()) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		return store.NewRedisBackend(redisClient, cfg.Store.TTL), noop
	case config.StoreBackendR2:
		if r2Client == nil {
			log.Fatalf("Store backend r2 requires R2 credentials")
		}
		return store.NewObjectBackend(r2Client, "state"), noop
	case config.StoreBackendSQLite:
		backend, err := store.NewSQLiteBackend(cfg.Store.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		return backend, func() {
			if err := backend.Close(); err != nil {
				log.Printf("Failed to close sqlite store: %v", err)
			}
		}
	case config.StoreBackendMemory, "":
		return store.NewMemoryBackend(), noop
	default:
		log.Printf("Warning: unknown store backend %q, using memory", cfg.Store.Backend)
		return store.NewMemoryBackend(), noop
	}
}

func startWorkerServer(cfg *config.Config, redisOpt asynq.RedisClientOpt, manager *poller.Manager) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 20,
		Queues: map[string]int{
			service.QueuePolling: 1,
		},
		LogLevel: asynqLogLevel,
	})

	pollWorker := worker.NewPollWorker(manager)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeSongPoll, pollWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	errCode := response.CodeServiceError
	switch code {
	case fiber.StatusNotFound:
		errCode = response.CodeNotFound
	case fiber.StatusUnauthorized:
		errCode = response.CodeUnauthorized
	case fiber.StatusTooManyRequests:
		errCode = response.CodeRateLimited
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		errCode = response.CodeValidationError
	}

	return response.Error(c, code, errCode, message, nil)
}
