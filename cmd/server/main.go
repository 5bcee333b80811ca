package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	config "github.com/agenciakit/captionflow/configs"
	"github.com/agenciakit/captionflow/internal/api/handlers"
	"github.com/agenciakit/captionflow/internal/api/middleware"
	job "github.com/agenciakit/captionflow/internal/jobs"
	"github.com/agenciakit/captionflow/internal/mirror"
	"github.com/agenciakit/captionflow/internal/queue"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/internal/service"
	"github.com/agenciakit/captionflow/internal/state"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer redisClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    25 * 1024 * 1024, // 25 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	personaRepo := repository.NewPersonaRepository(db)
	socialMediaRepo := repository.NewSocialMediaRepository(db)
	captionRepo := repository.NewCaptionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	mirrorStore := mirror.NewStore(mirror.NewRedisKV(redisClient))

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	clientService := service.NewClientService(clientRepo, personaRepo, socialMediaRepo, captionRepo, mirrorStore)
	captionService := service.NewCaptionService(captionRepo, clientRepo)
	settingsService := service.NewSettingsService(*cfg, settingsRepo)
	generatorService := service.NewGeneratorService(clientRepo, personaRepo, settingsService)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)
	historyService := service.NewHistoryService(historyRepo)

	notifier := state.NewSlogNotifier()
	clientsStore := state.NewClientsStore(clientService, notifier)
	captionsStore := state.NewCaptionsStore(captionService, notifier)
	scheduledStore := state.NewScheduledStore(captionService, clientService, mirrorStore, notifier)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService, mirrorStore)
	app.Post("/auth/register", auth.Register)
	app.Post("/auth/login", auth.Login)
	app.Post("/auth/logout", auth.Logout)
	app.Get("/login", auth.GoogleLogin)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.RemoveUser)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettings)
	api.Post("/settings/update", settings.UpdateSettings)

	apiKeys := handlers.NewApiKeysHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveKey)

	clientHandler := handlers.NewClientHandler(clientService, clientsStore)
	api.Get("/clients", clientHandler.ListClients)
	api.Post("/clients", clientHandler.CreateClient)
	api.Get("/clients/:id", clientHandler.GetClient)
	api.Put("/clients/:id", clientHandler.UpdateClient)
	api.Delete("/clients/:id", clientHandler.RemoveClient)
	api.Put("/clients/:id/persona", clientHandler.UpdatePersona)
	api.Put("/clients/:id/social", clientHandler.UpdateSocialMedia)

	captionHandler := handlers.NewCaptionHandler(captionService, r2Service, captionsStore, scheduledStore, client)
	api.Get("/captions", captionHandler.ListCaptions)
	api.Post("/captions", captionHandler.CreateCaption)
	api.Get("/captions/scheduled", captionHandler.ListScheduled)
	historyHandler := handlers.NewHistoryHandler(historyService)
	api.Get("/captions/history", historyHandler.ListHistory)
	api.Put("/captions/:id", captionHandler.UpdateCaption)
	api.Post("/captions/:id/schedule", captionHandler.ScheduleCaption)
	api.Post("/captions/:id/unschedule", captionHandler.UnscheduleCaption)
	api.Delete("/captions/:id", captionHandler.RemoveCaption)
	api.Post("/captions/upload", captionHandler.UploadImage)

	generator := handlers.NewGeneratorHandler(generatorService)
	api.Post("/generate", generator.GenerateCaptions)

	calendar := handlers.NewCalendarHandler(captionService, mirrorStore)
	api.Get("/calendar/events", calendar.ListEvents)

	dashboard := handlers.NewDashboardHandler(clientsStore, captionsStore)
	api.Get("/dashboard", dashboard.Summary)

	// cron jobs
	sweepJob := job.NewScheduleSweepJob(captionRepo, mirrorStore, client)

	// queue
	queueW := queue.NewQueue(captionService, captionRepo, historyRepo, mirrorStore)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", sweepJob.Sweep)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishCaption, queueW.HandlePublishCaptionTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
