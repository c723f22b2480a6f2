// @title ClassQuiz API
// @version 1.0
// @description Classroom quiz platform: scheduled quizzes generated from course documents, timed sessions, and per-quiz leaderboards.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"classquiz/internal/adapter"
	"classquiz/internal/adapter/quizgen"
	"classquiz/internal/cache"
	"classquiz/internal/config"
	"classquiz/internal/database"
	"classquiz/internal/domain"
	"classquiz/internal/handler"
	"classquiz/internal/logger"
	"classquiz/internal/middleware"
	"classquiz/internal/repository"
	"classquiz/internal/service"

	_ "classquiz/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger logs every HTTP request with its status and duration.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Question generation LLM
	generator, err := quizgen.NewLLMQuestionGenerator(cfg.Generation)
	if err != nil {
		appLogger.Fatal("Failed to create question generator", zap.Error(err))
	}
	appLogger.Info("Question generator initialized",
		zap.String("source", cfg.Generation.Source),
		zap.String("model", cfg.Generation.Model),
	)

	// Database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis-backed cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("Redis cache initialized", zap.String("address", cfg.Redis.Address))

	// Repositories
	quizRepository := repository.NewSQLXQuizRepository(db)
	submissionRepository := repository.NewSQLXSubmissionRepository(db)
	leaderboardRepository := repository.NewSQLXLeaderboardRepository(db)
	documentRepository := repository.NewSQLXDocumentRepository(db)
	roomRepository := repository.NewSQLXRoomRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Services
	tokenService := service.NewTokenService(cfg.JWT)
	userService := service.NewUserService(userRepository, submissionRepository, tokenService)
	roomService := service.NewRoomService(roomRepository)
	documentService := service.NewDocumentService(documentRepository, quizRepository, roomRepository)
	quizService := service.NewQuizService(
		quizRepository, submissionRepository, documentRepository, roomRepository,
		generator, txManager, cacheAdapter, cfg.Cache,
	)
	leaderboardService := service.NewLeaderboardService(
		leaderboardRepository, quizRepository, userRepository, cacheAdapter, cfg.Cache,
	)
	sessionService := service.NewSessionService(
		quizRepository, submissionRepository, leaderboardRepository, userRepository,
		quizService, cacheAdapter,
	)

	// Session countdowns tick independently of incoming requests so
	// expired sessions auto-submit even when the student disconnects.
	tickerCtx, stopTicker := context.WithCancel(context.Background())
	defer stopTicker()
	go sessionService.RunTicker(tickerCtx)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	roomHandler := handler.NewRoomHandler(roomService)
	documentHandler := handler.NewDocumentHandler(documentService)
	quizHandler := handler.NewQuizHandler(quizService, leaderboardService)
	sessionHandler := handler.NewSessionHandler(sessionService)

	// Path-parameter validation shared by every :id route.
	validateID := middleware.NewValidationMiddleware().ValidateIDParam("id")

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	apiGroup := app.Group("/api")

	// Registration is the only public endpoint.
	apiGroup.Post("/users", userHandler.Register)

	userGroup := apiGroup.Group("/users", middleware.Protected(tokenService))
	userGroup.Get("/me", userHandler.GetMyProfile)
	userGroup.Get("/me/dashboard", userHandler.GetMyDashboard)

	roomGroup := apiGroup.Group("/rooms", middleware.Protected(tokenService))
	roomGroup.Post("/", middleware.RequireRole(domain.RoleFaculty), roomHandler.CreateRoom)
	roomGroup.Get("/:id", validateID, roomHandler.GetRoom)
	roomGroup.Get("/:id/documents", validateID, documentHandler.ListRoomDocuments)
	roomGroup.Get("/:id/quizzes", validateID, quizHandler.ListRoomQuizzes)

	documentGroup := apiGroup.Group("/documents", middleware.Protected(tokenService))
	documentGroup.Post("/", middleware.RequireRole(domain.RoleFaculty), documentHandler.CreateDocument)
	documentGroup.Get("/:id", validateID, documentHandler.GetDocument)

	quizGroup := apiGroup.Group("/quizzes", middleware.Protected(tokenService))
	quizGroup.Post("/", middleware.RequireRole(domain.RoleFaculty), quizHandler.CreateQuiz)
	quizGroup.Get("/:id", validateID, quizHandler.GetQuiz)
	quizGroup.Get("/:id/leaderboard", validateID, quizHandler.GetLeaderboard)
	quizGroup.Get("/:id/result", validateID, quizHandler.GetResult)
	quizGroup.Post("/:id/session", validateID, sessionHandler.Start)

	sessionGroup := apiGroup.Group("/sessions", middleware.Protected(tokenService))
	sessionGroup.Get("/:id", validateID, sessionHandler.Get)
	sessionGroup.Post("/:id/answer", validateID, sessionHandler.SelectAnswer)
	sessionGroup.Post("/:id/navigate", validateID, sessionHandler.Navigate)
	sessionGroup.Post("/:id/submit", validateID, sessionHandler.Submit)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	stopTicker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
