package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/feedview/internal/actions"
	"github.com/anonto42/nano-midea/feedview/internal/diagnostics"
	"github.com/anonto42/nano-midea/feedview/internal/editing"
	"github.com/anonto42/nano-midea/feedview/internal/handlers"
	"github.com/anonto42/nano-midea/feedview/internal/loader"
	"github.com/anonto42/nano-midea/feedview/internal/metrics"
	"github.com/anonto42/nano-midea/feedview/internal/middleware"
	"github.com/anonto42/nano-midea/feedview/internal/notifications"
	"github.com/anonto42/nano-midea/feedview/internal/postview"
	"github.com/anonto42/nano-midea/feedview/internal/repositories"
	"github.com/anonto42/nano-midea/feedview/internal/viewstate"
	"github.com/anonto42/nano-midea/feedview/pkg/config"
	"github.com/anonto42/nano-midea/feedview/validators"
)

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil. The returned function releases what the
// routes hold open.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client) func() {
	if err := repositories.Migrate(db.Postgres); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// --- Shared services ---
	m := metrics.New()
	projector := postview.New(diagnostics.NewLogReporter(log.Default(), m))
	validate := validators.NewValidator(cfg.DescriptionMaxLength)
	editor := editing.NewEditor(projector, validate, cfg.AttachmentsMaxCount)
	registry := notifications.NewRegistry(cfg.SiteTitle)
	states := viewstate.NewRedisStore(db.Redis)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(db.Postgres)
	views := loader.New(loader.Repositories{
		Users:         userRepo,
		Subscriptions: subscriptionRepo,
		Requests:      repositories.NewPostgresSubscriptionRequestRepository(db.Postgres),
		Posts:         repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase)),
		Comments:      repositories.NewPostgresCommentRepository(db.Postgres),
		CommentLikes:  repositories.NewPostgresCommentLikeRepository(db.Postgres),
		Likes:         repositories.NewPostgresLikeRepository(db.Postgres),
		Marks:         repositories.NewPostgresSavedPostRepository(db.Postgres),
		Attachments:   repositories.NewPostgresAttachmentRepository(db.Postgres),
		Events:        repositories.NewPostgresNotificationRepository(db.Postgres),
	}, states)

	// --- Command dispatch ---
	var dispatcher actions.Dispatcher = actions.LogDispatcher{Logger: log.Default()}
	closeDispatcher := func() {}
	if cfg.KafkaBrokers != "" {
		kafka := actions.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.KafkaCommandsTopic)
		dispatcher = kafka
		closeDispatcher = func() {
			if err := kafka.Close(); err != nil {
				log.Printf("Error closing Kafka writer: %v", err)
			}
		}
		log.Printf("Commands dispatched to Kafka topic %s.", cfg.KafkaCommandsTopic)
	} else {
		log.Println("KAFKA_BROKERS not set, commands are only logged.")
	}
	commands := actions.NewService(states, dispatcher, projector, validate, m)

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck(cfg.ServiceName, map[string]handlers.Pinger{"redis": states}))
	e.GET("/metrics", m.Handler())

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, subscriptionRepo, cfg.JWTSecret)
	var firebaseAuth echo.MiddlewareFunc
	if firebaseAuthClient != nil {
		firebaseAuth = middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo)
	}
	authHandler.RegisterAuthRoutes(authGroup, firebaseAuth)
	log.Println("Auth routes configured.")

	// --- Viewer routes: anonymous requests see public content ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, true))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// --- Protected routes (require a signed-in viewer) ---
	me := api.Group("", middleware.RequireUser)

	feedHandler := handlers.NewFeedHandler(views, projector, m)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	postHandler := handlers.NewPostHandler(views, projector, editor, m)
	postHandler.RegisterPostRoutes(api, middleware.RequireUser)
	log.Println("Post routes configured.")

	userHandler := handlers.NewUserHandler(views)
	userHandler.RegisterUserRoutes(api)
	userHandler.RegisterProfileRoutes(me)
	log.Println("User routes configured.")

	notificationHandler := handlers.NewNotificationHandler(views, registry, userRepo, m)
	notificationHandler.RegisterNotificationRoutes(me)
	log.Println("Notification routes configured.")

	groupHandler := handlers.NewGroupHandler(views, commands, editor, states, m)
	groupHandler.RegisterGroupRoutes(me)
	log.Println("Group routes configured.")

	commandHandler := handlers.NewCommandHandler(views, commands)
	commandHandler.RegisterCommandRoutes(me)
	log.Println("Command routes configured.")

	log.Println("All routes configured.")
	return closeDispatcher
}
