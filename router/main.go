package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/config"
	"github.com/learnhub-ng/api/database"
	"github.com/learnhub-ng/api/handlers"
	analytics_handlers "github.com/learnhub-ng/api/handlers/analytics"
	content_handlers "github.com/learnhub-ng/api/handlers/content"
	course_handlers "github.com/learnhub-ng/api/handlers/course"
	oer_handlers "github.com/learnhub-ng/api/handlers/oer"
	sync_handlers "github.com/learnhub-ng/api/handlers/sync"
	"github.com/learnhub-ng/api/services"
	"github.com/learnhub-ng/api/services/storage"
	"github.com/learnhub-ng/api/utils"
	"github.com/learnhub-ng/api/utils/auth"
	"github.com/learnhub-ng/api/utils/cache"
	"github.com/learnhub-ng/api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "learnhub-ng-api"
	}

	// Tokens are issued by the identity service; this API only validates them
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: getEnv.JWT_SECRET,
		Expiry: 24 * time.Hour,
		Issuer: jwtIssuer,
	})

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis cache for latest-version hash lookups. Best-effort: the sync
	// endpoints work without it.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Version lookups will hit the database.", err)
		redisCache = nil
	}

	// Object storage for mirrored OER files (optional)
	var spacesClient *storage.SpacesClient
	if getEnv.SPACES_ACCESS_KEY != "" && getEnv.SPACES_BUCKET != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. OER file mirroring disabled.", err)
		}
	} else {
		log.Println("Object storage not configured, OER file mirroring disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize services
	contentStore := services.NewContentStore(db)
	engagementService := services.NewEngagementService(db)
	offlineSyncService := services.NewOfflineSyncService(db, contentStore, engagementService, redisCache)
	analyticsService := services.NewAnalyticsService(db, contentStore, engagementService, redisCache)
	contentLibraryService := services.NewContentLibraryService(db, engagementService)

	// Initialize handlers
	courseHandler := course_handlers.NewCourseHandler(db)
	oerHandler := oer_handlers.NewOERHandler(db, spacesClient)
	syncHandler := sync_handlers.NewSyncHandler(db, offlineSyncService)
	analyticsHandler := analytics_handlers.NewAnalyticsHandler(analyticsService, engagementService)
	contentHandler := content_handlers.NewContentHandler(db, contentLibraryService)

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Unified course catalog (public)
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)

	// OER catalog (public reads, protected mirroring)
	oer := api.Group("/oer")
	oer.Get("/", oerHandler.ListResources)
	oer.Get("/:id", oerHandler.GetResource)
	oer.Get("/:id/download-url", oerHandler.GetDownloadURL)
	oer.Post("/:id/file", authMiddleware.Required(), oerHandler.UploadFile)

	// Offline activity sync (protected)
	sync := api.Group("/sync", authMiddleware.Required())
	sync.Post("/user", syncHandler.SyncUserActivities)
	sync.Post("/batch", syncHandler.BatchSyncActivities)
	sync.Get("/updates", syncHandler.CheckContentUpdates)
	sync.Post("/version/:contentType/:contentId", syncHandler.CreateContentVersion)

	// Analytics (protected)
	analytics := api.Group("/analytics", authMiddleware.Required())
	analytics.Get("/learning", analyticsHandler.GetLearningAnalytics)
	analytics.Get("/engagement/:contentType/:contentId", analyticsHandler.GetContentEngagement)
	analytics.Post("/engagement/:contentType/:contentId", analyticsHandler.TrackEngagement)
	analytics.Post("/engagement/:contentType/:contentId/rating", analyticsHandler.RateContent)

	// Community-contributed content library (protected)
	contents := api.Group("/content", authMiddleware.Required())
	contents.Get("/", contentHandler.ListContent)
	contents.Post("/", contentHandler.CreateContent)
	contents.Get("/:id", contentHandler.GetContent)
	contents.Put("/:id", contentHandler.UpdateContent)
	contents.Delete("/:id", contentHandler.DeleteContent)
	contents.Post("/:id/vote", contentHandler.VoteContent)
	contents.Get("/:id/download", contentHandler.DownloadContent)
	contents.Post("/:id/comments", contentHandler.AddComment)
	contents.Get("/:id/comments", contentHandler.ListComments)

	comments := api.Group("/comments", authMiddleware.Required())
	comments.Put("/:id", contentHandler.UpdateComment)
	comments.Delete("/:id", contentHandler.DeleteComment)
}
