package httpEngine

import (
	"net/http"

	"amani-server/configs"
	"amani-server/internal/controllers"
	"amani-server/internal/logics"
	"amani-server/internal/middlewares"
	"amani-server/internal/realtime"
	"amani-server/internal/repositories"
	"amani-server/internal/utils"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires repositories, services, and controllers and registers
// every route of the server.
func RegisterRoutes(e *echo.Echo) {
	// Health check, no JWT.
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, from Amani Server!")
	})

	logger := configs.Logger

	// Repositories over the shared connections.
	profileRepo := repositories.NewProfileRepository(repositories.DBS.Postgres, logger)
	familyRepo := repositories.NewFamilyRepository(repositories.DBS.Postgres, logger)
	assignmentRepo := repositories.NewAssignmentRepository(repositories.DBS.Postgres, logger)
	postRepo := repositories.NewPostRepository(repositories.DBS.Postgres, logger)
	messageRepo := repositories.NewMessageRepository(repositories.DBS.Postgres, logger)
	updateRequestRepo := repositories.NewUpdateRequestRepository(repositories.DBS.Postgres, logger)

	// Realtime fan-out rides the shared redis connection.
	broker := realtime.NewRedisBroker(repositories.DBS.Redis, logger)

	// Core services.
	identityService := logics.NewIdentityService(profileRepo, logger)
	authzService := logics.NewAuthzService(assignmentRepo, familyRepo, postRepo, messageRepo, updateRequestRepo, logger)
	assignmentService := logics.NewAssignmentService(assignmentRepo, profileRepo, familyRepo, logger)
	familyService := logics.NewFamilyService(familyRepo, assignmentRepo, authzService, logger)
	mediaService := logics.NewMediaService(repositories.DBS.S3, configs.Configs.S3.BucketName, configs.Configs.S3.PublicBaseURL, logger)
	postService := logics.NewPostService(postRepo, assignmentRepo, authzService, mediaService, logger)
	messageService := logics.NewMessageService(messageRepo, assignmentRepo, familyRepo, profileRepo, authzService, broker, logger)
	updateRequestService := logics.NewUpdateRequestService(updateRequestRepo, assignmentRepo, postRepo, logger)
	translationService := logics.NewTranslationService(messageRepo, configs.Configs.Openai.ApiKey, configs.Configs.Openai.Model, repositories.DBS.Redis, logger)
	provisioningService := logics.NewProvisioningService(profileRepo, utils.EmailSvc, logger)

	// Controllers.
	profileController := controllers.NewProfileController(identityService)
	adminController := controllers.NewAdminController(provisioningService, identityService)
	familyController := controllers.NewFamilyController(familyService, identityService)
	postController := controllers.NewPostController(postService, identityService)
	assignmentController := controllers.NewAssignmentController(assignmentService, identityService)
	messageController := controllers.NewMessageController(messageService, translationService, identityService)
	updateRequestController := controllers.NewUpdateRequestController(updateRequestService, identityService)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middlewares.JWTMiddleware)

	// Profile endpoints
	apiV1.GET("/profile", profileController.GetProfile)
	apiV1.PUT("/profile", profileController.UpdateProfile)

	// Admin endpoints
	apiV1.POST("/admin/users", adminController.CreateUser)
	apiV1.DELETE("/admin/users/:id", adminController.DeleteUser)
	apiV1.GET("/admin/donors", adminController.ListDonors)
	apiV1.GET("/admin/case-managers", adminController.ListCaseManagers)

	// Family and child endpoints
	apiV1.GET("/families", familyController.ListFamilies)
	apiV1.GET("/families/:id", familyController.GetFamily)
	apiV1.POST("/families", familyController.CreateFamily)
	apiV1.PUT("/families/:id", familyController.UpdateFamily)
	apiV1.DELETE("/families/:id", familyController.DeleteFamily)
	apiV1.POST("/families/:id/children", familyController.CreateChild)
	apiV1.GET("/children/:id", familyController.GetChild)
	apiV1.PUT("/children/:id", familyController.UpdateChild)
	apiV1.DELETE("/children/:id", familyController.DeleteChild)

	// Post and media endpoints
	apiV1.GET("/feed", postController.DonorFeed)
	apiV1.GET("/families/:id/posts", postController.ListFamilyPosts)
	apiV1.POST("/families/:id/posts", postController.CreatePost)
	apiV1.GET("/posts/:id", postController.GetPost)
	apiV1.PUT("/posts/:id", postController.UpdatePost)
	apiV1.DELETE("/posts/:id", postController.DeletePost)
	apiV1.POST("/posts/:id/media", postController.AttachMedia)
	apiV1.DELETE("/posts/:id/media/:mediaID", postController.DetachMedia)

	// Assignment endpoints
	apiV1.POST("/assignments/donor", assignmentController.AssignDonor)
	apiV1.POST("/assignments/case-manager", assignmentController.AssignCaseManager)
	apiV1.PUT("/assignments/donor/:id/end", assignmentController.EndDonorAssignment)
	apiV1.PUT("/assignments/donor/:id/pause", assignmentController.PauseDonorAssignment)
	apiV1.PUT("/assignments/donor/:id/resume", assignmentController.ResumeDonorAssignment)
	apiV1.DELETE("/assignments/donor/:id", assignmentController.RemoveDonorAssignment)
	apiV1.DELETE("/assignments/case-manager/:id", assignmentController.RemoveCaseManagerAssignment)
	apiV1.GET("/donors/:id/families", assignmentController.ListDonorFamilies)
	apiV1.GET("/case-managers/:id/families", assignmentController.ListCaseManagerFamilies)
	apiV1.GET("/families/:id/donors", assignmentController.ListFamilyDonors)

	// Messaging endpoints
	apiV1.POST("/threads", messageController.GetOrCreateThread)
	apiV1.GET("/threads", messageController.ListThreads)
	apiV1.GET("/threads/:id/messages", messageController.ListMessages)
	apiV1.POST("/threads/:id/messages", messageController.SendMessage)
	apiV1.POST("/threads/:id/read", messageController.MarkRead)
	apiV1.GET("/threads/:id/unread-count", messageController.UnreadCount)
	apiV1.GET("/threads/:id/subscribe", messageController.SubscribeThread)
	apiV1.POST("/messages/:id/translate", messageController.TranslateMessage)

	// Update request endpoints
	apiV1.GET("/update-requests", updateRequestController.List)
	apiV1.POST("/update-requests", updateRequestController.Submit)
	apiV1.POST("/update-requests/:id/claim", updateRequestController.Claim)
	apiV1.POST("/update-requests/:id/resolve", updateRequestController.Resolve)
}
