package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/andikahmadi/sikp-backend/config"
	"github.com/andikahmadi/sikp-backend/database"
	"github.com/andikahmadi/sikp-backend/handlers"
	activity_handlers "github.com/andikahmadi/sikp-backend/handlers/activity"
	admin_handlers "github.com/andikahmadi/sikp-backend/handlers/admin"
	auth_handlers "github.com/andikahmadi/sikp-backend/handlers/auth"
	evaluation_handlers "github.com/andikahmadi/sikp-backend/handlers/evaluation"
	guidance_handlers "github.com/andikahmadi/sikp-backend/handlers/guidance"
	proposal_handlers "github.com/andikahmadi/sikp-backend/handlers/proposal"
	registration_handlers "github.com/andikahmadi/sikp-backend/handlers/registration"
	signature_handlers "github.com/andikahmadi/sikp-backend/handlers/signature"
	team_handlers "github.com/andikahmadi/sikp-backend/handlers/team"
	timesheet_handlers "github.com/andikahmadi/sikp-backend/handlers/timesheet"
	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/services/storage"
	"github.com/andikahmadi/sikp-backend/utils/auth"
	"github.com/andikahmadi/sikp-backend/utils/cache"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage, reporting *database.ReportingStore) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration")
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "sikp-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and signature caching will be disabled.", err)
		redisCache = nil
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage for uploaded documents, signature images and QR codes
	spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: getEnv.SPACES_ACCESS_KEY,
		SecretKey: getEnv.SPACES_SECRET_KEY,
		Bucket:    getEnv.SPACES_BUCKET,
		Region:    getEnv.SPACES_REGION,
		Endpoint:  getEnv.SPACES_ENDPOINT,
		CDNURL:    getEnv.SPACES_CDN_URL,
	})
	if err != nil {
		log.Fatal("Failed to initialize object storage: ", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	// Services
	activityService := services.NewActivityService(db)
	blacklistService := auth.NewBlacklistService(db)
	proposalService := services.NewProposalService(db, activityService)
	documentService := services.NewDocumentService(db, spaces, activityService)
	evaluationService := services.NewEvaluationService(db, activityService)
	signatureService := services.NewSignatureService(db, spaces, redisCache, activityService, getEnv.PUBLIC_BASE_URL)
	teamService := services.NewTeamService(db)
	registrationService := services.NewRegistrationService(db, spaces, activityService)
	timesheetService := services.NewTimesheetService(db)
	guidanceService := services.NewGuidanceService(db, spaces)
	accountService := services.NewAccountService(db, blacklistService, activityService)

	// Handlers
	proposalHandler := proposal_handlers.NewProposalHandler(proposalService, documentService, activityService)
	evaluationHandler := evaluation_handlers.NewEvaluationHandler(evaluationService, reporting)
	signatureHandler := signature_handlers.NewSignatureHandler(signatureService)
	teamHandler := team_handlers.NewTeamHandler(teamService)
	registrationHandler := registration_handlers.NewRegistrationHandler(registrationService)
	timesheetHandler := timesheet_handlers.NewTimesheetHandler(timesheetService)
	guidanceHandler := guidance_handlers.NewGuidanceHandler(guidanceService)
	activityHandler := activity_handlers.NewActivityHandler(activityService)
	functionsHandler := admin_handlers.NewFunctionsHandler(accountService, signatureService)
	usersHandler := admin_handlers.NewUsersHandler(db)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error { return handlers.HandleCheckHealth(c, store) })

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Teams
	teams := api.Group("/teams", authMiddleware.Required())
	teams.Post("/", middleware.RequireRoles(model.RoleStudent, model.RoleCoordinator, model.RoleAdmin), teamHandler.Create)
	teams.Get("/me", teamHandler.MyTeam)
	teams.Get("/eligible-students", teamHandler.EligibleStudents)
	teams.Get("/eligible-supervisors", teamHandler.EligibleSupervisors)
	teams.Get("/:id", teamHandler.Get)
	teams.Post("/:id/members", teamHandler.AddMember)
	teams.Delete("/:id/members/:studentId", teamHandler.RemoveMember)
	teams.Put("/:id/supervisors", teamHandler.AssignSupervisor)
	teams.Get("/:id/guidance", guidanceHandler.ForTeam)
	teams.Get("/:teamId/timesheets/pending", middleware.RequireRoles(model.RoleSupervisor, model.RoleCoordinator, model.RoleAdmin), timesheetHandler.PendingForTeam)

	// Proposals
	proposals := api.Group("/proposals", authMiddleware.Required())
	proposals.Post("/", middleware.RequireRoles(model.RoleStudent), proposalHandler.Submit)
	proposals.Get("/", middleware.RequireCoordinator(), proposalHandler.List)
	proposals.Get("/team/:teamId", proposalHandler.GetByTeam)
	proposals.Get("/:id", proposalHandler.Get)
	proposals.Post("/:id/approve", middleware.RequireCoordinator(), proposalHandler.Approve)
	proposals.Post("/:id/reject", middleware.RequireCoordinator(), proposalHandler.Reject)
	proposals.Post("/:id/review", middleware.RequireCoordinator(), proposalHandler.MarkReviewed)
	proposals.Post("/:id/documents", proposalHandler.UploadDocument)
	proposals.Get("/:id/documents", proposalHandler.ListDocuments)
	proposals.Get("/:id/feedback", proposalHandler.Feedback)

	// Evaluations
	evaluations := api.Group("/evaluations", authMiddleware.Required())
	evaluations.Post("/", middleware.RequireRoles(model.RoleSupervisor, model.RoleCoordinator, model.RoleAdmin), evaluationHandler.Add)
	evaluations.Get("/", middleware.RequireCoordinator(), evaluationHandler.List)
	evaluations.Get("/recap", middleware.RequireCoordinator(), evaluationHandler.Recap)
	evaluations.Get("/student/:studentId", evaluationHandler.ListForStudent)
	evaluations.Put("/:id", middleware.RequireRoles(model.RoleSupervisor, model.RoleCoordinator, model.RoleAdmin), evaluationHandler.Edit)
	evaluations.Delete("/:id", middleware.RequireCoordinator(), evaluationHandler.Delete)

	// Digital signatures
	signatures := api.Group("/signatures", authMiddleware.Required())
	signatures.Post("/", middleware.RequireRoles(model.RoleSupervisor, model.RoleAdmin), signatureHandler.Upload)
	signatures.Get("/me", signatureHandler.MyStatus)
	signatures.Get("/pending", middleware.RequireAdmin(), signatureHandler.ListPending)
	signatures.Get("/supervisor/:supervisorId", signatureHandler.Status)
	signatures.Post("/:id/review", middleware.RequireAdmin(), signatureHandler.Review)
	signatures.Delete("/:id", signatureHandler.Delete)

	// KP registrations
	registrations := api.Group("/registrations", authMiddleware.Required())
	registrations.Post("/", middleware.RequireRoles(model.RoleStudent), registrationHandler.Save)
	registrations.Get("/me", registrationHandler.Mine)
	registrations.Get("/", middleware.RequireCoordinator(), registrationHandler.List)
	registrations.Post("/documents/:kind", middleware.RequireRoles(model.RoleStudent), registrationHandler.AttachDocument)
	registrations.Post("/:id/review", middleware.RequireCoordinator(), registrationHandler.Review)

	// Timesheets
	timesheets := api.Group("/timesheets", authMiddleware.Required())
	timesheets.Post("/", middleware.RequireRoles(model.RoleStudent), timesheetHandler.Create)
	timesheets.Get("/me", timesheetHandler.Mine)
	timesheets.Get("/student/:studentId", middleware.RequireRoles(model.RoleSupervisor, model.RoleCoordinator, model.RoleAdmin), timesheetHandler.ForStudent)
	timesheets.Put("/:id", middleware.RequireRoles(model.RoleStudent), timesheetHandler.Update)
	timesheets.Post("/:id/review", middleware.RequireRoles(model.RoleSupervisor, model.RoleCoordinator, model.RoleAdmin), timesheetHandler.Review)
	timesheets.Delete("/:id", timesheetHandler.Delete)

	// Guidance sessions
	guidance := api.Group("/guidance", authMiddleware.Required())
	guidance.Post("/", middleware.RequireRoles(model.RoleSupervisor, model.RoleAdmin), guidanceHandler.Schedule)
	guidance.Get("/me", middleware.RequireRoles(model.RoleSupervisor), guidanceHandler.Mine)
	guidance.Post("/:id/close", guidanceHandler.Close)
	guidance.Post("/:id/reports", middleware.RequireRoles(model.RoleStudent), guidanceHandler.FileReport)

	// Activity feed
	activity := api.Group("/activity", authMiddleware.Required())
	activity.Get("/me", activityHandler.Mine)
	activity.Get("/user/:userId", middleware.RequireCoordinator(), activityHandler.ForUser)

	// Admin user management
	admin := api.Group("/admin", authMiddleware.Required(), middleware.RequireAdmin())
	admin.Get("/users", usersHandler.List)

	// Privileged maintenance functions (admin token required)
	functions := api.Group("/functions", authMiddleware.Required(), middleware.RequireAdmin())
	functions.Post("/delete-user", functionsHandler.DeleteUser)
	functions.Post("/update-signature", functionsHandler.UpdateSignature)
}
