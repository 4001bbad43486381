package main

import (
	"context"
	"log"
	"os"

	_ "crm-backend/api/swagger" // swagger docs
	"crm-backend/internal/database"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/internal/service"
	"crm-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           CRM Backend API
// @version         1.0
// @description     Sales CRM API: leads, contacts, accounts, deals, pipelines.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "crm"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	contactRepo := repository.NewContactRepository(db)
	pipelineRepo := repository.NewPipelineRepository(db)
	dealRepo := repository.NewDealRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	userService := service.NewUserService(userRepo, roleRepo)
	roleService := service.NewRoleService(roleRepo, userRepo)
	accountService := service.NewAccountService(accountRepo)
	contactService := service.NewContactService(contactRepo, accountRepo)
	pipelineService := service.NewPipelineService(pipelineRepo, txManager)
	dealService := service.NewDealService(dealRepo, contactRepo, pipelineService, txManager, wsHub)
	leadService := service.NewLeadService(leadRepo, accountRepo, contactRepo, dealRepo, txManager, wsHub)
	noteService := service.NewNoteService(noteRepo)
	activityService := service.NewActivityService(activityRepo, contactRepo)
	ownershipService := service.NewOwnershipService(userRepo, accountRepo, contactRepo, dealRepo, leadRepo, noteRepo, txManager)
	dashboardService := service.NewDashboardService(db)
	searchService := service.NewSearchService(leadRepo, contactRepo, accountRepo, dealRepo)

	// Seed the built-in roles so a fresh database has Admin/Sales Rep/Viewer
	if err := roleService.SeedDefaults(context.Background()); err != nil {
		log.Fatalf("Role seeding failed: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	accountHandler := handler.NewAccountHandler(accountService)
	contactHandler := handler.NewContactHandler(contactService, activityService)
	pipelineHandler := handler.NewPipelineHandler(pipelineService)
	dealHandler := handler.NewDealHandler(dealService)
	leadHandler := handler.NewLeadHandler(leadService)
	noteHandler := handler.NewNoteHandler(noteService)
	activityHandler := handler.NewActivityHandler(activityService)
	ownershipHandler := handler.NewOwnershipHandler(ownershipService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	searchHandler := handler.NewSearchHandler(searchService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Public routes (no token)
	userHandler.RegisterPublicRoutes(router.Group(""))

	// Protected routes: the principal is loaded fresh per request so role
	// edits apply immediately
	protected := router.Group("", middleware.RequireUser(userRepo))
	userHandler.RegisterRoutes(protected)
	roleHandler.RegisterRoutes(protected)
	accountHandler.RegisterRoutes(protected)
	contactHandler.RegisterRoutes(protected)
	pipelineHandler.RegisterRoutes(protected)
	dealHandler.RegisterRoutes(protected)
	leadHandler.RegisterRoutes(protected)
	noteHandler.RegisterRoutes(protected)
	activityHandler.RegisterRoutes(protected)
	ownershipHandler.RegisterRoutes(protected)
	dashboardHandler.RegisterRoutes(protected)
	searchHandler.RegisterRoutes(protected)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
