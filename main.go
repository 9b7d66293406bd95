package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/souqly/souqly_backend/config"
	"github.com/souqly/souqly_backend/controllers"
	"github.com/souqly/souqly_backend/middleware"
	"github.com/souqly/souqly_backend/repositories"
	"github.com/souqly/souqly_backend/routes"
	"github.com/souqly/souqly_backend/services"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (identity cache; optional)
	redisClient := config.ConnectRedis()

	// Connect to database (mutation audit trail)
	client := config.ConnectDB()
	db := config.GetDatabase(client)

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Souqly Admin Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize the upstream gateway and the core services
	gateway := services.NewGatewayService()
	store := services.NewProjectionStore()
	auditRepo := repositories.NewAuditRepository(db)
	identityResolver := services.NewIdentityResolver(gateway, redisClient)
	viewService := services.NewSellerViewService(gateway, store, identityResolver)
	coordinator := services.NewMutationCoordinator(gateway, store, auditRepo)

	// Initialize controllers
	sellerController := controllers.NewSellerController(viewService, identityResolver, auditRepo)
	verificationController := controllers.NewVerificationController(coordinator)

	// Register admin routes
	routes.RegisterAdminRoutes(e, sellerController, verificationController)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
