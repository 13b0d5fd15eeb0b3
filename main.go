package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"insurance/internal/apierrors"
	"insurance/internal/handlers"
	"insurance/internal/middleware"
	"insurance/internal/models"
	"insurance/internal/repositories"
	"insurance/internal/services"
	"insurance/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("JWT_SECRET", "insurance_dev_secret")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	databaseDSN := viper.GetString("DATABASE_DSN")
	jwtSecret := viper.GetString("JWT_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize Repositories ---
	// With no DSN configured the service runs on in-memory repositories,
	// which is enough for local development.
	var productRepo repositories.ProductRepository
	var userRepo repositories.UserRepository
	if databaseDSN != "" {
		// TranslateError turns driver duplicate-key errors into
		// gorm.ErrDuplicatedKey, which the repositories rely on.
		db, err := gorm.Open(postgres.Open(databaseDSN), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	} else {
		log.Println("DATABASE_DSN not set, using in-memory repositories")
		mockProductRepo := repositories.NewMockProductRepository()
		seedProducts(mockProductRepo)
		productRepo = mockProductRepo
		userRepo = repositories.NewMockUserRepository()
	}

	// --- Initialize RabbitMQ Client ---
	var mqClient *rabbitmq.Client
	var publisher services.ProductEventPublisher
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, product events will not be published")
	}

	// --- Initialize Services ---
	productService := services.NewProductService(productRepo, publisher)
	authService := services.NewAuthService(userRepo, jwtSecret)

	// --- Initialize Fiber App ---
	app := newApp(productService, authService)

	// --- Start RabbitMQ Consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for product events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received product event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// newApp wires handlers, middleware and routes into a Fiber app.
func newApp(productService *services.ProductService, authService *services.AuthService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apierrors.ErrorHandler,
	})

	app.Use(logger.New()) // Request logger

	apiV1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterRoutes(apiV1)

	productHandler := handlers.NewProductHandler(productService)
	productHandler.RegisterRoutes(apiV1, middleware.RoleRequired(authService))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app
}

// seedProducts populates the in-memory product repository with initial data.
func seedProducts(repo repositories.ProductRepository) {
	products := []models.Product{
		{ProductCode: 1000, ProductDesc: "Sedan", Location: models.LocationWestMalaysia, Price: 300.00},
		{ProductCode: 1000, ProductDesc: "Sedan", Location: models.LocationEastMalaysia, Price: 450.00},
		{ProductCode: 2000, ProductDesc: "SUV", Location: models.LocationWestMalaysia, Price: 500.00},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %d: %v", products[i].ProductCode, err)
		} else {
			log.Printf("Seeded product: %d (%s)", products[i].ProductCode, products[i].Location)
		}
	}
}
