package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lista/backend/internal/config"
	"github.com/lista/backend/internal/database"
	"github.com/lista/backend/internal/handlers"
	"github.com/lista/backend/internal/middleware"
	"github.com/lista/backend/internal/services"
	"github.com/lista/backend/internal/storage"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours, cfg.JWT.RefreshExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	accessService := services.NewAccessService(db)
	imageService := services.NewImageService(db, storageClient)
	recommendationService := services.NewRecommendationService(db, services.NewOpenAIClient(cfg.OpenAI))
	mailer := services.NewSendGridMailer(cfg.SendGrid, cfg.Server.FrontendURL)

	authHandler := handlers.NewAuthHandler(db, mailer)
	usersHandler := handlers.NewUsersHandler(db)
	listItemsHandler := handlers.NewListItemsHandler(db)
	groupSharesHandler := handlers.NewGroupSharesHandler(db, accessService)
	imagesHandler := handlers.NewImagesHandler(imageService)
	customizationsHandler := handlers.NewCustomizationsHandler(db)
	recommendationsHandler := handlers.NewRecommendationsHandler(recommendationService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 50 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/reset_password_request", authHandler.ResetPasswordRequest)
	app.Post("/reset_password", authHandler.ResetPassword)

	app.Get("/user/by-email/:email", usersHandler.GetByEmail)
	app.Get("/user/:id", usersHandler.Get)
	app.Patch("/user/:id", usersHandler.Update)

	listItemRoutes := app.Group("/listitem")
	listItemRoutes.Get("/", authMiddleware.OptionalAuth, listItemsHandler.List)
	listItemRoutes.Get("/by-user/:id", authMiddleware.RequireAuth, listItemsHandler.ListByUser)
	listItemRoutes.Post("/", authMiddleware.RequireAuth, listItemsHandler.Create)
	listItemRoutes.Patch("/:id/delete_item", authMiddleware.RequireAuth, listItemsHandler.SoftDelete)
	listItemRoutes.Patch("/:id", authMiddleware.RequireAuth, listItemsHandler.Update)

	groupListRoutes := app.Group("/grouplists", authMiddleware.RequireAuth)
	groupListRoutes.Get("/permission_type", groupSharesHandler.GetPermissionType)
	groupListRoutes.Get("/by-user/:id", groupSharesHandler.ListByUser)
	groupListRoutes.Get("/", groupSharesHandler.List)
	groupListRoutes.Post("/", groupSharesHandler.Create)
	groupListRoutes.Patch("/:id", groupSharesHandler.Update)

	imageRoutes := app.Group("/listitemimages", authMiddleware.RequireAuth)
	imageRoutes.Post("/upload_images", imagesHandler.Upload)
	imageRoutes.Post("/update_images", imagesHandler.UpdateImages)
	imageRoutes.Get("/:id/get_images_for_list_item", imagesHandler.ListForListItem)

	customizationRoutes := app.Group("/customizations", authMiddleware.RequireAuth)
	customizationRoutes.Get("/get_user_customization", customizationsHandler.GetForUser)
	customizationRoutes.Get("/", customizationsHandler.List)
	customizationRoutes.Post("/", customizationsHandler.Upsert)

	app.Get("/recommendations/:list_item_id", authMiddleware.RequireAuth, recommendationsHandler.Generate)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
