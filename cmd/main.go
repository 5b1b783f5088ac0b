package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/coursebridge/coursebridge-backend/internal/chathub"
	"github.com/coursebridge/coursebridge-backend/internal/chathub/bus"
	"github.com/coursebridge/coursebridge-backend/internal/db"
	"github.com/coursebridge/coursebridge-backend/internal/handlers"
	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/middleware"
	"github.com/coursebridge/coursebridge-backend/internal/observability"
	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/server"
	"github.com/coursebridge/coursebridge-backend/internal/services"
	"github.com/coursebridge/coursebridge-backend/internal/utils"
)

const serviceName = "coursebridge-backend"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Tracing
	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "", log),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Database
	dbService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.SeedTaxonomy(log); err != nil {
		log.Warn("Taxonomy seed failed", "error", err)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	userTokenRepo := repos.NewUserTokenRepo(theDB, log)
	categoryRepo := repos.NewCategoryRepo(theDB, log)
	levelRepo := repos.NewLevelRepo(theDB, log)
	tagRepo := repos.NewTagRepo(theDB, log)
	courseRepo := repos.NewCourseRepo(theDB, log)
	lessonRepo := repos.NewLessonRepo(theDB, log)
	enrollmentRepo := repos.NewEnrollmentRepo(theDB, log)
	ratingRepo := repos.NewRatingRepo(theDB, log)
	chatMessageRepo := repos.NewChatMessageRepo(theDB, log)

	// Chat hub
	log.Info("Setting up chat hub now...")
	hub := chathub.NewHub(log)
	if os.Getenv("REDIS_ADDR") != "" {
		chatBus, err := bus.NewRedisBus(log)
		if err != nil {
			log.Error("Could not init redis chat bus", "error", err)
			os.Exit(1)
		}
		defer chatBus.Close()
		hub.SetRemotePublisher(func(env chathub.Envelope) error {
			return chatBus.Publish(context.Background(), env)
		})
		if err := chatBus.StartForwarder(ctx, hub.HandleRemote); err != nil {
			log.Error("Could not start chat bus forwarder", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("REDIS_ADDR not set, chat relay runs single-node")
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(theDB, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(theDB, log, userRepo)
	courseService := services.NewCourseService(theDB, log, courseRepo, tagRepo)
	lessonService := services.NewLessonService(theDB, log, courseRepo, lessonRepo)
	enrollmentService := services.NewEnrollmentService(theDB, log, courseRepo, enrollmentRepo)
	ratingService := services.NewRatingService(theDB, log, courseRepo, ratingRepo, enrollmentRepo)
	recommendationService := services.NewRecommendationService(theDB, log, courseRepo, enrollmentRepo)
	chatService := services.NewChatService(theDB, log, chatMessageRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	courseHandler := handlers.NewCourseHandler(log, courseService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	enrollmentHandler := handlers.NewEnrollmentHandler(log, enrollmentService)
	ratingHandler := handlers.NewRatingHandler(log, ratingService)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService)
	taxonomyHandler := handlers.NewTaxonomyHandler(categoryRepo, levelRepo)
	chatHandler := handlers.NewChatHandler(log, chatService)
	wsHandler := handlers.NewWSHandler(log, hub, chatService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:           serviceName,
		AuthMiddleware:        authMiddleware,
		AuthHandler:           authHandler,
		UserHandler:           userHandler,
		CourseHandler:         courseHandler,
		LessonHandler:         lessonHandler,
		EnrollmentHandler:     enrollmentHandler,
		RatingHandler:         ratingHandler,
		RecommendationHandler: recommendationHandler,
		TaxonomyHandler:       taxonomyHandler,
		ChatHandler:           chatHandler,
		WSHandler:             wsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
