package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/coursebridge/coursebridge-backend/internal/handlers"
	"github.com/coursebridge/coursebridge-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName           string
	AuthMiddleware        *middleware.AuthMiddleware
	AuthHandler           *handlers.AuthHandler
	UserHandler           *handlers.UserHandler
	CourseHandler         *handlers.CourseHandler
	LessonHandler         *handlers.LessonHandler
	EnrollmentHandler     *handlers.EnrollmentHandler
	RatingHandler         *handlers.RatingHandler
	RecommendationHandler *handlers.RecommendationHandler
	TaxonomyHandler       *handlers.TaxonomyHandler
	ChatHandler           *handlers.ChatHandler
	WSHandler             *handlers.WSHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.GET("/categories", cfg.TaxonomyHandler.ListCategories)
		api.GET("/levels", cfg.TaxonomyHandler.ListLevels)
		api.GET("/courses", cfg.CourseHandler.ListCatalog)
		api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
		api.GET("/courses/:id/lessons", cfg.LessonHandler.ListLessons)
		api.GET("/courses/:id/ratings", cfg.RatingHandler.ListCourseRatings)
		api.GET("/courses/:id/messages", cfg.ChatHandler.ListCourseMessages)
		api.GET("/courses/:id/recommendations",
			cfg.AuthMiddleware.OptionalAuth(),
			cfg.RecommendationHandler.GetCourseRecommendations)
	}

	// Chat relay. Identity is optional here: the socket carries no
	// authority of its own, messages are attributed when a token is
	// present and anonymous otherwise.
	router.GET("/ws", cfg.AuthMiddleware.OptionalAuth(), cfg.WSHandler.ServeWebSocket)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	// Courses (instructor)
	protected.POST("/courses", cfg.CourseHandler.CreateCourse)
	protected.PUT("/courses/:id", cfg.CourseHandler.UpdateCourse)
	protected.DELETE("/courses/:id", cfg.CourseHandler.DeleteCourse)
	protected.GET("/instructor/courses", cfg.CourseHandler.ListMine)
	// Lessons (instructor)
	protected.POST("/courses/:id/lessons", cfg.LessonHandler.CreateLesson)
	protected.PUT("/lessons/:lessonId", cfg.LessonHandler.UpdateLesson)
	protected.DELETE("/lessons/:lessonId", cfg.LessonHandler.DeleteLesson)
	// Enrollment
	protected.POST("/courses/:id/enroll", cfg.EnrollmentHandler.Enroll)
	protected.GET("/my/courses", cfg.EnrollmentHandler.ListMyCourses)
	// Ratings
	protected.POST("/courses/:id/ratings", cfg.RatingHandler.RateCourse)

	return router
}
