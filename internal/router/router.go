package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prakritea/decomposr/internal/handlers"
	"github.com/prakritea/decomposr/internal/middleware"
	"github.com/prakritea/decomposr/internal/notify"
	"github.com/prakritea/decomposr/internal/planner"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, plannerSvc *planner.Service, hub *handlers.Hub, dispatcher *notify.Dispatcher) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := &handlers.AuthHandler{DB: db}
	roomHandler := &handlers.RoomHandler{DB: db, Notify: dispatcher}
	projectHandler := &handlers.ProjectHandler{DB: db, Planner: plannerSvc}
	taskHandler := &handlers.TaskHandler{DB: db, Notify: dispatcher}
	notificationHandler := &handlers.NotificationHandler{DB: db}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(db), hub.Handle)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthMiddleware(db), authHandler.Me)
		}

		rooms := api.Group("/rooms", middleware.AuthMiddleware(db))
		{
			rooms.POST("/create", roomHandler.Create)
			rooms.POST("/join", roomHandler.Join)
			rooms.GET("/user-rooms", roomHandler.UserRooms)
			rooms.GET("/:room_id", roomHandler.Get)
			rooms.DELETE("/:room_id", roomHandler.Delete)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware(db))
		{
			projects.POST("/:room_id/projects", projectHandler.Create)
			projects.POST("/:room_id/projects/:project_id/generate-tasks", projectHandler.GenerateTasks)
			projects.PATCH("/:room_id/projects/:project_id/tasks/:task_id", taskHandler.Update)
			projects.PATCH("/:room_id/projects/:project_id/tasks/:task_id/assign", taskHandler.Assign)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware(db))
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
			notifications.PATCH("/:notification_id/read", notificationHandler.MarkRead)
		}
	}

	return r
}
