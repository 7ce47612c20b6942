package handler

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rabbitmq/amqp091-go"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/config"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/middleware"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/observability"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/task"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/user"
)

// SetupHandler initializes all dependencies and routes.
func SetupHandler(db *sql.DB, conn *amqp091.Connection, redisClient *redis.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// Must be attached before route registration or gin never runs it for
	// the routes below.
	if m := observability.GlobalMetrics; m != nil {
		r.Use(middleware.PrometheusMiddleware(m))
	}

	userRepo := user.NewUserRepository()
	taskRepo := task.NewTaskRepository()

	userService := user.NewUserService(userRepo, db, cfg.JWT.Secret, cfg.JWT.TokenTTL())
	taskService := task.NewTaskService(taskRepo, db, conn, redisClient)

	userController := user.NewUserController(userService)
	taskController := task.NewTaskController(taskService)

	setupRoutes(r, userController, taskController, cfg.JWT.Secret)

	return r
}

// setupRoutes configures all application routes. Validation runs inside the
// controllers via binding tags; the auth middleware guards every task route.
func setupRoutes(r *gin.Engine, userCtrl *user.UserController, taskCtrl *task.TaskController, jwtSecret string) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "hello"})
	})

	// Public routes
	r.POST("/registration", userCtrl.Register)
	r.POST("/login", userCtrl.Login)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		protected.POST("/create-task", taskCtrl.CreateTask)
		protected.GET("/get-all-tasks", taskCtrl.GetAllTasks)
		protected.PUT("/update-task/:id", taskCtrl.UpdateTask)
		protected.DELETE("/delete-task/:id", taskCtrl.DeleteTask)
	}
}
