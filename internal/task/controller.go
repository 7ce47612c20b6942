package task

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/auth"
)

type TaskController struct {
	service TaskServiceInterface
}

func NewTaskController(service TaskServiceInterface) *TaskController {
	return &TaskController{
		service: service,
	}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1"`
	Description *string    `json:"description" binding:"omitempty,min=1"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	DueDate     *time.Time `json:"dueDate"`
}

// CreateTask creates a task owned by the authenticated user. Status defaults
// to pending when omitted.
func (tc *TaskController) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	task := &Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      Status(req.Status),
		DueDate:     req.DueDate,
		UserID:      userID,
	}

	if err := tc.service.CreateTask(task); err != nil {
		logrus.WithError(err).Error("Failed to create task")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"task":    task,
		"message": "Task added Successfully",
	})
}

// GetAllTasks lists every task owned by the authenticated user.
func (tc *TaskController) GetAllTasks(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	tasks, err := tc.service.GetTasks(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to get tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if tasks == nil {
		tasks = []*Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// UpdateTask applies a partial update to a task the caller owns.
func (tc *TaskController) UpdateTask(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid task ID"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	patch := &TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		patch.Status = &status
	}

	task, err := tc.service.UpdateTask(taskID, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		case errors.Is(err, ErrNotTaskOwner):
			c.JSON(http.StatusForbidden, gin.H{"message": "Not Authorized"})
		default:
			logrus.WithError(err).Error("Failed to update task")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":    task,
		"message": "Task updated successfully",
	})
}

// DeleteTask removes a task the caller owns.
func (tc *TaskController) DeleteTask(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid task ID"})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	if err := tc.service.DeleteTask(taskID, userID); err != nil {
		switch {
		case errors.Is(err, ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		case errors.Is(err, ErrNotTaskOwner):
			c.JSON(http.StatusForbidden, gin.H{"message": "Not Authorized"})
		default:
			logrus.WithError(err).Error("Failed to delete task")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task removed"})
}
