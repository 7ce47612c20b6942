package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/cache"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/observability"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/queue"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/utils"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotTaskOwner = errors.New("task does not belong to user")
)

type TaskServiceInterface interface {
	CreateTask(task *Task) error
	GetTasks(userID int) ([]*Task, error)
	UpdateTask(taskID, userID int, patch *TaskPatch) (*Task, error)
	DeleteTask(taskID, userID int) error
}

type TaskService struct {
	repo   TaskRepositoryInterface
	db     *sql.DB
	cache  *cache.TaskCache
	events *queue.Publisher
}

func NewTaskService(repo TaskRepositoryInterface, db *sql.DB, conn *amqp.Connection, redisClient *redis.Client) TaskServiceInterface {
	return &TaskService{
		repo:   repo,
		db:     db,
		cache:  cache.NewTaskCache(redisClient),
		events: queue.NewPublisher(conn),
	}
}

// CreateTask persists a task owned by the authenticated user, invalidates
// that user's list cache, and emits a created event.
func (s *TaskService) CreateTask(task *Task) error {
	if task.Status == "" {
		task.Status = StatusPending
	}

	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		return s.repo.Create(tx, task)
	}); err != nil {
		return err
	}

	s.afterMutation(task.ID, task.UserID, queue.ActionCreated)
	return nil
}

// GetTasks returns every task owned by userID, reading through the Redis
// cache when one is configured.
func (s *TaskService) GetTasks(userID int) ([]*Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := cache.UserTasksKey(userID)
	cachedData, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cachedData != nil {
		var tasks []*Task
		if json.Unmarshal(cachedData, &tasks) == nil {
			logrus.Debugf("cache hit for user %d tasks", userID)
			return tasks, nil
		}
	}

	tasks, err := s.repo.GetByUserID(s.db, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, tasks); err != nil {
		logrus.WithError(err).Warn("Failed to set cache for user tasks")
	}

	return tasks, nil
}

// UpdateTask applies a partial update to a task after checking that the
// caller owns it. Fields omitted from the patch keep their stored values.
func (s *TaskService) UpdateTask(taskID, userID int, patch *TaskPatch) (*Task, error) {
	existing, err := s.repo.GetByID(s.db, taskID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrNotTaskOwner
	}

	var updated *Task
	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		updated, err = s.repo.Update(tx, taskID, patch)
		return err
	}); err != nil {
		return nil, err
	}

	s.afterMutation(taskID, userID, queue.ActionUpdated)
	return updated, nil
}

// DeleteTask removes a task after checking that the caller owns it.
func (s *TaskService) DeleteTask(taskID, userID int) error {
	existing, err := s.repo.GetByID(s.db, taskID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrNotTaskOwner
	}

	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		return s.repo.Delete(tx, taskID)
	}); err != nil {
		return err
	}

	s.afterMutation(taskID, userID, queue.ActionDeleted)
	return nil
}

// afterMutation drops the stale list cache and publishes a lifecycle event.
// Both are best effort: the mutation already committed, so failures here are
// logged and never surfaced to the client.
func (s *TaskService) afterMutation(taskID, userID int, action string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.cache.Invalidate(ctx, cache.UserTasksKey(userID)); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate user tasks cache")
	}

	event := queue.TaskEvent{
		TaskID:     taskID,
		UserID:     userID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishTaskEvent(ctx, event); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("Failed to publish task event")
	}

	if m := observability.GlobalMetrics; m != nil {
		m.TaskMutationsTotal.WithLabelValues(action).Inc()
	}
}
