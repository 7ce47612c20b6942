package task

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository is a mock implementation of TaskRepositoryInterface
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(tx *sql.Tx, task *Task) error {
	args := m.Called(tx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(db *sql.DB, id int) (*Task, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockTaskRepository) GetByUserID(db *sql.DB, userID int) ([]*Task, error) {
	args := m.Called(db, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Task), args.Error(1)
}

func (m *MockTaskRepository) Update(tx *sql.Tx, id int, patch *TaskPatch) (*Task, error) {
	args := m.Called(tx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(tx *sql.Tx, id int) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

func newServiceWithRepo(repo TaskRepositoryInterface) TaskServiceInterface {
	// No DB, broker, or cache: these paths must not touch them
	return NewTaskService(repo, nil, nil, nil)
}

func TestUpdateTask_RejectsNonOwner(t *testing.T) {
	repo := new(MockTaskRepository)
	service := newServiceWithRepo(repo)

	repo.On("GetByID", mock.Anything, 5).Return(&Task{ID: 5, UserID: 1}, nil)

	title := "hijack"
	updated, err := service.UpdateTask(5, 2, &TaskPatch{Title: &title})

	assert.ErrorIs(t, err, ErrNotTaskOwner)
	assert.Nil(t, updated)
	repo.AssertNotCalled(t, "Update")
}

func TestUpdateTask_NotFoundPropagates(t *testing.T) {
	repo := new(MockTaskRepository)
	service := newServiceWithRepo(repo)

	repo.On("GetByID", mock.Anything, 999).Return(nil, ErrTaskNotFound)

	_, err := service.UpdateTask(999, 1, &TaskPatch{})

	assert.ErrorIs(t, err, ErrTaskNotFound)
	repo.AssertNotCalled(t, "Update")
}

func TestDeleteTask_RejectsNonOwner(t *testing.T) {
	repo := new(MockTaskRepository)
	service := newServiceWithRepo(repo)

	repo.On("GetByID", mock.Anything, 5).Return(&Task{ID: 5, UserID: 1}, nil)

	err := service.DeleteTask(5, 2)

	assert.ErrorIs(t, err, ErrNotTaskOwner)
	repo.AssertNotCalled(t, "Delete")
}

func TestDeleteTask_NotFoundPropagates(t *testing.T) {
	repo := new(MockTaskRepository)
	service := newServiceWithRepo(repo)

	repo.On("GetByID", mock.Anything, 999).Return(nil, ErrTaskNotFound)

	err := service.DeleteTask(999, 1)

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetTasks_ScopedToUser(t *testing.T) {
	repo := new(MockTaskRepository)
	service := newServiceWithRepo(repo)

	owned := []*Task{
		{ID: 1, Title: "mine", UserID: 7},
		{ID: 2, Title: "also mine", UserID: 7},
	}
	repo.On("GetByUserID", mock.Anything, 7).Return(owned, nil)

	tasks, err := service.GetTasks(7)

	require.NoError(t, err)
	assert.Equal(t, owned, tasks)
	repo.AssertExpectations(t)
}
