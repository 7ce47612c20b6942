package task

import (
	"database/sql"
	"errors"
)

type TaskRepository struct{}

type TaskRepositoryInterface interface {
	Create(tx *sql.Tx, task *Task) error
	GetByID(db *sql.DB, id int) (*Task, error)
	GetByUserID(db *sql.DB, userID int) ([]*Task, error)
	Update(tx *sql.Tx, id int, patch *TaskPatch) (*Task, error)
	Delete(tx *sql.Tx, id int) error
}

func NewTaskRepository() TaskRepositoryInterface {
	return &TaskRepository{}
}

// Create inserts a task and fills in the store-assigned fields.
func (r *TaskRepository) Create(tx *sql.Tx, task *Task) error {
	query := `
		INSERT INTO tasks (
			title, description, status, due_date, user_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		query,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.UserID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return err
	}

	return nil
}

func (r *TaskRepository) GetByID(db *sql.DB, id int) (*Task, error) {
	query := `
		SELECT
			id, title, description, status,
			due_date, user_id,
			created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	row := db.QueryRow(query, id)

	var t Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return &t, nil
}

// GetByUserID lists every task owned by userID. Ownership filtering happens
// strictly on the user_id column.
func (r *TaskRepository) GetByUserID(db *sql.DB, userID int) ([]*Task, error) {
	query := `
		SELECT
			id, title, description, status,
			due_date, user_id,
			created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		var t Task
		err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.DueDate,
			&t.UserID,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update applies only the fields present in patch and returns the resulting
// row. COALESCE keeps omitted fields at their stored values.
func (r *TaskRepository) Update(tx *sql.Tx, id int, patch *TaskPatch) (*Task, error) {
	query := `
		UPDATE tasks
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    status = COALESCE($3, status),
		    due_date = COALESCE($4, due_date),
		    updated_at = NOW()
		WHERE id = $5
		RETURNING
			id, title, description, status,
			due_date, user_id,
			created_at, updated_at
	`

	var t Task
	err := tx.QueryRow(
		query,
		patch.Title,
		patch.Description,
		patch.Status,
		patch.DueDate,
		id,
	).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return &t, nil
}

func (r *TaskRepository) Delete(tx *sql.Tx, id int) error {
	query := `
		DELETE FROM tasks
		WHERE id = $1
	`

	result, err := tx.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
