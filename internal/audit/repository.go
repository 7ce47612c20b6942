package audit

import (
	"database/sql"
	"time"
)

// Record is one row of the task audit trail, written from the event queue.
type Record struct {
	ID         int       `json:"id"`
	TaskID     int       `json:"taskId"`
	UserID     int       `json:"userId"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
}

type AuditRepository struct{}

type AuditRepositoryInterface interface {
	Insert(tx *sql.Tx, record *Record) error
	GetByTaskID(db *sql.DB, taskID int) ([]*Record, error)
}

func NewAuditRepository() AuditRepositoryInterface {
	return &AuditRepository{}
}

func (r *AuditRepository) Insert(tx *sql.Tx, record *Record) error {
	query := `
		INSERT INTO task_audit (
			task_id, user_id, action, occurred_at
		)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	return tx.QueryRow(
		query,
		record.TaskID,
		record.UserID,
		record.Action,
		record.OccurredAt,
	).Scan(&record.ID)
}

func (r *AuditRepository) GetByTaskID(db *sql.DB, taskID int) ([]*Record, error) {
	query := `
		SELECT id, task_id, user_id, action, occurred_at
		FROM task_audit
		WHERE task_id = $1
		ORDER BY occurred_at
	`

	rows, err := db.Query(query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID,
			&rec.TaskID,
			&rec.UserID,
			&rec.Action,
			&rec.OccurredAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
