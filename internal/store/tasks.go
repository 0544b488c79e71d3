package store

import (
	"context"
	"fmt"

	"github.com/pbaille/calldesk/internal/domain"
)

const taskColumns = "id, call_id, name, status"

// TaskUpdate carries the optional fields of UpdateTask
type TaskUpdate struct {
	Name   *string
	Status *domain.TaskStatus
}

// ListTasks returns every task, newest id first
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.queryTasks(ctx, "ORDER BY id DESC")
}

// ListTasksForCall returns the tasks owned by callID, newest id first
func (s *Store) ListTasksForCall(ctx context.Context, callID string) ([]domain.Task, error) {
	return s.queryTasks(ctx, "WHERE call_id = ? ORDER BY id DESC", callID)
}

// GetTask retrieves a single task
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(s.db.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if isNoRows(err) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a task under callID, then touches the call. The two
// statements commit separately.
func (s *Store) CreateTask(ctx context.Context, callID, name string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status value %d", domain.ErrInvalidInput, int(status))
	}
	name, err := requireName("task", name)
	if err != nil {
		return nil, err
	}
	if err := s.callExists(ctx, callID); err != nil {
		return nil, err
	}

	t, err := scanTask(s.db.QueryRow(ctx,
		"INSERT INTO tasks (id, call_id, name, status) VALUES (?, ?, ?, ?) RETURNING "+taskColumns,
		newID(), callID, name, int(status),
	))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	if err := s.TouchCall(ctx, callID); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask applies upd, then touches the owning call
func (s *Store) UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*domain.Task, error) {
	var status any
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, fmt.Errorf("%w: invalid status value %d", domain.ErrInvalidInput, int(*upd.Status))
		}
		status = int(*upd.Status)
	}
	name, err := optionalName("task", upd.Name)
	if err != nil {
		return nil, err
	}

	t, err := scanTask(s.db.QueryRow(ctx,
		"UPDATE tasks SET name = COALESCE(?, name), status = COALESCE(?, status) WHERE id = ? RETURNING "+taskColumns,
		name, status, id,
	))
	if isNoRows(err) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := s.TouchCall(ctx, t.CallID); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes a task and touches the call that owned it
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return s.TouchCall(ctx, t.CallID)
}

func (s *Store) queryTasks(ctx context.Context, clause string, args ...any) ([]domain.Task, error) {
	rows, err := s.db.Query(ctx, "SELECT "+taskColumns+" FROM tasks "+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var t domain.Task
	var status int
	if err := row.Scan(&t.ID, &t.CallID, &t.Name, &status); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}
