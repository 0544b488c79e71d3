package store

import (
	"context"
	"fmt"

	"github.com/pbaille/calldesk/internal/domain"
)

const callColumns = "id, name, created_at, updated_at"

// CallUpdate carries the optional fields of UpdateCall. A nil TagIDs leaves
// the tag links untouched; a pointer to an empty slice clears them.
type CallUpdate struct {
	Name   *string
	TagIDs *[]string
}

// ListCalls returns call summaries, most recently touched first
func (s *Store) ListCalls(ctx context.Context) ([]domain.Call, error) {
	rows, err := s.db.Query(ctx, "SELECT "+callColumns+" FROM calls ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	calls := []domain.Call{}
	for rows.Next() {
		var c domain.Call
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	return calls, nil
}

// GetCall retrieves a call with its tag ids and tasks
func (s *Store) GetCall(ctx context.Context, id string) (*domain.CallDetail, error) {
	var c domain.CallDetail
	err := s.db.QueryRow(ctx,
		"SELECT "+callColumns+" FROM calls WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, notFound("call", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}

	tags, err := s.linkedTagIDs(ctx, "call_tags", "call_id", id)
	if err != nil {
		return nil, err
	}
	c.Tags = tags

	tasks, err := s.queryTasks(ctx, "WHERE call_id = ? ORDER BY id ASC", id)
	if err != nil {
		return nil, err
	}
	c.Tasks = tasks

	return &c, nil
}

// CreateCall inserts a call and links tagIDs to it
func (s *Store) CreateCall(ctx context.Context, name string, tagIDs []string) (*domain.CallDetail, error) {
	name, err := requireName("call", name)
	if err != nil {
		return nil, err
	}

	id := newID()
	now := s.now()

	_, err = s.db.Exec(ctx,
		"INSERT INTO calls (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, name, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert call: %w", err)
	}

	if err := linkTags(ctx, s.db, "call_tags", "call_id", id, tagIDs); err != nil {
		return nil, err
	}

	return s.GetCall(ctx, id)
}

// UpdateCall applies upd and always refreshes updated_at
func (s *Store) UpdateCall(ctx context.Context, id string, upd CallUpdate) (*domain.CallDetail, error) {
	name, err := optionalName("call", upd.Name)
	if err != nil {
		return nil, err
	}

	n, err := s.db.Exec(ctx,
		"UPDATE calls SET name = COALESCE(?, name), updated_at = ? WHERE id = ?",
		name, s.now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update call: %w", err)
	}
	if n == 0 {
		return nil, notFound("call", id)
	}

	if upd.TagIDs != nil {
		if err := s.replaceTags(ctx, "call_tags", "call_id", id, *upd.TagIDs); err != nil {
			return nil, fmt.Errorf("replace call tags: %w", err)
		}
	}

	return s.GetCall(ctx, id)
}

// DeleteCall removes a call; its tag links and tasks go with it
func (s *Store) DeleteCall(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "DELETE FROM calls WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete call: %w", err)
	}
	if n == 0 {
		return notFound("call", id)
	}
	return nil
}

// TouchCall sets a call's updated_at to now
func (s *Store) TouchCall(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "UPDATE calls SET updated_at = ? WHERE id = ?", s.now(), id)
	if err != nil {
		return fmt.Errorf("touch call: %w", err)
	}
	if n == 0 {
		return notFound("call", id)
	}
	return nil
}

func (s *Store) callExists(ctx context.Context, id string) error {
	var found string
	err := s.db.QueryRow(ctx, "SELECT id FROM calls WHERE id = ?", id).Scan(&found)
	if isNoRows(err) {
		return notFound("call", id)
	}
	if err != nil {
		return fmt.Errorf("get call: %w", err)
	}
	return nil
}
