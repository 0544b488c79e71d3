package store

import (
	"context"
	"fmt"

	"github.com/pbaille/calldesk/internal/domain"
)

// SuggestedTaskUpdate carries the optional fields of UpdateSuggestedTask,
// with the same tag semantics as CallUpdate.
type SuggestedTaskUpdate struct {
	Name   *string
	TagIDs *[]string
}

// ListSuggestedTasks returns the catalog sorted by name
func (s *Store) ListSuggestedTasks(ctx context.Context) ([]domain.SuggestedTask, error) {
	return s.querySuggested(ctx, "SELECT id, name FROM suggested_tasks ORDER BY LOWER(name) ASC, id ASC")
}

// GetSuggestedTask retrieves a catalog entry with its tag ids
func (s *Store) GetSuggestedTask(ctx context.Context, id string) (*domain.SuggestedTask, error) {
	var st domain.SuggestedTask
	err := s.db.QueryRow(ctx, "SELECT id, name FROM suggested_tasks WHERE id = ?", id).Scan(&st.ID, &st.Name)
	if isNoRows(err) {
		return nil, notFound("suggested task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get suggested task: %w", err)
	}

	tags, err := s.linkedTagIDs(ctx, "suggested_task_tags", "suggested_task_id", id)
	if err != nil {
		return nil, err
	}
	st.Tags = tags
	return &st, nil
}

// CreateSuggestedTask adds a catalog entry
func (s *Store) CreateSuggestedTask(ctx context.Context, name string, tagIDs []string) (*domain.SuggestedTask, error) {
	name, err := requireName("suggested task", name)
	if err != nil {
		return nil, err
	}

	id := newID()
	if _, err := s.db.Exec(ctx, "INSERT INTO suggested_tasks (id, name) VALUES (?, ?)", id, name); err != nil {
		return nil, fmt.Errorf("insert suggested task: %w", err)
	}
	if err := linkTags(ctx, s.db, "suggested_task_tags", "suggested_task_id", id, tagIDs); err != nil {
		return nil, err
	}

	return s.GetSuggestedTask(ctx, id)
}

// UpdateSuggestedTask renames and/or retags a catalog entry
func (s *Store) UpdateSuggestedTask(ctx context.Context, id string, upd SuggestedTaskUpdate) (*domain.SuggestedTask, error) {
	name, err := optionalName("suggested task", upd.Name)
	if err != nil {
		return nil, err
	}

	n, err := s.db.Exec(ctx, "UPDATE suggested_tasks SET name = COALESCE(?, name) WHERE id = ?", name, id)
	if err != nil {
		return nil, fmt.Errorf("update suggested task: %w", err)
	}
	if n == 0 {
		return nil, notFound("suggested task", id)
	}

	if upd.TagIDs != nil {
		if err := s.replaceTags(ctx, "suggested_task_tags", "suggested_task_id", id, *upd.TagIDs); err != nil {
			return nil, fmt.Errorf("replace suggested task tags: %w", err)
		}
	}

	return s.GetSuggestedTask(ctx, id)
}

// DeleteSuggestedTask removes a catalog entry
func (s *Store) DeleteSuggestedTask(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "DELETE FROM suggested_tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete suggested task: %w", err)
	}
	if n == 0 {
		return notFound("suggested task", id)
	}
	return nil
}

// SuggestForCall returns catalog entries sharing at least one tag with the call
func (s *Store) SuggestForCall(ctx context.Context, callID string) ([]domain.SuggestedTask, error) {
	if err := s.callExists(ctx, callID); err != nil {
		return nil, err
	}

	return s.querySuggested(ctx, `
		SELECT st.id, st.name
		FROM suggested_tasks st
		WHERE st.id IN (
			SELECT stt.suggested_task_id
			FROM suggested_task_tags stt
			JOIN call_tags ct ON ct.tag_id = stt.tag_id
			WHERE ct.call_id = ?
		)
		ORDER BY LOWER(st.name) ASC, st.id ASC
	`, callID)
}

// querySuggested runs a query selecting (id, name) and fills in tag ids
func (s *Store) querySuggested(ctx context.Context, query string, args ...any) ([]domain.SuggestedTask, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggested tasks: %w", err)
	}

	list := []domain.SuggestedTask{}
	for rows.Next() {
		st := domain.SuggestedTask{Tags: []string{}}
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan suggested task: %w", err)
		}
		list = append(list, st)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("list suggested tasks: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	links, err := s.db.Query(ctx,
		"SELECT suggested_task_id, tag_id FROM suggested_task_tags ORDER BY tag_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list suggested task tags: %w", err)
	}
	defer links.Close()

	byID := make(map[string]*domain.SuggestedTask, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
	}
	for links.Next() {
		var ownerID, tagID string
		if err := links.Scan(&ownerID, &tagID); err != nil {
			return nil, fmt.Errorf("scan tag link: %w", err)
		}
		if st, ok := byID[ownerID]; ok {
			st.Tags = append(st.Tags, tagID)
		}
	}
	return list, links.Err()
}
