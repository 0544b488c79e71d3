package store

import (
	"context"
	"fmt"

	"github.com/pbaille/calldesk/internal/domain"
)

// ListTags returns all tags sorted by name, ignoring case
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name FROM tags ORDER BY LOWER(name) ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetTag retrieves a tag by ID
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	var t domain.Tag
	err := s.db.QueryRow(ctx, "SELECT id, name FROM tags WHERE id = ?", id).Scan(&t.ID, &t.Name)
	if isNoRows(err) {
		return nil, notFound("tag", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &t, nil
}

// CreateTag inserts a tag with a fresh id
func (s *Store) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name, err := requireName("tag", name)
	if err != nil {
		return nil, err
	}

	t := domain.Tag{ID: newID(), Name: name}
	if _, err := s.db.Exec(ctx, "INSERT INTO tags (id, name) VALUES (?, ?)", t.ID, t.Name); err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return &t, nil
}

// RenameTag changes a tag's name; its id never changes
func (s *Store) RenameTag(ctx context.Context, id, name string) (*domain.Tag, error) {
	name, err := requireName("tag", name)
	if err != nil {
		return nil, err
	}

	var t domain.Tag
	err = s.db.QueryRow(ctx,
		"UPDATE tags SET name = ? WHERE id = ? RETURNING id, name",
		name, id,
	).Scan(&t.ID, &t.Name)
	if isNoRows(err) {
		return nil, notFound("tag", id)
	}
	if err != nil {
		return nil, fmt.Errorf("rename tag: %w", err)
	}
	return &t, nil
}

// DeleteTag removes a tag. Links from calls and suggested tasks are kept.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n == 0 {
		return notFound("tag", id)
	}
	return nil
}
