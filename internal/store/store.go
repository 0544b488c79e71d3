package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/calldesk/internal/db"
	"github.com/pbaille/calldesk/internal/domain"
)

// CallStore is the contract for call persistence.
type CallStore interface {
	ListCalls(ctx context.Context) ([]domain.Call, error)
	GetCall(ctx context.Context, id string) (*domain.CallDetail, error)
	CreateCall(ctx context.Context, name string, tagIDs []string) (*domain.CallDetail, error)
	UpdateCall(ctx context.Context, id string, upd CallUpdate) (*domain.CallDetail, error)
	DeleteCall(ctx context.Context, id string) error
	TouchCall(ctx context.Context, id string) error
}

// TaskStore is the contract for call-scoped task persistence.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ListTasksForCall(ctx context.Context, callID string) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, callID, name string, status domain.TaskStatus) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TagStore is the contract for tag persistence.
type TagStore interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	CreateTag(ctx context.Context, name string) (*domain.Tag, error)
	RenameTag(ctx context.Context, id, name string) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// SuggestedTaskStore is the contract for the suggested task catalog.
type SuggestedTaskStore interface {
	ListSuggestedTasks(ctx context.Context) ([]domain.SuggestedTask, error)
	GetSuggestedTask(ctx context.Context, id string) (*domain.SuggestedTask, error)
	CreateSuggestedTask(ctx context.Context, name string, tagIDs []string) (*domain.SuggestedTask, error)
	UpdateSuggestedTask(ctx context.Context, id string, upd SuggestedTaskUpdate) (*domain.SuggestedTask, error)
	DeleteSuggestedTask(ctx context.Context, id string) error
	SuggestForCall(ctx context.Context, callID string) ([]domain.SuggestedTask, error)
}

// Store implements every store contract on top of a single executor
type Store struct {
	db  db.Executor
	now func() time.Time
}

var (
	_ CallStore          = (*Store)(nil)
	_ TaskStore          = (*Store)(nil)
	_ TagStore           = (*Store)(nil)
	_ SuggestedTaskStore = (*Store)(nil)
)

// New creates a Store using exec for every statement
func New(exec db.Executor) *Store {
	return &Store{
		db: exec,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// requireName trims name and rejects it when nothing is left
func requireName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s name must not be empty", domain.ErrInvalidInput, kind)
	}
	return name, nil
}

// optionalName is requireName for partial updates; nil means "keep the stored value"
func optionalName(kind string, name *string) (any, error) {
	if name == nil {
		return nil, nil
	}
	return requireName(kind, *name)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

// linkedTagIDs returns the tag ids linked to ownerID in a link table
func (s *Store) linkedTagIDs(ctx context.Context, table, ownerCol, ownerID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		"SELECT tag_id FROM "+table+" WHERE "+ownerCol+" = ? ORDER BY tag_id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag link: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// linkTags inserts one link row per distinct tag id in a single statement
func linkTags(ctx context.Context, exec db.Executor, table, ownerCol, ownerID string, tagIDs []string) error {
	tagIDs = distinct(tagIDs)
	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO " + table + " (" + ownerCol + ", tag_id) VALUES ")
	args := make([]any, 0, len(tagIDs)*2)
	for i, tagID := range tagIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?)")
		args = append(args, ownerID, tagID)
	}

	if _, err := exec.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("link tags: %w", err)
	}
	return nil
}

// replaceTags swaps the whole link set of ownerID inside one transaction
func (s *Store) replaceTags(ctx context.Context, table, ownerCol, ownerID string, tagIDs []string) error {
	return s.db.InTx(ctx, func(tx db.Executor) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE "+ownerCol+" = ?", ownerID); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		return linkTags(ctx, tx, table, ownerCol, ownerID, tagIDs)
	})
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func isNoRows(err error) bool {
	return errors.Is(err, db.ErrNoRows)
}
