package client

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/pbaille/calldesk/internal/api"
	"github.com/pbaille/calldesk/internal/domain"
)

// ErrNoOpenCall is returned by call-scoped mirror operations before Open
var ErrNoOpenCall = errors.New("no call open")

// Mirror keeps a local copy of server state and patches it after each
// successful mutation instead of refetching. Not safe for concurrent use.
type Mirror struct {
	client *Client
	now    func() time.Time

	Calls []domain.Call
	Tags  []domain.Tag
	Tasks []domain.Task

	// Current is the call whose detail view is open
	Current *domain.CallDetail
}

// NewMirror creates an empty mirror backed by c
func NewMirror(c *Client) *Mirror {
	return &Mirror{
		client: c,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load fetches calls, tags and tasks
func (m *Mirror) Load(ctx context.Context) error {
	calls, err := m.client.ListCalls(ctx)
	if err != nil {
		return err
	}
	tags, err := m.client.ListTags(ctx)
	if err != nil {
		return err
	}
	tasks, err := m.client.ListTasks(ctx)
	if err != nil {
		return err
	}
	m.Calls, m.Tags, m.Tasks = calls, tags, tasks
	return nil
}

// Open fetches a call's detail and makes it Current
func (m *Mirror) Open(ctx context.Context, callID string) (*domain.CallDetail, error) {
	detail, err := m.client.GetCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	m.Current = detail
	return detail, nil
}

// CreateCall creates a call, puts it first in Calls and opens it
func (m *Mirror) CreateCall(ctx context.Context, name string, tagIDs []string) (*domain.CallDetail, error) {
	detail, err := m.client.CreateCall(ctx, name, tagIDs)
	if err != nil {
		return nil, err
	}
	m.Current = detail
	m.promote(detail.Call)
	return detail, nil
}

// AddTask creates a task on the open call
func (m *Mirror) AddTask(ctx context.Context, name string, status domain.TaskStatus) (*domain.Task, error) {
	if m.Current == nil {
		return nil, ErrNoOpenCall
	}
	task, err := m.client.CreateTask(ctx, m.Current.ID, name, status)
	if err != nil {
		return nil, err
	}
	m.Current.Tasks = append(m.Current.Tasks, *task)
	m.Tasks = append([]domain.Task{*task}, m.Tasks...)
	m.touch()
	return task, nil
}

// UpdateTask edits a task of the open call
func (m *Mirror) UpdateTask(ctx context.Context, taskID string, req api.UpdateTaskRequest) (*domain.Task, error) {
	if m.Current == nil {
		return nil, ErrNoOpenCall
	}
	task, err := m.client.UpdateTask(ctx, taskID, req)
	if err != nil {
		return nil, err
	}
	replace := func(tasks []domain.Task) {
		for i := range tasks {
			if tasks[i].ID == task.ID {
				tasks[i] = *task
			}
		}
	}
	replace(m.Current.Tasks)
	replace(m.Tasks)
	m.touch()
	return task, nil
}

// RemoveTask deletes a task of the open call
func (m *Mirror) RemoveTask(ctx context.Context, taskID string) error {
	if m.Current == nil {
		return ErrNoOpenCall
	}
	if err := m.client.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	drop := func(t domain.Task) bool { return t.ID == taskID }
	m.Current.Tasks = slices.DeleteFunc(m.Current.Tasks, drop)
	m.Tasks = slices.DeleteFunc(m.Tasks, drop)
	m.touch()
	return nil
}

// SetTags replaces the tag set of the open call
func (m *Mirror) SetTags(ctx context.Context, tagIDs []string) error {
	if m.Current == nil {
		return ErrNoOpenCall
	}
	if tagIDs == nil {
		tagIDs = []string{}
	}
	if _, err := m.client.UpdateCall(ctx, m.Current.ID, api.UpdateCallRequest{Tags: &tagIDs}); err != nil {
		return err
	}
	m.Current.Tags = slices.Clone(tagIDs)
	m.touch()
	return nil
}

// AddTag links one more tag to the open call. Already linked tags are a no-op.
func (m *Mirror) AddTag(ctx context.Context, tagID string) error {
	if m.Current == nil {
		return ErrNoOpenCall
	}
	if slices.Contains(m.Current.Tags, tagID) {
		return nil
	}
	return m.SetTags(ctx, append(slices.Clone(m.Current.Tags), tagID))
}

// RemoveTag unlinks a tag from the open call
func (m *Mirror) RemoveTag(ctx context.Context, tagID string) error {
	if m.Current == nil {
		return ErrNoOpenCall
	}
	kept := slices.DeleteFunc(slices.Clone(m.Current.Tags), func(id string) bool { return id == tagID })
	return m.SetTags(ctx, kept)
}

// CreateTag adds a tag at its sorted place in the tag list
func (m *Mirror) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	tag, err := m.client.CreateTag(ctx, name)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(m.Tags, func(t domain.Tag) bool { return compareTags(*tag, t) < 0 })
	if i < 0 {
		i = len(m.Tags)
	}
	m.Tags = slices.Insert(m.Tags, i, *tag)
	return tag, nil
}

// RenameTag renames a tag in place
func (m *Mirror) RenameTag(ctx context.Context, id, name string) (*domain.Tag, error) {
	tag, err := m.client.RenameTag(ctx, id, name)
	if err != nil {
		return nil, err
	}
	for i := range m.Tags {
		if m.Tags[i].ID == id {
			m.Tags[i] = *tag
		}
	}
	slices.SortFunc(m.Tags, compareTags)
	return tag, nil
}

// DeleteTag drops a tag from the tag list. Calls keep their links.
func (m *Mirror) DeleteTag(ctx context.Context, id string) error {
	if err := m.client.DeleteTag(ctx, id); err != nil {
		return err
	}
	m.Tags = slices.DeleteFunc(m.Tags, func(t domain.Tag) bool { return t.ID == id })
	return nil
}

// touch stamps the open call as just updated and moves it to the top of Calls
func (m *Mirror) touch() {
	m.Current.UpdatedAt = m.now()
	m.promote(m.Current.Call)
}

func (m *Mirror) promote(call domain.Call) {
	rest := slices.DeleteFunc(m.Calls, func(c domain.Call) bool { return c.ID == call.ID })
	m.Calls = append([]domain.Call{call}, rest...)
}

// compareTags orders tags the way the server lists them: by name ignoring case, then id
func compareTags(a, b domain.Tag) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
