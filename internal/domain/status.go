package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TaskStatus is the closed set of task states. It crosses the HTTP
// boundary as its ordinal.
type TaskStatus int

const (
	StatusOpen TaskStatus = iota
	StatusInProgress
	StatusCompleted
)

var statusLabels = map[TaskStatus]string{
	StatusOpen:       "Open",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
}

// Valid reports whether s is one of the known states
func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s TaskStatus) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("TaskStatus(%d)", int(s))
}

// ParseTaskStatus converts an ordinal, rejecting anything outside the enumeration
func ParseTaskStatus(ordinal int) (TaskStatus, error) {
	s := TaskStatus(ordinal)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: invalid status value %d", ErrInvalidInput, ordinal)
	}
	return s, nil
}

// ParseTaskStatusName accepts an ordinal ("2") or a name ("completed", "in-progress")
func ParseTaskStatusName(name string) (TaskStatus, error) {
	if n, err := strconv.Atoi(name); err == nil {
		return ParseTaskStatus(n)
	}
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
	for s, label := range statusLabels {
		if strings.ReplaceAll(strings.ToLower(label), " ", "") == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, name)
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(s))
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: status must be an integer", ErrInvalidInput)
	}
	parsed, err := ParseTaskStatus(n)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
