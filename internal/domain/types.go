package domain

import "time"

// Tag is a reusable label, many-to-many with calls
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Call is the summary row shown in call lists
type Call struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CallDetail is a call composed with its tag links and owned tasks
type CallDetail struct {
	Call
	Tags  []string `json:"tags"`
	Tasks []Task   `json:"tasks"`
}

// Task is a unit of work owned by exactly one call
type Task struct {
	ID     string     `json:"id"`
	CallID string     `json:"callId"`
	Name   string     `json:"name"`
	Status TaskStatus `json:"status"`
}

// SuggestedTask is a catalog entry offered for calls sharing one of its tags
type SuggestedTask struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}
