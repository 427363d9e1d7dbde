package models

// DefaultPageLimit is the number of tasks requested per page.
const DefaultPageLimit = 50

// SuggestionSeparator joins task descriptions when they are handed from the
// task list to the add flow as a single route parameter.
const SuggestionSeparator = "|||"

// Task represents a time-boxed activity owned by a single user.
// ID, UserID and Timestamp are fixed at creation; only Description,
// StartTime and EndTime change afterwards.
type Task struct {
	ID          string `yaml:"id" json:"id" bson:"_id"`
	UserID      string `yaml:"user_id" json:"userId" bson:"userId"`
	Description string `yaml:"description" json:"description" bson:"description"`
	Timestamp   string `yaml:"timestamp" json:"timestamp" bson:"timestamp"`
	StartTime   string `yaml:"start_time" json:"startTime" bson:"startTime"`
	EndTime     string `yaml:"end_time" json:"endTime" bson:"endTime"`
}

// TaskQuery selects one page of a user's tasks, newest first.
// After is the timestamp cursor; an empty After starts at the newest task.
type TaskQuery struct {
	UserID string
	After  string
	Limit  int
}

// TaskFields holds the mutable fields of a task.
type TaskFields struct {
	Description string
	StartTime   string
	EndTime     string
}
