package model

import "time"

// Session is one recorded attempt at a judge problem. Sessions are immutable
// once written.
type Session struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	OwnerID       string    `json:"-"`
	ProblemID     int       `json:"problemId"`
	Title         string    `json:"title"`
	Tags          []string  `json:"tags"`
	TimeSpent     int       `json:"timeSpent"` // seconds
	SubmittedCode string    `json:"submittedCode"`
	AIFeedback    *string   `json:"aiFeedback,omitempty"`
	IsSuccess     bool      `json:"isSuccess"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SessionInput carries the caller-supplied fields of a new session.
type SessionInput struct {
	ProblemID     int      `json:"problemId"`
	Title         string   `json:"title"`
	Tags          []string `json:"tags"`
	TimeSpent     int      `json:"timeSpent"`
	SubmittedCode string   `json:"submittedCode"`
	AIFeedback    *string  `json:"aiFeedback,omitempty"`
	IsSuccess     bool     `json:"isSuccess"`
}
