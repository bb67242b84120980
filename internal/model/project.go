package model

import "time"

// Project groups practice sessions. ProblemCount always equals the number of
// sessions recorded against the project; only the session ledger changes it.
type Project struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	Name         string    `json:"name"`
	Language     string    `json:"language"`
	Description  string    `json:"description,omitempty"`
	ProblemCount int       `json:"problemCount"`
	CreatedAt    time.Time `json:"createdAt"`
}
