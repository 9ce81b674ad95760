package domain

import "time"

// Result is the outcome of one diagnostics run
type Result struct {
	Subject   string    `json:"subject"`
	Deceased  bool      `json:"deceased"`
	CheckedAt time.Time `json:"checked_at"`
}

// Hit is one search result handed to the oracle as evidence
type Hit struct {
	Title   string
	Link    string
	Snippet string
}
