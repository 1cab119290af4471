package model

import "time"

// Resource is a deletable record held by the sandbox.
type Resource struct {
	ID         string     `json:"-" bson:"_id,omitempty"`
	ResourceID string     `json:"id" bson:"resource_id"`
	Locked     bool       `json:"locked,omitempty" bson:"locked"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

// SeedResult reports how many of the requested ids were newly created.
type SeedResult struct {
	Created int `json:"created"`
	Total   int `json:"total"`
}

// ErrorResponse for consistent error handling
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
