package models

import "time"

// Organization partitions the document corpus. Ranking never compares
// documents across organizations within a single query.
type Organization struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrganizationInput is the input for creating an organization.
type OrganizationInput struct {
	Name string `json:"name"`
}
