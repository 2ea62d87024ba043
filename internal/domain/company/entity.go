package company

import "time"

type Company struct {
	ID          string
	Email       string
	Name        string
	Description string
	Location    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
