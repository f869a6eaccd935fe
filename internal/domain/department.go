package domain

import "time"

// Department represents an organizational unit that owns categories.
type Department struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Categories  []Category `json:"categories"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Category labels the subject area of a complaint.
type Category struct {
	ID           string `json:"id"`
	DepartmentID string `json:"departmentId"`
	Name         string `json:"name"`
}
