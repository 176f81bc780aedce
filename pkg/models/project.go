package models

import "time"

// Project is a film, series or commercial being cast
type Project struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	ProjectType string    `json:"project_type" db:"project_type"`
	Status      string    `json:"status" db:"status"`
	Genre       string    `json:"genre" db:"genre"`
	Description string    `json:"description" db:"description"`
	CompanyID   *int64    `json:"company_id,omitempty" db:"company_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (p Project) SearchValue(key string) string {
	switch key {
	case "title":
		return p.Title
	case "project_type":
		return p.ProjectType
	case "status":
		return p.Status
	case "genre":
		return p.Genre
	case "description":
		return p.Description
	}
	return ""
}
