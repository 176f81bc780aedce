package models

import "time"

// Company is a production company, agency or studio
type Company struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	CompanyType string    `json:"company_type" db:"company_type"`
	Description string    `json:"description" db:"description"`
	Website     string    `json:"website" db:"website"`
	Email       string    `json:"email" db:"email"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (c Company) SearchValue(key string) string {
	switch key {
	case "name":
		return c.Name
	case "company_type":
		return c.CompanyType
	case "description":
		return c.Description
	case "website":
		return c.Website
	case "email":
		return c.Email
	}
	return ""
}
