package models

import (
	"strings"
	"time"
)

// PersonType is the role a person plays in the casting database
type PersonType string

const (
	PersonTypeArtist   PersonType = "artist"
	PersonTypeContact  PersonType = "contact"
	PersonTypeDirector PersonType = "director"
	PersonTypeProducer PersonType = "producer"
)

// Person is an artist or a contact person
type Person struct {
	ID         int64      `json:"id" db:"id"`
	PersonType PersonType `json:"person_type" db:"person_type"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	MiddleName string     `json:"middle_name" db:"middle_name"`
	Email      string     `json:"email" db:"email"`
	Phone      string     `json:"phone" db:"phone"`
	Telegram   string     `json:"telegram" db:"telegram"`
	CompanyID  *int64     `json:"company_id,omitempty" db:"company_id"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins the name parts in display order
func (p Person) FullName() string {
	return strings.Join(strings.Fields(p.LastName+" "+p.FirstName+" "+p.MiddleName), " ")
}

func (p Person) SearchValue(key string) string {
	switch key {
	case "first_name":
		return p.FirstName
	case "last_name":
		return p.LastName
	case "middle_name":
		return p.MiddleName
	case "full_name":
		return p.FullName()
	case "email":
		return p.Email
	case "phone":
		return p.Phone
	case "telegram":
		return p.Telegram
	}
	return ""
}
