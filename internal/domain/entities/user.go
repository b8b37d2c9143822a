package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is an organization member. Assignee resolution matches emails
// case-insensitively against this table and never creates users.
type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	Email          string    `json:"email" gorm:"type:varchar(255);not null;index"`
	Name           string    `json:"name,omitempty" gorm:"type:varchar(255)"`
	Role           string    `json:"role,omitempty" gorm:"type:varchar(50)"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
