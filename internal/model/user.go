package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated CRM principal. The user's effective
// permission set is always its role's permission set at check time.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(255);not null" json:"last_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	Role         *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns "<first> <last>".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
