package model

import (
	"time"

	"github.com/google/uuid"
)

// Account is a business organization that contacts and deals attach to.
type Account struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null;index" json:"name"`
	Industry  string     `gorm:"type:varchar(255)" json:"industry"`
	Website   string     `gorm:"type:varchar(255)" json:"website"`
	Phone     string     `gorm:"type:varchar(50)" json:"phone"`
	Email     string     `gorm:"type:varchar(255)" json:"email"`
	Address   string     `gorm:"type:text" json:"address"`
	OwnerID   *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Owner     *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
