package model

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a person, optionally attached to an account. Deleting a contact
// cascades its deals.
type Contact struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null;index" json:"name"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string     `gorm:"type:varchar(50)" json:"phone"`
	Company   string     `gorm:"type:varchar(255);index" json:"company"`
	Notes     string     `gorm:"type:text" json:"notes"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	Account   *Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	OwnerID   *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Owner     *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Deals     []Deal     `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"deals,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
