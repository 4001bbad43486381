package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity type enum constants.
const (
	ActivityCall    = "call"
	ActivityEmail   = "email"
	ActivityMeeting = "meeting"
)

// Activity is a logged interaction (call, email, meeting) with a contact,
// optionally linked to a deal.
type Activity struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type        string     `gorm:"type:varchar(20);not null" json:"type"`
	Subject     string     `gorm:"type:varchar(255);not null" json:"subject"`
	Description string     `gorm:"type:text" json:"description"`
	Date        time.Time  `gorm:"not null" json:"date"`
	ContactID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact     *Contact   `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	DealID      *uuid.UUID `gorm:"type:uuid;index" json:"deal_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
