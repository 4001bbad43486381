package model

import (
	"time"

	"github.com/google/uuid"
)

// Lead status enum values. Converted and Dead are terminal.
const (
	LeadStatusNew       = "New"
	LeadStatusContacted = "Contacted"
	LeadStatusQualified = "Qualified"
	LeadStatusConverted = "Converted"
	LeadStatusDead      = "Dead"
)

// Lead is an unqualified prospect. Conversion fans it out into an Account,
// a Contact, and a Deal in one transaction, after which the lead is terminal:
// converting twice is an error, not a no-op.
type Lead struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName            string     `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName             string     `gorm:"type:varchar(255);not null" json:"last_name"`
	Email                string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone                string     `gorm:"type:varchar(50)" json:"phone"`
	Company              string     `gorm:"type:varchar(255)" json:"company"`
	Status               string     `gorm:"type:varchar(20);not null;default:New;index" json:"status"`
	Source               string     `gorm:"type:varchar(255)" json:"source"`
	OwnerID              *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Owner                *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	ConvertedAt          *time.Time `json:"converted_at"`
	ConvertedToContactID *uuid.UUID `gorm:"type:uuid" json:"converted_to_contact_id"`
	ConvertedToAccountID *uuid.UUID `gorm:"type:uuid" json:"converted_to_account_id"`
	ConvertedToDealID    *uuid.UUID `gorm:"type:uuid" json:"converted_to_deal_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// FullName returns "<first> <last>", the fallback identity used when a lead
// has no company.
func (l *Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}
