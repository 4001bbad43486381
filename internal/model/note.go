package model

import (
	"time"

	"github.com/google/uuid"
)

// RelatedToType enum constants for note attachment targets.
const (
	RelatedToContact = "contact"
	RelatedToAccount = "account"
	RelatedToDeal    = "deal"
	RelatedToLead    = "lead"
)

// Note is a free-text record attached to another entity. Ownership
// reassignment appends one as an audit trail entry.
type Note struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	RelatedToType string     `gorm:"type:varchar(20);not null;index" json:"related_to_type"`
	RelatedToID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"related_to_id"`
	AuthorID      *uuid.UUID `gorm:"type:uuid" json:"author_id"`
	Author        *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
