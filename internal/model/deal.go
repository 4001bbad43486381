package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Legacy deal stage enum values. Kept in sync informationally once a deal is
// bound to a pipeline stage, but not authoritative after StageID is set.
const (
	DealStageProspecting   = "prospecting"
	DealStageQualification = "qualification"
	DealStageProposal      = "proposal"
	DealStageNegotiation   = "negotiation"
	DealStageClosedWon     = "closed_won"
	DealStageClosedLost    = "closed_lost"
)

// Deal is a sales opportunity linked to a contact and optionally an account.
// Invariant: when StageID is set, PipelineID equals that stage's pipeline —
// the move operation derives the pipeline from the target stage.
type Deal struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title      string          `gorm:"type:varchar(255);not null" json:"title"`
	Value      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0" json:"value"`
	Stage      string          `gorm:"type:varchar(20);not null;default:prospecting" json:"stage"`
	ContactID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact    *Contact        `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	AccountID  *uuid.UUID      `gorm:"type:uuid;index" json:"account_id"`
	Account    *Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	PipelineID *uuid.UUID      `gorm:"type:uuid;index" json:"pipeline_id"`
	StageID    *uuid.UUID      `gorm:"type:uuid;index" json:"stage_id"`
	OwnerID    *uuid.UUID      `gorm:"type:uuid;index" json:"owner_id"`
	Owner      *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// StageChange is an immutable audit record of a deal moving between stages.
// FromStageID is null for the first recorded move (deal entered a pipeline).
// Rows are never updated or deleted; per deal they form an ordered history
// by ChangedAt.
type StageChange struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DealID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"deal_id"`
	FromStageID *uuid.UUID `gorm:"type:uuid" json:"from_stage_id"`
	ToStageID   uuid.UUID  `gorm:"type:uuid;not null" json:"to_stage_id"`
	ChangedAt   time.Time  `gorm:"not null;index" json:"changed_at"`
	ChangedBy   *uuid.UUID `gorm:"type:uuid" json:"changed_by"`
}
