package model

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline is a named sales process variant owning an ordered list of stages.
// At most one pipeline is flagged as the system-wide default; new deals that
// omit an explicit pipeline/stage are placed into the default pipeline.
type Pipeline struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	IsDefault bool      `gorm:"default:false;index" json:"is_default"`
	Stages    []Stage   `gorm:"foreignKey:PipelineID;constraint:OnDelete:CASCADE" json:"stages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stage is one step of a pipeline. Order defines the position within the
// pipeline (ascending); Probability is a win likelihood in [0,100].
type Stage struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PipelineID  uuid.UUID `gorm:"type:uuid;not null;index" json:"pipeline_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Order       int       `gorm:"column:order;not null" json:"order"`
	Probability int       `gorm:"not null;default:0" json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
