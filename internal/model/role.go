package model

import (
	"time"

	"github.com/google/uuid"
)

// PermissionWildcard grants every action when present in a role's permission set.
const PermissionWildcard = "*"

// Role represents a user role holding a flat set of permission strings.
// Each permission is either "<resource>.<action>" (e.g. "deals.move") or
// the wildcard "*". Prefix wildcards like "deals.*" are not recognized.
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Permissions []string  `gorm:"type:jsonb;serializer:json;not null" json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasPermission reports whether the role grants the exact action or carries
// the global wildcard. No prefix matching.
func (r *Role) HasPermission(action string) bool {
	for _, p := range r.Permissions {
		if p == action || p == PermissionWildcard {
			return true
		}
	}
	return false
}
