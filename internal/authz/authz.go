// Package authz evaluates whether a principal may perform a named action.
// A principal is authorized iff it is active and its role's permission set
// contains the literal action string or the global wildcard "*".
package authz

import (
	"fmt"

	"crm-backend/internal/model"
	"crm-backend/pkg/apperror"
)

// Known action strings. Call sites use these constants instead of raw
// literals; the stored permission sets remain flat string arrays.
const (
	ActionContactsRead   = "contacts.read"
	ActionContactsCreate = "contacts.create"
	ActionContactsUpdate = "contacts.update"
	ActionContactsDelete = "contacts.delete"

	ActionAccountsRead   = "accounts.read"
	ActionAccountsCreate = "accounts.create"
	ActionAccountsUpdate = "accounts.update"
	ActionAccountsDelete = "accounts.delete"

	ActionDealsRead   = "deals.read"
	ActionDealsCreate = "deals.create"
	ActionDealsUpdate = "deals.update"
	ActionDealsDelete = "deals.delete"
	ActionDealsMove   = "deals.move"

	ActionLeadsRead    = "leads.read"
	ActionLeadsCreate  = "leads.create"
	ActionLeadsUpdate  = "leads.update"
	ActionLeadsDelete  = "leads.delete"
	ActionLeadsConvert = "leads.convert"

	ActionNotesRead   = "notes.read"
	ActionNotesCreate = "notes.create"
	ActionNotesUpdate = "notes.update"
	ActionNotesDelete = "notes.delete"

	ActionActivitiesRead   = "activities.read"
	ActionActivitiesCreate = "activities.create"
	ActionActivitiesUpdate = "activities.update"

	ActionPipelinesManage = "pipelines.manage"
	ActionRolesManage     = "roles.manage"
	ActionUsersManage     = "users.manage"
)

// Authorize checks the principal against a single action. The active check
// runs first: an inactive principal fails with ErrInactiveAccount no matter
// what its role grants. Callers must run this before touching the store.
func Authorize(user *model.User, action string) error {
	if user == nil {
		return apperror.ErrUnauthenticated
	}
	if !user.IsActive {
		return apperror.ErrInactiveAccount
	}
	if user.Role == nil || !user.Role.HasPermission(action) {
		return fmt.Errorf("%w: missing permission %q", apperror.ErrForbidden, action)
	}
	return nil
}

// UpdateActionFor maps an entity type to its resource-specific update
// permission, used by ownership reassignment.
func UpdateActionFor(entityType string) (string, error) {
	switch entityType {
	case model.RelatedToContact:
		return ActionContactsUpdate, nil
	case model.RelatedToAccount:
		return ActionAccountsUpdate, nil
	case model.RelatedToDeal:
		return ActionDealsUpdate, nil
	case model.RelatedToLead:
		return ActionLeadsUpdate, nil
	default:
		return "", fmt.Errorf("%w: unknown entity type %q", apperror.ErrValidation, entityType)
	}
}
