// file: service/role_context.go

package service

import "bizpilot-api/model"

// RoleContext is the caller's authorization snapshot: Roles[i] is the role
// held in BusinessIDs[i]. The slices stay parallel and follow membership
// enumeration order; duplicates are preserved.
type RoleContext struct {
	Roles       []string
	BusinessIDs []string
}

// ExtractRoleContext maps the user's active memberships to a role context.
// The repository already filters to active memberships, so every entry
// contributes. Zero memberships yield empty, non-nil slices.
func ExtractRoleContext(user *model.User) RoleContext {
	roles := make([]string, 0, len(user.BusinessUsers))
	businessIDs := make([]string, 0, len(user.BusinessUsers))
	for _, bu := range user.BusinessUsers {
		roles = append(roles, bu.Role)
		businessIDs = append(businessIDs, bu.BusinessID)
	}
	return RoleContext{Roles: roles, BusinessIDs: businessIDs}
}
