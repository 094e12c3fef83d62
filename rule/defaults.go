package rule

import "github.com/xraph/keeper/principal"

// Defaults returns the marketplace route map: admin console, auditor
// workspace, project and service management, and the shared dashboard.
func Defaults() *Table {
	return MustNewTable(
		Rule{
			Name:                "admin",
			Pattern:             "/admin",
			AllowedRoles:        []principal.Role{principal.RoleAdmin},
			RequiredPermissions: principal.NewPermissionSet("admin.access"),
		},
		Rule{
			Name:         "dashboard",
			Pattern:      "/dashboard",
			AllowedRoles: []principal.Role{principal.RoleAdmin, principal.RoleAuditor, principal.RoleProjectOwner, principal.RoleServiceProvider},
		},
		Rule{
			Name:         "auditor-workspace",
			Pattern:      "/auditor",
			AllowedRoles: []principal.Role{principal.RoleAdmin, principal.RoleAuditor},
		},
		Rule{
			Name:                "audit-submissions",
			Pattern:             "/audits/submit",
			AllowedRoles:        []principal.Role{principal.RoleAuditor},
			RequiredPermissions: principal.NewPermissionSet("audits.submit"),
		},
		Rule{
			Name:         "projects",
			Pattern:      "/projects",
			AllowedRoles: []principal.Role{principal.RoleAdmin, principal.RoleProjectOwner},
		},
		Rule{
			Name:                "request-audit",
			Pattern:             "/request-audit",
			AllowedRoles:        []principal.Role{principal.RoleProjectOwner},
			RequiredPermissions: principal.NewPermissionSet("audits.request"),
		},
		Rule{
			Name:         "services",
			Pattern:      "/services/manage",
			AllowedRoles: []principal.Role{principal.RoleAdmin, principal.RoleServiceProvider},
		},
		Rule{
			Name:         "profile",
			Pattern:      "/profile",
			AllowedRoles: principal.Roles(),
		},
	)
}
