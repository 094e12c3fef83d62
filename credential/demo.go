package credential

import "github.com/xraph/keeper/principal"

// DemoSecret is the shared secret of every Demo account.
const DemoSecret = "password"

// Demo returns the marketplace's built-in accounts, one per role.
func Demo() *Static {
	return MustNewStatic(
		Entry{
			Principal: principal.Principal{
				ID:            "prin_01jb8x6c2zf3q9v0a1b2c3d4e5",
				DisplayName:   "Admin User",
				ContactHandle: "admin@hawkly.io",
				Role:          principal.RoleAdmin,
				Permissions: principal.NewPermissionSet(
					"admin.access", "users.manage", "audits.manage", "settings.manage", "analytics.view",
				),
			},
			Secret: DemoSecret,
		},
		Entry{
			Principal: principal.Principal{
				ID:            "prin_01jb8x6c2zf3q9v0a1b2c3d4e6",
				DisplayName:   "Auditor User",
				ContactHandle: "auditor@hawkly.io",
				Role:          principal.RoleAuditor,
				Permissions:   principal.NewPermissionSet("audits.view", "audits.submit", "findings.write"),
			},
			Secret: DemoSecret,
		},
		Entry{
			Principal: principal.Principal{
				ID:            "prin_01jb8x6c2zf3q9v0a1b2c3d4e7",
				DisplayName:   "Project Owner",
				ContactHandle: "project@hawkly.io",
				Role:          principal.RoleProjectOwner,
				Permissions:   principal.NewPermissionSet("projects.manage", "audits.request", "audits.view"),
			},
			Secret: DemoSecret,
		},
		Entry{
			Principal: principal.Principal{
				ID:            "prin_01jb8x6c2zf3q9v0a1b2c3d4e8",
				DisplayName:   "Service Provider",
				ContactHandle: "provider@hawkly.io",
				Role:          principal.RoleServiceProvider,
				Permissions:   principal.NewPermissionSet("services.manage", "services.publish"),
			},
			Secret: DemoSecret,
		},
		Entry{
			Principal: principal.Principal{
				ID:            "prin_01jb8x6c2zf3q9v0a1b2c3d4e9",
				DisplayName:   "Guest User",
				ContactHandle: "guest@hawkly.io",
				Role:          principal.RoleGuest,
				Permissions:   principal.NewPermissionSet("marketplace.browse"),
			},
			Secret: DemoSecret,
		},
	)
}
