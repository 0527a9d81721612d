package rbac

// Default policy for the drill platform. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"drill:view",
		"answer:submit",
		"attempt:view-own",
		"progression:view-own",
		"notifications:view",
	},
	"teacher": {
		"drill:create",
		"drill:view",
		"drill:delete_own",
		"enrollment:manage",
		"attempt:view-all",
		"progression:view-all",
		"progression:rebuild",
		"users:bulk_upsert",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
