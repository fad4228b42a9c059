package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"attempt:create",
		"attempt:view-own",
	},
	"lecturer": {
		"quiz:view",
		"quiz:create",
		"quiz:edit",
		"attempt:view-all",
		"results:view",
		"results:export",
	},
	"admin": {
		"*", // everything
	},
}
