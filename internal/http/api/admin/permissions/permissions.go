// Package permissions lists the admin API routes and the roles allowed to call them.
package permissions

import (
	"strings"

	"github.com/itm-platform/itm-access/internal/models"
)

// Definition describes one admin route.
type Definition struct {
	Key    string
	Method string
	Path   string
	Label  string
	Module string
	// Roles lists the roles allowed besides ADMIN, which may call every route.
	Roles []string
}

// Key formats a permission key.
func Key(method, path string) string {
	return strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimSpace(path)
}

var definitions = buildDefinitions()

func buildDefinitions() []Definition {
	manager := []string{models.RoleManager}
	defs := []Definition{
		{Method: "GET", Path: "/v0/admin/permissions", Label: "List Permissions", Module: "System", Roles: manager},

		{Method: "GET", Path: "/v0/admin/users", Label: "List Users", Module: "Users", Roles: manager},

		{Method: "GET", Path: "/v0/admin/admins", Label: "List Admins", Module: "Admins"},
		{Method: "PUT", Path: "/v0/admin/admins/:loginId", Label: "Assign Admin Role", Module: "Admins"},
		{Method: "DELETE", Path: "/v0/admin/admins/:loginId", Label: "Remove Admin Role", Module: "Admins"},

		{Method: "GET", Path: "/v0/admin/access-codes", Label: "List Access Codes", Module: "Access Codes", Roles: manager},
		{Method: "PUT", Path: "/v0/admin/access-codes/:kind/:code", Label: "Save Access Code", Module: "Access Codes"},
		{Method: "DELETE", Path: "/v0/admin/access-codes/:kind/:code", Label: "Delete Access Code", Module: "Access Codes"},

		{Method: "GET", Path: "/v0/admin/guests", Label: "List Guest Grants", Module: "Guests", Roles: manager},
		{Method: "PUT", Path: "/v0/admin/guests/:loginId", Label: "Grant Guest Access", Module: "Guests", Roles: manager},
		{Method: "DELETE", Path: "/v0/admin/guests/:loginId", Label: "Revoke Guest Access", Module: "Guests", Roles: manager},

		{Method: "GET", Path: "/v0/admin/guest-requests", Label: "List Guest Requests", Module: "Guest Requests", Roles: manager},
		{Method: "GET", Path: "/v0/admin/guest-requests/:reqId", Label: "View Guest Request", Module: "Guest Requests", Roles: manager},
		{Method: "GET", Path: "/v0/admin/guest-requests/:reqId/events", Label: "View Guest Request History", Module: "Guest Requests", Roles: manager},
		{Method: "POST", Path: "/v0/admin/guest-requests/:reqId/approve", Label: "Approve Guest Request", Module: "Guest Requests", Roles: manager},
		{Method: "POST", Path: "/v0/admin/guest-requests/:reqId/reject", Label: "Reject Guest Request", Module: "Guest Requests", Roles: manager},

		{Method: "GET", Path: "/v0/admin/sites", Label: "List Sites", Module: "Sites", Roles: manager},
		{Method: "POST", Path: "/v0/admin/sites", Label: "Create Site", Module: "Sites"},
		{Method: "PATCH", Path: "/v0/admin/sites/:id", Label: "Update Site", Module: "Sites"},

		{Method: "GET", Path: "/v0/admin/settings", Label: "List Settings", Module: "Settings"},
		{Method: "PUT", Path: "/v0/admin/settings/:key", Label: "Save Setting", Module: "Settings"},
	}
	for i := range defs {
		defs[i].Key = Key(defs[i].Method, defs[i].Path)
	}
	return defs
}

// Definitions returns a copy of all permission definitions.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// DefinitionMap indexes the definitions by key.
func DefinitionMap() map[string]Definition {
	out := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		out[def.Key] = def
	}
	return out
}

// Allows reports whether role may call the route described by def.
func (def Definition) Allows(role string) bool {
	role = models.NormalizeRole(role)
	if role == models.RoleAdmin {
		return true
	}
	if role == "" {
		return false
	}
	for _, allowed := range def.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}
