package models

import "strings"

// Role names stored on admin assignments and guest grants.
const (
	// RoleAdmin grants full administration.
	RoleAdmin = "ADMIN"
	// RoleManager grants guest-request administration.
	RoleManager = "MANAGER"
	// RoleGuest is the default role for guest grants.
	RoleGuest = "GUEST"
	// RoleUser is the role of whitelisted principals without a role source.
	RoleUser = "USER"
)

// Y/N flags used by reference tables.
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

// LoginKey folds a login id into the key shared by all identity-linked tables.
func LoginKey(loginID string) string {
	return strings.ToLower(strings.TrimSpace(loginID))
}

// NormalizeRole upper-cases a role name.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}
