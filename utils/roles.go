package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// roleAliases maps stored role strings to the two roles the API exposes.
// Anything not listed (Rep, Manager, ...) is a plain user.
var roleAliases = map[string]string{
	"admin":         RoleAdmin,
	"superadmin":    RoleAdmin,
	"administrator": RoleAdmin,
}

var roleFolder = cases.Fold()

// NormalizeRole collapses a stored role to admin or user.
func NormalizeRole(stored string) string {
	key := roleFolder.String(strings.TrimSpace(stored))
	if role, ok := roleAliases[key]; ok {
		return role
	}
	return RoleUser
}

// IsAdminRole reports whether the stored role normalizes to admin.
func IsAdminRole(stored string) bool {
	return NormalizeRole(stored) == RoleAdmin
}

// TitleCase is used for report headings.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
