package access

import (
	"strings"

	"github.com/itm-platform/itm-access/internal/models"
)

// Policy configures the session resolver. It is passed in at construction so tests can
// inject fixtures without shared state.
type Policy struct {
	// AdminGroups grants ADMIN to members of any listed group when no admin row exists.
	AdminGroups []string
	// FailClosed denies a login when any gate lookup fails instead of treating the
	// failed check as negative.
	FailClosed bool
}

// groupRole returns ADMIN when groups intersect the configured admin groups.
func (p Policy) groupRole(groups []string) string {
	if len(p.AdminGroups) == 0 || len(groups) == 0 {
		return ""
	}
	for _, admin := range p.AdminGroups {
		admin = strings.TrimSpace(admin)
		if admin == "" {
			continue
		}
		for _, group := range groups {
			if strings.EqualFold(admin, group) {
				return models.RoleAdmin
			}
		}
	}
	return ""
}
