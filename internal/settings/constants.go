package settings

// DB config keys and defaults for settings.
const (
	// DefaultGuestRoleKey is the role granted by manual guest grants without an explicit role.
	DefaultGuestRoleKey = "DEFAULT_GUEST_ROLE"
	// DefaultGuestRole is the fallback for DefaultGuestRoleKey.
	DefaultGuestRole = "GUEST"
	// DefaultGuestDaysKey is the validity in days used when an approval omits validUntil.
	DefaultGuestDaysKey = "DEFAULT_GUEST_DAYS"
	// DefaultGuestDays is the fallback for DefaultGuestDaysKey.
	DefaultGuestDays = 30
)
