package enums

import (
	"fmt"
	"strings"
)

// AccountRole is the single role tag every account carries.
type AccountRole string

const (
	AccountRoleCustomer AccountRole = "customer"
	AccountRoleStore    AccountRole = "store"
	AccountRoleAdmin    AccountRole = "admin"
)

var validAccountRoles = []AccountRole{
	AccountRoleCustomer,
	AccountRoleStore,
	AccountRoleAdmin,
}

// String implements fmt.Stringer.
func (r AccountRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known AccountRole.
func (r AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// SelfRegistrable reports whether the role may be chosen at sign up.
func (r AccountRole) SelfRegistrable() bool {
	return r == AccountRoleCustomer || r == AccountRoleStore
}

// ParseAccountRole converts raw input into an AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAccountRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
