// Package identity turns federated assertions into principals and records logins.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAuthenticationFailed indicates an assertion without a usable subject.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Assertion is the raw attribute set delivered by a federation binding.
// Attribute values may be a string, a []string, a []any of strings, or nil.
type Assertion struct {
	Subject      string
	SessionIndex string
	Attributes   map[string]any
}

// Principal is the canonical identity derived from an assertion.
type Principal struct {
	LoginID        string
	Email          string
	DisplayName    string
	DepartmentCode string
	DepartmentName string
	CompanyCode    string
	CompanyName    string
	Groups         []string
	SessionIndex   string
}

// AttributeNames lists, per principal field, the assertion attributes consulted in order.
type AttributeNames struct {
	LoginID        []string
	Email          []string
	DisplayName    []string
	Groups         []string
	DepartmentCode []string
	DepartmentName []string
	CompanyCode    []string
	CompanyName    []string
}

// DefaultAttributeNames matches the directory attributes published by the corporate IdP.
func DefaultAttributeNames() AttributeNames {
	return AttributeNames{
		LoginID:        []string{"sAMAccountName", "uid"},
		Email:          []string{"email", "mail"},
		DisplayName:    []string{"displayName", "cn"},
		Groups:         []string{"memberOf", "groups"},
		DepartmentCode: []string{"deptId", "department"},
		DepartmentName: []string{"deptName", "departmentName"},
		CompanyCode:    []string{"compId", "companyCode"},
		CompanyName:    []string{"compName", "companyName"},
	}
}

// Merge returns names where every non-empty field of override is tried before the default.
func (n AttributeNames) Merge(override AttributeNames) AttributeNames {
	prepend := func(first, rest []string) []string {
		if len(first) == 0 {
			return rest
		}
		out := make([]string, 0, len(first)+len(rest))
		out = append(out, first...)
		return append(out, rest...)
	}
	return AttributeNames{
		LoginID:        prepend(override.LoginID, n.LoginID),
		Email:          prepend(override.Email, n.Email),
		DisplayName:    prepend(override.DisplayName, n.DisplayName),
		Groups:         prepend(override.Groups, n.Groups),
		DepartmentCode: prepend(override.DepartmentCode, n.DepartmentCode),
		DepartmentName: prepend(override.DepartmentName, n.DepartmentName),
		CompanyCode:    prepend(override.CompanyCode, n.CompanyCode),
		CompanyName:    prepend(override.CompanyName, n.CompanyName),
	}
}

// Normalizer maps assertions to principals. It performs no I/O.
type Normalizer struct {
	names AttributeNames
}

// NewNormalizer builds a Normalizer using names in front of the defaults.
func NewNormalizer(names AttributeNames) *Normalizer {
	return &Normalizer{names: DefaultAttributeNames().Merge(names)}
}

// Normalize derives a Principal. The subject wins over login-id attributes.
func (n *Normalizer) Normalize(a Assertion) (Principal, error) {
	loginID := strings.TrimSpace(a.Subject)
	if loginID == "" {
		loginID = n.first(a, n.names.LoginID)
	}
	if loginID == "" {
		return Principal{}, fmt.Errorf("%w: assertion has no subject identifier", ErrAuthenticationFailed)
	}

	var groups []string
	for _, name := range n.names.Groups {
		if values := stringValues(a.Attributes[name]); len(values) > 0 {
			groups = values
			break
		}
	}

	return Principal{
		LoginID:        loginID,
		Email:          n.first(a, n.names.Email),
		DisplayName:    n.first(a, n.names.DisplayName),
		DepartmentCode: n.first(a, n.names.DepartmentCode),
		DepartmentName: n.first(a, n.names.DepartmentName),
		CompanyCode:    n.first(a, n.names.CompanyCode),
		CompanyName:    n.first(a, n.names.CompanyName),
		Groups:         uniqueStrings(groups),
		SessionIndex:   strings.TrimSpace(a.SessionIndex),
	}, nil
}

// first returns the first non-empty value among the named attributes.
func (n *Normalizer) first(a Assertion, names []string) string {
	for _, name := range names {
		for _, value := range stringValues(a.Attributes[name]) {
			if value != "" {
				return value
			}
		}
	}
	return ""
}

// stringValues coerces a claim into trimmed strings.
func stringValues(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return nil
	}
}

// uniqueStrings drops duplicates while keeping first-seen order.
func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
