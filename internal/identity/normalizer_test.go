package identity

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeMapsDirectoryAttributes(t *testing.T) {
	n := NewNormalizer(AttributeNames{})

	p, err := n.Normalize(Assertion{
		Subject:      "  jdoe ",
		SessionIndex: "idx-1",
		Attributes: map[string]any{
			"mail":        "jdoe@example.com",
			"cn":          "John Doe",
			"deptId":      "D100",
			"deptName":    "Metrology",
			"compId":      "ACME",
			"compName":    "Acme Corp",
			"memberOf":    []string{"CN=eng", "CN=ops", "CN=eng"},
			"unrelated":   42,
			"displayName": "",
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.LoginID != "jdoe" {
		t.Fatalf("LoginID = %q, want jdoe", p.LoginID)
	}
	if p.Email != "jdoe@example.com" || p.DisplayName != "John Doe" {
		t.Fatalf("unexpected email/name: %+v", p)
	}
	if p.DepartmentCode != "D100" || p.DepartmentName != "Metrology" || p.CompanyCode != "ACME" || p.CompanyName != "Acme Corp" {
		t.Fatalf("unexpected org fields: %+v", p)
	}
	if !reflect.DeepEqual(p.Groups, []string{"CN=eng", "CN=ops"}) {
		t.Fatalf("unexpected groups: %v", p.Groups)
	}
	if p.SessionIndex != "idx-1" {
		t.Fatalf("unexpected session index %q", p.SessionIndex)
	}
}

func TestNormalizeScalarGroupBecomesSingleton(t *testing.T) {
	n := NewNormalizer(AttributeNames{})

	p, err := n.Normalize(Assertion{Subject: "u1", Attributes: map[string]any{"memberOf": "CN=solo"}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !reflect.DeepEqual(p.Groups, []string{"CN=solo"}) {
		t.Fatalf("unexpected groups: %v", p.Groups)
	}

	p, err = n.Normalize(Assertion{Subject: "u1", Attributes: map[string]any{"groups": []any{"a", 7, "b"}}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !reflect.DeepEqual(p.Groups, []string{"a", "b"}) {
		t.Fatalf("unexpected groups: %v", p.Groups)
	}
}

func TestNormalizeMissingOptionalFieldsAreEmpty(t *testing.T) {
	n := NewNormalizer(AttributeNames{})

	p, err := n.Normalize(Assertion{Subject: "u1"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.Email != "" || p.DisplayName != "" || p.CompanyCode != "" || p.DepartmentCode != "" {
		t.Fatalf("expected empty optional fields, got %+v", p)
	}
	if p.Groups == nil || len(p.Groups) != 0 {
		t.Fatalf("expected empty non-nil groups, got %#v", p.Groups)
	}
}

func TestNormalizeFallsBackToLoginAttribute(t *testing.T) {
	n := NewNormalizer(AttributeNames{})

	p, err := n.Normalize(Assertion{Attributes: map[string]any{"sAMAccountName": "jdoe"}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.LoginID != "jdoe" {
		t.Fatalf("LoginID = %q, want jdoe", p.LoginID)
	}
}

func TestNormalizeWithoutSubjectFails(t *testing.T) {
	n := NewNormalizer(AttributeNames{})

	_, err := n.Normalize(Assertion{Attributes: map[string]any{"mail": "x@example.com"}})
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestNormalizeOverrideNamesTakePrecedence(t *testing.T) {
	n := NewNormalizer(AttributeNames{CompanyCode: []string{"urn:org:company"}})

	p, err := n.Normalize(Assertion{Subject: "u1", Attributes: map[string]any{
		"urn:org:company": "OVR",
		"compId":          "DEFAULT",
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if p.CompanyCode != "OVR" {
		t.Fatalf("CompanyCode = %q, want OVR", p.CompanyCode)
	}
}
