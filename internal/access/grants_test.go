package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itm-platform/itm-access/internal/models"
)

func TestActiveGrantIgnoresExpiredRows(t *testing.T) {
	conn := openAccessTestDB(t)
	store := NewGrantStore(conn)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if _, err := store.UpsertGrant(context.Background(), GrantInput{LoginID: "Visitor", ValidUntil: now.Add(-time.Minute)}); err != nil {
		t.Fatalf("upsert expired: %v", err)
	}
	grant, err := store.ActiveGrant(context.Background(), "visitor")
	if err != nil {
		t.Fatalf("active grant: %v", err)
	}
	if grant != nil {
		t.Fatalf("expired grant must be inert, got %+v", grant)
	}

	var count int64
	if errCount := conn.Model(&models.GuestGrant{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expired grant must not be deleted, count=%d", count)
	}
}

func TestActiveGrantBoundaryIsInclusive(t *testing.T) {
	conn := openAccessTestDB(t)
	store := NewGrantStore(conn)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if _, err := store.UpsertGrant(context.Background(), GrantInput{LoginID: "edge", Role: "guest", ValidUntil: now}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	grant, err := store.ActiveGrant(context.Background(), "EDGE")
	if err != nil || grant == nil {
		t.Fatalf("expected active grant at validUntil == now, got %+v err=%v", grant, err)
	}
	if grant.GrantedRole != models.RoleGuest {
		t.Fatalf("GrantedRole = %q, want GUEST", grant.GrantedRole)
	}
}

func TestUpsertGrantReplacesWholeRow(t *testing.T) {
	conn := openAccessTestDB(t)
	store := NewGrantStore(conn)
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 3, 0)

	store.now = func() time.Time { return first }
	_, err := store.UpsertGrant(context.Background(), GrantInput{
		LoginID:        "Visitor",
		Role:           "MANAGER",
		ValidUntil:     first.AddDate(0, 0, 7),
		DepartmentCode: "OLD",
		DepartmentName: "Old Dept",
		Reason:         "first visit",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	store.now = func() time.Time { return second }
	grant, err := store.UpsertGrant(context.Background(), GrantInput{
		LoginID:    "visitor",
		ValidUntil: second.AddDate(0, 0, 30),
		Reason:     "second visit",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if grant.GrantedRole != models.RoleGuest {
		t.Fatalf("GrantedRole = %q, want default GUEST", grant.GrantedRole)
	}
	if grant.DepartmentCode != "" || grant.DepartmentName != "" {
		t.Fatalf("department must be replaced, got %q/%q", grant.DepartmentCode, grant.DepartmentName)
	}
	if grant.Reason != "second visit" {
		t.Fatalf("Reason = %q", grant.Reason)
	}
	if !grant.CreatedAt.Equal(second) {
		t.Fatalf("CreatedAt = %v, want reset to %v", grant.CreatedAt, second)
	}

	rows, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one grant row, got %d", len(rows))
	}
}

func TestUpsertGrantValidatesInput(t *testing.T) {
	store := NewGrantStore(openAccessTestDB(t))
	if _, err := store.UpsertGrant(context.Background(), GrantInput{LoginID: " ", ValidUntil: time.Now()}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty login, got %v", err)
	}
	if _, err := store.UpsertGrant(context.Background(), GrantInput{LoginID: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero validUntil, got %v", err)
	}
}

func TestUpsertGrantRefusesAdministrativeRoles(t *testing.T) {
	conn := openAccessTestDB(t)
	store := NewGrantStore(conn)
	for _, role := range []string{"ADMIN", "manager"} {
		_, err := store.UpsertGrant(context.Background(), GrantInput{LoginID: "elevated", Role: role, ValidUntil: time.Now().Add(time.Hour)})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("role %s: expected ErrInvalidInput, got %v", role, err)
		}
	}
	var count int64
	if errCount := conn.Model(&models.GuestGrant{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("refused grants must not be stored, count=%d", count)
	}
}

func TestDeleteGrant(t *testing.T) {
	store := NewGrantStore(openAccessTestDB(t))
	if _, err := store.UpsertGrant(context.Background(), GrantInput{LoginID: "gone", ValidUntil: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	deleted, err := store.Delete(context.Background(), "GONE")
	if err != nil || !deleted {
		t.Fatalf("delete = %v err=%v", deleted, err)
	}
	deleted, err = store.Delete(context.Background(), "gone")
	if err != nil || deleted {
		t.Fatalf("second delete = %v err=%v", deleted, err)
	}
}
