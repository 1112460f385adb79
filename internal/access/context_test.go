package access

import (
	"context"
	"errors"
	"testing"
)

func TestSaveContextRejectsUnknownPair(t *testing.T) {
	conn := openAccessTestDB(t)
	seedSdwt(t, conn, "FAB1", "PHOTO")
	store := NewContextStore(conn)

	if _, err := store.SaveContext(context.Background(), "user1", "FAB1", "ETCH"); !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext, got %v", err)
	}
	if _, err := store.SaveContext(context.Background(), "user1", "", "PHOTO"); !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext for empty site, got %v", err)
	}
	last, err := store.LastContext(context.Background(), "user1")
	if err != nil || last != nil {
		t.Fatalf("failed save must not store a context, got %+v err=%v", last, err)
	}
}

func TestSaveContextLastWriteWins(t *testing.T) {
	conn := openAccessTestDB(t)
	photo := seedSdwt(t, conn, "FAB1", "PHOTO")
	etch := seedSdwt(t, conn, "FAB2", "ETCH")
	store := NewContextStore(conn)

	saved, err := store.SaveContext(context.Background(), "User1", "FAB1", "PHOTO")
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if saved.LastSdwtID != photo.ID || saved.Sdwt == nil || saved.Sdwt.Site != "FAB1" {
		t.Fatalf("unexpected saved context %+v", saved)
	}
	if _, err = store.SaveContext(context.Background(), "user1", "FAB2", "ETCH"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	last, err := store.LastContext(context.Background(), "USER1")
	if err != nil {
		t.Fatalf("last context: %v", err)
	}
	if last == nil || last.ID != etch.ID || last.Sdwt != "ETCH" {
		t.Fatalf("last context = %+v, want FAB2/ETCH", last)
	}
}

func TestSitesListsSelectableRows(t *testing.T) {
	conn := openAccessTestDB(t)
	store := NewContextStore(conn)
	if _, err := store.CreateSite(context.Background(), "FAB2", "ETCH", ""); err != nil {
		t.Fatalf("create site: %v", err)
	}
	if _, err := store.CreateSite(context.Background(), "FAB1", "PHOTO", "litho"); err != nil {
		t.Fatalf("create site: %v", err)
	}
	if _, err := store.CreateSite(context.Background(), "", "X", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	sites, err := store.Sites(context.Background())
	if err != nil {
		t.Fatalf("sites: %v", err)
	}
	if len(sites) != 2 || sites[0].Site != "FAB1" || sites[1].Site != "FAB2" {
		t.Fatalf("unexpected sites %+v", sites)
	}
}
