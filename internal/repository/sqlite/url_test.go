package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/model"
	"github.com/yutosuda/url-shortener/internal/repository"
	"github.com/yutosuda/url-shortener/internal/shortcode"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Benefits:
// - Fast: no disk I/O
// - Isolated: each test gets its own database
// - Clean: automatically destroyed when the connection closes
//
// newTestDB is a "test helper" — a function used only in tests to reduce
// boilerplate. The `t.Helper()` call tells Go's test framework to report
// errors at the CALLER's line number, not inside this function.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestDBWithCodes builds a test database over a custom code generator.
// Shrinking the alphabet to a single character forces every draw to collide.
func newTestDBWithCodes(t *testing.T, codes *shortcode.Generator) *DB {
	t.Helper()
	db, err := New(":memory:", codes)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestURL creates a URL and fails the test on error.
func createTestURL(t *testing.T, db *DB, originalURL string) *model.ShortURL {
	t.Helper()
	u := &model.ShortURL{OriginalURL: originalURL}
	if err := db.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create test URL: %v", err)
	}
	return u
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateURL(t *testing.T) {
	db := newTestDB(t)

	u := &model.ShortURL{OriginalURL: "https://example.com/page"}
	if err := db.Create(context.Background(), u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the URL was modified in-place (pointer receiver!)
	if u.ID == 0 {
		t.Error("Create() did not set u.ID")
	}
	if u.ShortCode == "" {
		t.Error("Create() did not set u.ShortCode")
	}
	if len(u.ShortCode) != shortcode.DefaultLength {
		t.Errorf("ShortCode length = %d, want %d", len(u.ShortCode), shortcode.DefaultLength)
	}
	if u.ClickCount != 0 {
		t.Errorf("ClickCount = %d, want 0", u.ClickCount)
	}
	if u.CreatedAt.IsZero() {
		t.Error("Create() did not set u.CreatedAt")
	}
}

func TestCreateURL_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)

	original := createTestURL(t, db, "https://example.com/persist")

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.OriginalURL != original.OriginalURL {
		t.Errorf("OriginalURL = %q, want %q", found.OriginalURL, original.OriginalURL)
	}
	if found.ShortCode != original.ShortCode {
		t.Errorf("ShortCode = %q, want %q", found.ShortCode, original.ShortCode)
	}
}

func TestCreateURL_ExhaustedCodeSpace(t *testing.T) {
	// A single-character alphabet with length 1 has exactly one possible
	// code. The first create takes it; the second must run out of retries.
	db := newTestDBWithCodes(t, shortcode.NewWithAlphabet("a", 1))

	first := createTestURL(t, db, "https://example.com/one")
	if first.ShortCode != "a" {
		t.Fatalf("ShortCode = %q, want %q", first.ShortCode, "a")
	}

	err := db.Create(context.Background(), &model.ShortURL{OriginalURL: "https://example.com/two"})
	if !errors.Is(err, shortcode.ErrCodeSpaceExhausted) {
		t.Fatalf("Create() error = %v, want ErrCodeSpaceExhausted", err)
	}
}

func TestCreateURL_ConcurrentCodesAreUnique(t *testing.T) {
	db := newTestDB(t)
	const workers = 20

	var wg sync.WaitGroup
	codes := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := &model.ShortURL{OriginalURL: "https://example.com/concurrent"}
			if err := db.Create(context.Background(), u); err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}
			codes <- u.ShortCode
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Fatalf("duplicate short code %q", code)
		}
		seen[code] = true
	}
	if len(seen) != workers {
		t.Errorf("unique codes = %d, want %d", len(seen), workers)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetByCode(t *testing.T) {
	db := newTestDB(t)
	u := createTestURL(t, db, "https://example.com/by-code")

	found, err := db.GetByCode(context.Background(), u.ShortCode)
	if err != nil {
		t.Fatalf("GetByCode() error = %v", err)
	}
	if found.ID != u.ID {
		t.Errorf("ID = %d, want %d", found.ID, u.ID)
	}
}

func TestGetByCode_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByCode(context.Background(), "nosuchcd")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByCode() error = %v, want ErrNotFound", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), 99999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListURLs_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	// Same-second inserts: the id DESC tiebreak must keep order stable.
	first := createTestURL(t, db, "https://example.com/1")
	second := createTestURL(t, db, "https://example.com/2")
	third := createTestURL(t, db, "https://example.com/3")

	urls, total, err := db.List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(urls) != 3 {
		t.Fatalf("len(urls) = %d, want 3", len(urls))
	}

	wantOrder := []int64{third.ID, second.ID, first.ID}
	for i, want := range wantOrder {
		if urls[i].ID != want {
			t.Errorf("urls[%d].ID = %d, want %d", i, urls[i].ID, want)
		}
	}
}

func TestListURLs_Paging(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		createTestURL(t, db, "https://example.com/page")
	}

	urls, total, err := db.List(context.Background(), repository.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5 (total ignores paging)", total)
	}
	if len(urls) != 2 {
		t.Errorf("len(urls) = %d, want 2", len(urls))
	}
}

func TestListURLs_LimitClamped(t *testing.T) {
	db := newTestDB(t)
	createTestURL(t, db, "https://example.com/clamp")

	// Absurd limits must not error — they get clamped.
	if _, _, err := db.List(context.Background(), repository.ListOptions{Limit: 100000}); err != nil {
		t.Errorf("List() with huge limit error = %v", err)
	}
	if _, _, err := db.List(context.Background(), repository.ListOptions{Limit: -5, Offset: -5}); err != nil {
		t.Errorf("List() with negative options error = %v", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteURL(t *testing.T) {
	db := newTestDB(t)
	u := createTestURL(t, db, "https://example.com/doomed")

	found, err := db.Delete(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !found {
		t.Fatal("Delete() = false, want true for an existing URL")
	}

	if _, err := db.GetByID(context.Background(), u.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteURL_Missing(t *testing.T) {
	db := newTestDB(t)

	found, err := db.Delete(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if found {
		t.Error("Delete() = true for a nonexistent id, want false")
	}
}

func TestDeleteURL_CascadesClicks(t *testing.T) {
	db := newTestDB(t)
	u := createTestURL(t, db, "https://example.com/cascade")

	for i := 0; i < 3; i++ {
		if err := db.Record(context.Background(), &model.Click{URLID: u.ID}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if _, err := db.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	remaining, err := db.CountAll(context.Background())
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if remaining != 0 {
		t.Errorf("clicks remaining after delete = %d, want 0", remaining)
	}
}

// =========================================================================
// TOP TESTS
// =========================================================================

func TestTopURLs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	quiet := createTestURL(t, db, "https://example.com/quiet")
	busy := createTestURL(t, db, "https://example.com/busy")
	medium := createTestURL(t, db, "https://example.com/medium")

	clickTimes := map[int64]int{busy.ID: 3, medium.ID: 1}
	for id, n := range clickTimes {
		for i := 0; i < n; i++ {
			if err := db.Record(ctx, &model.Click{URLID: id}); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}
	}

	top, err := db.Top(ctx, 2)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].ID != busy.ID {
		t.Errorf("top[0].ID = %d, want %d", top[0].ID, busy.ID)
	}
	if top[1].ID != medium.ID {
		t.Errorf("top[1].ID = %d, want %d", top[1].ID, medium.ID)
	}
	_ = quiet
}

func TestTopURLs_TieBreaksOnID(t *testing.T) {
	db := newTestDB(t)

	a := createTestURL(t, db, "https://example.com/a")
	b := createTestURL(t, db, "https://example.com/b")

	// Both have zero clicks; the lower id must come first.
	top, err := db.Top(context.Background(), 5)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].ID != a.ID || top[1].ID != b.ID {
		t.Errorf("order = [%d %d], want [%d %d]", top[0].ID, top[1].ID, a.ID, b.ID)
	}
}
