package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tahmid/codevault/internal/apperror"
	"github.com/tahmid/codevault/internal/model"
	"github.com/tahmid/codevault/internal/repository"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Fast (no disk I/O), isolated (each test gets its own database), and clean
// (destroyed when the connection closes).
//
// newTestDB is a test helper. The `t.Helper()` call tells Go's test framework
// to report failures at the CALLER's line number, which keeps failure output
// pointing at the test that broke, not at this function.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestUser creates a user to own snippets — snippets.user_id has a NOT
// NULL foreign key, so every snippet test needs one.
func newTestUser(t *testing.T, db *DB, githubID int64) *model.User {
	t.Helper()
	user := &model.User{GitHubID: githubID, Login: "tester"}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestSnippet(t *testing.T, db *DB, userID, title, code string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		Title:    title,
		Code:     code,
		Language: "python",
		UserID:   userID,
	}
	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)

	snippet := &model.Snippet{
		Title:       "Hello World",
		Code:        "print('hello')",
		Language:    "python",
		Explanation: "## Overview\nPrints a greeting.",
		UserID:      user.ID,
	}

	err := db.Create(context.Background(), snippet)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the snippet was modified in-place (pointer receiver!)
	if snippet.ID == "" {
		t.Error("Create() did not set snippet.ID")
	}
	if snippet.CreatedAt.IsZero() {
		t.Error("Create() did not set snippet.CreatedAt")
	}
	if snippet.UpdatedAt.IsZero() {
		t.Error("Create() did not set snippet.UpdatedAt")
	}
}

func TestCreate_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)

	original := createTestSnippet(t, db, user.ID, "test", "print('hi')")

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Title != original.Title {
		t.Errorf("Title = %q, want %q", found.Title, original.Title)
	}
	if found.Code != original.Code {
		t.Errorf("Code = %q, want %q", found.Code, original.Code)
	}
	if found.Language != "python" {
		t.Errorf("Language = %q, want %q", found.Language, "python")
	}
	if found.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", found.UserID, user.ID)
	}
}

// =========================================================================
// GET BY ID TESTS
// =========================================================================

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)
	created := createTestSnippet(t, db, user.ID, "fetch me", "x = 42")

	found, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.Title != "fetch me" {
		t.Errorf("Title = %q, want %q", found.Title, "fetch me")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")

	// We want our domain NotFound error, not a raw sql.ErrNoRows
	if err == nil {
		t.Fatal("GetByID() should have returned an error for nonexistent ID")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestList_Empty(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)

	snippets, err := db.List(context.Background(), repository.ListOptions{UserID: user.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(snippets) != 0 {
		t.Errorf("List() returned %d snippets, want 0", len(snippets))
	}
}

func TestList_ReturnsOwnSnippets(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)

	createTestSnippet(t, db, user.ID, "first", "a = 1")
	createTestSnippet(t, db, user.ID, "second", "b = 2")
	createTestSnippet(t, db, user.ID, "third", "c = 3")

	snippets, err := db.List(context.Background(), repository.ListOptions{UserID: user.ID, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(snippets) != 3 {
		t.Errorf("List() returned %d snippets, want 3", len(snippets))
	}
}

func TestList_FiltersByOwner(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, 1001)
	bob := newTestUser(t, db, 2002)

	createTestSnippet(t, db, alice.ID, "alice's", "a = 1")
	createTestSnippet(t, db, alice.ID, "also alice's", "a = 2")
	createTestSnippet(t, db, bob.ID, "bob's", "b = 1")

	snippets, err := db.List(context.Background(), repository.ListOptions{UserID: bob.ID, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(snippets) != 1 {
		t.Fatalf("List() returned %d snippets for bob, want 1", len(snippets))
	}
	if snippets[0].Title != "bob's" {
		t.Errorf("Title = %q, want %q", snippets[0].Title, "bob's")
	}
}

func TestList_Pagination(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)

	for i := 0; i < 5; i++ {
		createTestSnippet(t, db, user.ID, "snippet", "code")
	}

	page1, err := db.List(context.Background(), repository.ListOptions{UserID: user.ID, Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List() page 1 error = %v", err)
	}
	if len(page1) != 2 {
		t.Errorf("Page 1: got %d items, want 2", len(page1))
	}

	page2, err := db.List(context.Background(), repository.ListOptions{UserID: user.ID, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() page 2 error = %v", err)
	}
	if len(page2) != 2 {
		t.Errorf("Page 2: got %d items, want 2", len(page2))
	}

	page3, err := db.List(context.Background(), repository.ListOptions{UserID: user.ID, Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List() page 3 error = %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("Page 3: got %d items, want 1", len(page3))
	}

	if page1[0].ID == page2[0].ID {
		t.Error("Page 1 and Page 2 returned the same first snippet")
	}
}

func TestList_DefaultLimit(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)

	for i := 0; i < 25; i++ {
		createTestSnippet(t, db, user.ID, "snippet", "code")
	}

	// No limit specified — should default to 20
	snippets, err := db.List(context.Background(), repository.ListOptions{UserID: user.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 20 {
		t.Errorf("List() default returned %d items, want 20", len(snippets))
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)
	original := createTestSnippet(t, db, user.ID, "original title", "original code")

	original.Title = "updated title"
	original.Code = "updated code"
	original.Explanation = "## Overview\nRegenerated."

	err := db.Update(context.Background(), original)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}

	if found.Title != "updated title" {
		t.Errorf("Title after update = %q, want %q", found.Title, "updated title")
	}
	if found.Code != "updated code" {
		t.Errorf("Code after update = %q, want %q", found.Code, "updated code")
	}
	if found.Explanation != "## Overview\nRegenerated." {
		t.Errorf("Explanation after update = %q, want the regenerated text", found.Explanation)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	snippet := &model.Snippet{ID: "nonexistent", Title: "test", Code: "test"}
	err := db.Update(context.Background(), snippet)

	if err == nil {
		t.Fatal("Update() should have returned an error for nonexistent ID")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1001)
	snippet := createTestSnippet(t, db, user.ID, "to delete", "bye()")

	err := db.Delete(context.Background(), snippet.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = db.GetByID(context.Background(), snippet.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "nonexistent-id")

	if err == nil {
		t.Fatal("Delete() should have returned an error for nonexistent ID")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// FULL CRUD LIFECYCLE TEST
// =========================================================================

// TestFullCRUDLifecycle walks the complete create → read → update → delete
// flow. This kind of "integration" test catches issues the unit tests miss,
// like timestamps not being set or the explanation column not round-tripping.
func TestFullCRUDLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, db, 1001)

	// 1. Create
	snippet := &model.Snippet{
		Title:       "lifecycle test",
		Code:        "print('v1')",
		Language:    "python",
		Explanation: "## Overview\nVersion one.",
		UserID:      user.ID,
	}
	if err := db.Create(ctx, snippet); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 2. Read
	found, err := db.GetByID(ctx, snippet.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Explanation != "## Overview\nVersion one." {
		t.Errorf("Explanation = %q, want the stored text", found.Explanation)
	}

	// 3. List (should contain our snippet)
	all, err := db.List(ctx, repository.ListOptions{UserID: user.ID, Limit: 100})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List returned %d, want 1", len(all))
	}

	// 4. Update
	found.Code = "print('v2')"
	found.Explanation = "## Overview\nVersion two."
	if err := db.Update(ctx, found); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// 5. Verify update
	updated, err := db.GetByID(ctx, snippet.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if updated.Code != "print('v2')" {
		t.Errorf("Code after update = %q, want %q", updated.Code, "print('v2')")
	}

	// 6. Delete
	if err := db.Delete(ctx, snippet.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// 7. Verify deletion
	_, err = db.GetByID(ctx, snippet.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID after delete: error = %v, want ErrNotFound", err)
	}
}
