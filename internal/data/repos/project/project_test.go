package project

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/notebook-buddy/backend/internal/data/repos/testutil"
	types "github.com/notebook-buddy/backend/internal/domain"
)

func TestProjectRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewProjectRepo(db, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()

	p := &types.Project{
		ID:          "proj-1",
		UserID:      userID,
		Title:       "First draft",
		EditedAt:    "2026-08-28T10:00:00Z",
		Blocks:      datatypes.JSON([]byte(`[]`)),
		DateCreated: now,
		UpdatedAt:   now,
	}
	if err := repo.Save(ctx, tx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, "proj-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Title != "First draft" {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	// Re-saving the same id replaces the whole record.
	p.Title = "Second draft"
	p.AssistantID = "asst_123"
	if err := repo.Save(ctx, tx, p); err != nil {
		t.Fatalf("Save (upsert): %v", err)
	}

	got, err = repo.GetByID(ctx, tx, "proj-1")
	if err != nil {
		t.Fatalf("GetByID after upsert: %v", err)
	}
	if got.Title != "Second draft" || got.AssistantID != "asst_123" {
		t.Fatalf("upsert did not replace record: %+v", got)
	}

	byUser, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(byUser) != 1 || byUser[0].ID != "proj-1" {
		t.Fatalf("GetByUserID: unexpected result: %+v", byUser)
	}

	byUser, err = repo.GetByUserID(ctx, tx, uuid.New())
	if err != nil {
		t.Fatalf("GetByUserID (other user): %v", err)
	}
	if len(byUser) != 0 {
		t.Fatalf("GetByUserID (other user): expected none, got %d", len(byUser))
	}

	all, err := repo.ScanAll(ctx, tx)
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	if len(all) == 0 {
		t.Fatalf("ScanAll: expected at least 1 project")
	}

	missing, err := repo.GetByID(ctx, tx, "no-such-project")
	if err != nil {
		t.Fatalf("GetByID (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID (missing): expected nil, got %+v", missing)
	}

	if err := repo.Delete(ctx, tx, "proj-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, "proj-1")
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID after delete: expected nil, got %+v", got)
	}
}
