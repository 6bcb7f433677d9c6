package block

import (
	"context"
	"testing"
	"time"

	"github.com/notebook-buddy/backend/internal/data/repos/testutil"
	types "github.com/notebook-buddy/backend/internal/domain"
)

func TestBlockRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewBlockRepo(db, testutil.Logger(t))
	ctx := context.Background()

	base := time.Now().UTC()
	blocks := []*types.TextBlock{
		{ProjectID: "proj-b", BlockID: "b2", Content: "second", Order: 1, CreatedAt: base, UpdatedAt: base},
		{ProjectID: "proj-b", BlockID: "b1", Content: "first", Order: 0, CreatedAt: base.Add(time.Millisecond), UpdatedAt: base},
		{ProjectID: "proj-b", BlockID: "b3", Content: "tie", Order: 1, CreatedAt: base.Add(2 * time.Millisecond), UpdatedAt: base},
	}
	for _, b := range blocks {
		if err := repo.Save(ctx, tx, b); err != nil {
			t.Fatalf("Save %s: %v", b.BlockID, err)
		}
	}

	got, err := repo.ListByProject(ctx, tx, "proj-b")
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListByProject: expected 3 blocks, got %d", len(got))
	}
	// Ascending by order, ties by insertion time: b1 (0), b2 (1), b3 (1).
	wantIDs := []string{"b1", "b2", "b3"}
	for i, want := range wantIDs {
		if got[i].BlockID != want {
			t.Fatalf("ListByProject order: position %d = %s, want %s", i, got[i].BlockID, want)
		}
	}

	// Re-save updates content and order but keeps the row count stable.
	if err := repo.Save(ctx, tx, &types.TextBlock{
		ProjectID: "proj-b", BlockID: "b1", Content: "first edited", Order: 5,
		CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Save (upsert): %v", err)
	}
	got, err = repo.ListByProject(ctx, tx, "proj-b")
	if err != nil {
		t.Fatalf("ListByProject after upsert: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("upsert created a duplicate row: %d blocks", len(got))
	}
	last := got[len(got)-1]
	if last.BlockID != "b1" || last.Content != "first edited" || last.Order != 5 {
		t.Fatalf("upsert did not update block: %+v", last)
	}

	if err := repo.Delete(ctx, tx, "proj-b", "b2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting again is a no-op, not an error.
	if err := repo.Delete(ctx, tx, "proj-b", "b2"); err != nil {
		t.Fatalf("Delete (missing): %v", err)
	}

	got, err = repo.ListByProject(ctx, tx, "proj-b")
	if err != nil {
		t.Fatalf("ListByProject after delete: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks after delete, got %d", len(got))
	}

	got, err = repo.ListByProject(ctx, tx, "no-such-project")
	if err != nil {
		t.Fatalf("ListByProject (empty): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ListByProject (empty): expected none, got %d", len(got))
	}
}
