package overrides

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ozolsandis/peoplebook-backend/internal/data/repos/testutil"
	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
)

const testContent = "Pietiekami garš apraksta teksts par šo personu."

func TestOverrideRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewOverrideRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, "andrejs-osokins", "Andrejs Osokins", testContent, "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PersonSlug != "andrejs-osokins" || created.Content != testContent {
		t.Fatalf("Create: unexpected row: %+v", created)
	}

	_, err = repo.Create(ctx, tx, "andrejs-osokins", "Andrejs Osokins", testContent, "admin")
	if !errors.Is(err, pkgerrors.ErrDuplicateSlug) {
		t.Fatalf("Create duplicate: expected ErrDuplicateSlug, got %v", err)
	}

	found, err := repo.FindBySlug(ctx, tx, "andrejs-osokins")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("FindBySlug: wrong row: %+v", found)
	}

	_, err = repo.FindBySlug(ctx, tx, "nav-tads")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("FindBySlug missing: expected ErrNotFound, got %v", err)
	}

	updated, err := repo.Update(ctx, tx, "andrejs-osokins", "Jauns saturs pēc labojuma.", "editor")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "Jauns saturs pēc labojuma." || updated.UpdatedBy != "editor" {
		t.Fatalf("Update: unexpected row: %+v", updated)
	}

	_, err = repo.Update(ctx, tx, "nav-tads", "saturs", "editor")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Update missing: expected ErrNotFound, got %v", err)
	}

	count, err := repo.Count(ctx, tx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count: expected 1, got %d", count)
	}

	if _, err := repo.Create(ctx, tx, "elina-braslina", "Elīna Brasliņa", "Māksliniece un ilustratore no Rīgas.", "admin"); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	all, err := repo.GetAll(ctx, tx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 || all[0].PersonSlug != "andrejs-osokins" {
		t.Fatalf("GetAll: unexpected rows: %+v", all)
	}

	results, err := repo.Search(ctx, tx, "ilustratore")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].PersonSlug != "elina-braslina" {
		t.Fatalf("Search: unexpected rows: %+v", results)
	}

	if err := repo.Delete(ctx, tx, "elina-braslina"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, tx, "elina-braslina"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Delete missing: expected ErrNotFound, got %v", err)
	}
}

func TestMigrationRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewMigrationRunRepo(db, testutil.Logger(t))
	ctx := context.Background()

	_, err := repo.Latest(ctx, tx)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Latest empty: expected ErrNotFound, got %v", err)
	}

	run, err := repo.Create(ctx, tx, &domain.MigrationRun{
		Total:      3,
		Successful: 2,
		Skipped:    1,
		Errors:     datatypes.JSON([]byte("[]")),
		RanBy:      "system",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if run.ID == uuid.Nil {
		t.Fatalf("Create: missing ID")
	}

	latest, err := repo.Latest(ctx, tx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Total != 3 || latest.Successful != 2 || latest.Skipped != 1 {
		t.Fatalf("Latest: unexpected row: %+v", latest)
	}
}
