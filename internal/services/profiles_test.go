package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ozolsandis/peoplebook-backend/internal/data/repos/overrides"
	"github.com/ozolsandis/peoplebook-backend/internal/data/repos/testutil"
	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	"github.com/ozolsandis/peoplebook-backend/internal/people"
	"github.com/ozolsandis/peoplebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
)

type staticSource struct {
	records []*domain.SubjectRecord
}

func (s *staticSource) Scan(ctx context.Context) ([]*domain.SubjectRecord, error) {
	return s.records, nil
}

func fileRecord(slug, name string) *domain.SubjectRecord {
	text := "Pietiekami garš biogrāfijas teksts par " + name + ", kas droši pārsniedz minimālo garumu."
	return &domain.SubjectRecord{
		Slug: slug,
		Name: name,
		Content: domain.SubjectContent{
			HTML:      "<p>" + text + "</p>",
			Text:      text,
			WordCount: len(strings.Fields(text)),
		},
		Images: []domain.ImageDescriptor{
			{Filename: "01.jpg", Path: "/media/people/" + name + "/images/01.jpg", Order: 0},
		},
		Metadata: domain.SubjectMetadata{
			WordCount:     len(strings.Fields(text)),
			ImageCount:    1,
			HasContent:    true,
			ContentLength: len(text),
		},
	}
}

func newTestService(t *testing.T, tx *gorm.DB, records ...*domain.SubjectRecord) ProfileService {
	t.Helper()
	log := testutil.Logger(t)

	indexService := people.NewService(&staticSource{records: records}, log)
	require.NoError(t, indexService.Initialize(context.Background()))

	overrideRepo := overrides.NewOverrideRepo(tx, log)
	runRepo := overrides.NewMigrationRunRepo(tx, log)
	return NewProfileService(tx, log, overrideRepo, runRepo, indexService)
}

func testDBC(t *testing.T) (dbctx.Context, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	return dbctx.Context{Ctx: context.Background(), Tx: tx}, tx
}

func TestResolutionPrecedence(t *testing.T) {
	dbc, tx := testDBC(t)
	svc := newTestService(t, tx,
		fileRecord("andrejs-osokins", "Andrejs Osokins"),
		fileRecord("elina-braslina", "Elīna Brasliņa"),
	)

	overrideText := "Administratora labotais apraksts.\n\nAr diviem blokiem."
	repo := overrides.NewOverrideRepo(tx, testutil.Logger(t))
	_, err := repo.Create(dbc.Ctx, dbc.Tx, "andrejs-osokins", "Andrejs Osokins", overrideText, "admin")
	require.NoError(t, err)

	// Slug in both sources: text from the override, images from the files.
	profile, err := svc.GetProfile(dbc, "andrejs-osokins")
	require.NoError(t, err)
	require.Equal(t, overrideText, profile.Text)
	require.Equal(t, domain.ProfileSourceDatabase, profile.Source)
	require.Len(t, profile.Images, 1)
	require.Equal(t, "01.jpg", profile.Images[0].Filename)
	require.Contains(t, profile.HTML, "<p>Administratora labotais apraksts.</p>")
	require.Contains(t, profile.HTML, "<p>Ar diviem blokiem.</p>")

	// Slug only in the file source.
	profile, err = svc.GetProfile(dbc, "elina-braslina")
	require.NoError(t, err)
	require.Equal(t, domain.ProfileSourceFile, profile.Source)
	require.Contains(t, profile.Text, "Elīna Brasliņa")

	// Unknown slug.
	_, err = svc.GetProfile(dbc, "nav-tads")
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestOverrideHTMLRendering(t *testing.T) {
	dbc, tx := testDBC(t)
	svc := newTestService(t, tx, fileRecord("andrejs-osokins", "Andrejs Osokins"))

	text := "Rinda viena\nRinda divi\n\nOtrais bloks ar <b>tagiem</b>"
	_, err := svc.UpdateProfile(dbc, "andrejs-osokins", text, "admin")
	require.NoError(t, err)

	profile, err := svc.GetProfile(dbc, "andrejs-osokins")
	require.NoError(t, err)
	require.Contains(t, profile.HTML, "<p>Rinda viena<br>Rinda divi</p>")
	require.Contains(t, profile.HTML, "&lt;b&gt;tagiem&lt;/b&gt;")
}

func TestUpdateProfileSeedsFromIndex(t *testing.T) {
	dbc, tx := testDBC(t)
	svc := newTestService(t, tx, fileRecord("andrejs-osokins", "Andrejs Osokins"))

	profile, err := svc.UpdateProfile(dbc, "andrejs-osokins", "Pavisam jauns apraksts šai personai.", "redaktors")
	require.NoError(t, err)
	require.Equal(t, domain.ProfileSourceDatabase, profile.Source)
	require.Equal(t, "Andrejs Osokins", profile.Name)
	require.Equal(t, "redaktors", profile.UpdatedBy)

	// Second update hits the existing override.
	profile, err = svc.UpdateProfile(dbc, "andrejs-osokins", "Vēlreiz labots apraksts šai personai.", "cits")
	require.NoError(t, err)
	require.Equal(t, "Vēlreiz labots apraksts šai personai.", profile.Text)

	_, err = svc.UpdateProfile(dbc, "nav-tads", "Apraksts nezināmai personai bez ieraksta.", "admin")
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestUpdateProfileContentBounds(t *testing.T) {
	dbc, tx := testDBC(t)
	svc := newTestService(t, tx, fileRecord("andrejs-osokins", "Andrejs Osokins"))

	_, err := svc.UpdateProfile(dbc, "andrejs-osokins", "short", "admin")
	var ve *pkgerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "content_too_short", ve.Reason)

	_, err = svc.UpdateProfile(dbc, "andrejs-osokins", strings.Repeat("x", 50001), "admin")
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "content_too_long", ve.Reason)
}

func TestMigrationIdempotence(t *testing.T) {
	dbc, tx := testDBC(t)
	svc := newTestService(t, tx,
		fileRecord("andrejs-osokins", "Andrejs Osokins"),
		fileRecord("elina-braslina", "Elīna Brasliņa"),
	)

	first, err := svc.MigrateFromFiles(dbc, "system")
	require.NoError(t, err)
	require.Equal(t, 2, first.Total)
	require.Equal(t, 2, first.Successful)
	require.Equal(t, 0, first.Skipped)
	require.Equal(t, 0, first.Failed)

	second, err := svc.MigrateFromFiles(dbc, "system")
	require.NoError(t, err)
	require.Equal(t, 2, second.Total)
	require.Equal(t, 0, second.Successful)
	require.Equal(t, 2, second.Skipped)

	repo := overrides.NewOverrideRepo(tx, testutil.Logger(t))
	count, err := repo.Count(dbc.Ctx, dbc.Tx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestMigrationCollectsItemFailures(t *testing.T) {
	dbc, tx := testDBC(t)

	thin := fileRecord("par-isu", "Par Īsu")
	thin.Content.Text = "īss"

	svc := newTestService(t, tx, fileRecord("andrejs-osokins", "Andrejs Osokins"), thin)

	result, err := svc.MigrateFromFiles(dbc, "system")
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
	require.Equal(t, 1, result.Successful)
	require.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "par-isu", result.Errors[0].Slug)
	require.Contains(t, result.Errors[0].Reason, "content_too_short")
}

func TestAutoMigrationOnFirstRead(t *testing.T) {
	dbc, tx := testDBC(t)
	svc := newTestService(t, tx, fileRecord("andrejs-osokins", "Andrejs Osokins"))

	// First read observes an empty override store and migrates.
	profile, err := svc.GetProfile(dbc, "andrejs-osokins")
	require.NoError(t, err)
	require.Equal(t, domain.ProfileSourceDatabase, profile.Source)

	repo := overrides.NewOverrideRepo(tx, testutil.Logger(t))
	count, err := repo.Count(dbc.Ctx, dbc.Tx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestListProfiles(t *testing.T) {
	dbc, tx := testDBC(t)
	svc := newTestService(t, tx,
		fileRecord("andrejs-osokins", "Andrejs Osokins"),
		fileRecord("elina-braslina", "Elīna Brasliņa"),
	)

	// Seed one override so auto-migration stays out of the way, plus one for
	// a subject that no longer exists on disk.
	repo := overrides.NewOverrideRepo(tx, testutil.Logger(t))
	_, err := repo.Create(dbc.Ctx, dbc.Tx, "elina-braslina", "Elīna Brasliņa", "Labots saturs ilustratorei.", "admin")
	require.NoError(t, err)
	_, err = repo.Create(dbc.Ctx, dbc.Tx, "pazudusi-persona", "Pazudusi Persona", "Saturs personai bez faila.", "admin")
	require.NoError(t, err)

	summaries, err := svc.ListProfiles(dbc)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	bySlug := map[string]domain.ProfileSummary{}
	for _, s := range summaries {
		bySlug[s.Slug] = s
	}
	require.Equal(t, domain.ProfileSourceFile, bySlug["andrejs-osokins"].Source)
	require.Equal(t, "/media/people/Andrejs Osokins/images/01.jpg", bySlug["andrejs-osokins"].MainImage)
	require.Equal(t, domain.ProfileSourceDatabase, bySlug["elina-braslina"].Source)
	require.Equal(t, domain.ProfileSourceDatabase, bySlug["pazudusi-persona"].Source)
	require.Empty(t, bySlug["pazudusi-persona"].MainImage)
}

func TestReadsFailWhileUninitialized(t *testing.T) {
	dbc, tx := testDBC(t)
	log := testutil.Logger(t)

	indexService := people.NewService(&staticSource{}, log)
	overrideRepo := overrides.NewOverrideRepo(tx, log)
	runRepo := overrides.NewMigrationRunRepo(tx, log)
	svc := NewProfileService(tx, log, overrideRepo, runRepo, indexService)

	_, err := svc.GetProfile(dbc, "andrejs-osokins")
	require.ErrorIs(t, err, pkgerrors.ErrServiceUnavailable)

	_, err = svc.ListProfiles(dbc)
	require.ErrorIs(t, err, pkgerrors.ErrServiceUnavailable)

	_, err = svc.UpdateProfile(dbc, "andrejs-osokins", "Saturs, kas netiks saglabāts.", "admin")
	require.ErrorIs(t, err, pkgerrors.ErrServiceUnavailable)
}
