package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
	"github.com/noah-isme/intern-dashboard-api/pkg/filelock"
)

type noteFixture struct {
	dir      string
	csvPath  string
	jsonPath string
	repo     *repository.NoteFileRepository
}

func newNoteFixture(t *testing.T) noteFixture {
	t.Helper()
	dir := t.TempDir()
	f := noteFixture{
		dir:      dir,
		csvPath:  filepath.Join(dir, "intern_notes.csv"),
		jsonPath: filepath.Join(dir, "intern_notes.json"),
	}
	repo, err := repository.NewNoteFileRepository(repository.NoteFileRepositoryParams{
		CSVPath:          f.csvPath,
		JSONPath:         f.jsonPath,
		SchemaValidation: true,
	})
	require.NoError(t, err)
	f.repo = repo
	return f
}

func (f noteFixture) service(t *testing.T) *NoteService {
	t.Helper()
	lock, err := filelock.New(filepath.Join(f.dir, "intern_notes.json.lock"))
	require.NoError(t, err)
	svc := NewNoteService(NoteServiceParams{Store: f.repo, Lock: lock, Metrics: NewMetricsService()})
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

type failingNoteStore struct {
	snapshot repository.NoteSnapshot
	writes   int
}

func (s *failingNoteStore) Read() (repository.NoteSnapshot, error) { return s.snapshot, nil }

func (s *failingNoteStore) Write(map[string]string) error {
	s.writes++
	return errors.New("disk full")
}

func TestNoteServiceLoadWithoutFilesIsEmpty(t *testing.T) {
	svc := newNoteFixture(t).service(t)

	assert.Empty(t, svc.List())
	_, ok := svc.Get("1")
	assert.False(t, ok)
	assert.Equal(t, "", svc.Text("1"))
}

func TestNoteServiceSaveSurvivesReload(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()
	svc := f.service(t)

	saved, err := svc.Save(ctx, "7", "good progress")
	require.NoError(t, err)
	assert.Equal(t, models.NoteRecord{InternID: "7", Note: "good progress"}, saved)

	reloaded := f.service(t)
	rec, ok := reloaded.Get("7")
	require.True(t, ok)
	assert.Equal(t, "good progress", rec.Note)

	snap, err := f.repo.Read()
	require.NoError(t, err)
	assert.Equal(t, snap.JSON, snap.CSV)
}

func TestNoteServiceUpsertIsIdempotent(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()
	svc := f.service(t)

	require.NoError(t, svc.Upsert("3", "same"))
	require.NoError(t, svc.Persist(ctx))
	first, err := os.ReadFile(f.jsonPath)
	require.NoError(t, err)

	require.NoError(t, svc.Upsert("3", "same"))
	require.NoError(t, svc.Persist(ctx))
	second, err := os.ReadFile(f.jsonPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, svc.List(), 1)
}

func TestNoteServiceUpsertReplacesText(t *testing.T) {
	svc := newNoteFixture(t).service(t)

	require.NoError(t, svc.Upsert("3.0", "first"))
	require.NoError(t, svc.Upsert("3", "second"))

	assert.Equal(t, []models.NoteRecord{{InternID: "3", Note: "second"}}, svc.List())
}

func TestNoteServiceListOrdersNumerically(t *testing.T) {
	svc := newNoteFixture(t).service(t)
	for _, id := range []string{"10", "2", "1"} {
		require.NoError(t, svc.Upsert(id, "n"+id))
	}

	list := svc.List()
	require.Len(t, list, 3)
	assert.Equal(t, "1", list[0].InternID)
	assert.Equal(t, "2", list[1].InternID)
	assert.Equal(t, "10", list[2].InternID)
}

func TestNoteServiceLoadPrefersJSONOnDisagreement(t *testing.T) {
	f := newNoteFixture(t)
	require.NoError(t, os.WriteFile(f.jsonPath, []byte(`{"1": "from json", "2": "only json"}`), 0o644))
	require.NoError(t, os.WriteFile(f.csvPath, []byte("Intern ID,Note\n1,from csv\n3,only csv\n"), 0o644))

	svc := f.service(t)

	assert.Equal(t, map[string]string{"1": "from json", "2": "only json"}, svc.Snapshot())

	result, err := svc.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Consistent)
	assert.Equal(t, []string{"2"}, result.MissingFromCSV)
	assert.Equal(t, []string{"3"}, result.MissingFromJSON)
	assert.Equal(t, []string{"1"}, result.TextMismatch)
}

func TestNoteServiceRecoversFromCSVWhenJSONMissing(t *testing.T) {
	f := newNoteFixture(t)
	require.NoError(t, os.WriteFile(f.csvPath, []byte("Intern ID,Note\n4,recovered\n"), 0o644))

	svc := f.service(t)

	assert.Equal(t, "recovered", svc.Text("4"))

	_, err := svc.Save(context.Background(), "5", "new")
	require.NoError(t, err)
	result, err := svc.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Consistent)
	assert.Equal(t, 2, result.JSONCount)
}

func TestNoteServiceFailedSaveKeepsPriorState(t *testing.T) {
	store := &failingNoteStore{snapshot: repository.NoteSnapshot{
		JSON:        map[string]string{"1": "before"},
		CSV:         map[string]string{"1": "before"},
		JSONPresent: true,
		CSVPresent:  true,
	}}
	svc := NewNoteService(NoteServiceParams{Store: store})
	require.NoError(t, svc.Load(context.Background()))

	_, err := svc.Save(context.Background(), "1", "after")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotesPersist.Code, appErr.Code)
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, "before", svc.Text("1"))
}

func TestNoteServiceFailedSaveLeavesFilesIntact(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "intern_notes.json")
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	repo, err := repository.NewNoteFileRepository(repository.NoteFileRepositoryParams{
		CSVPath:  filepath.Join(blocker, "intern_notes.csv"),
		JSONPath: jsonPath,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"1": "before"}`), 0o644))

	svc := NewNoteService(NoteServiceParams{Store: repo})
	require.NoError(t, svc.Upsert("1", "before"))

	_, err = svc.Save(context.Background(), "1", "after")
	require.Error(t, err)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": "before"}`, string(raw))
	assert.Equal(t, "before", svc.Text("1"))

	// A later retry against a writable location regenerates both files.
	ok := newNoteFixture(t)
	retry := NewNoteService(NoteServiceParams{Store: ok.repo})
	require.NoError(t, retry.Upsert("1", svc.Text("1")))
	require.NoError(t, retry.Persist(context.Background()))
	snap, err := ok.repo.Read()
	require.NoError(t, err)
	assert.Equal(t, snap.JSON, snap.CSV)
}

func TestNoteServiceFailedTableRenameIsNotResurrected(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()
	svc := f.service(t)
	_, err := svc.Save(ctx, "1", "before")
	require.NoError(t, err)

	require.NoError(t, os.Remove(f.csvPath))
	require.NoError(t, os.MkdirAll(filepath.Join(f.csvPath, "occupied"), 0o755))

	_, err = svc.Save(ctx, "1", "after")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotesPersist.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "before", svc.Text("1"))

	restarted := NewNoteService(NoteServiceParams{Store: f.repo})
	require.NoError(t, restarted.Load(ctx))
	assert.Equal(t, "before", restarted.Text("1"))
}

func TestNoteServiceNormalisesLineEndings(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()
	svc := f.service(t)

	saved, err := svc.Save(ctx, "7", "line one\r\nline two\rline three")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\nline three", saved.Note)

	result, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, result.Consistent)

	reloaded := f.service(t)
	assert.Equal(t, saved.Note, reloaded.Text("7"))
}

func TestNoteServiceRejectsInvalidUTF8(t *testing.T) {
	f := newNoteFixture(t)
	svc := f.service(t)

	_, err := svc.Save(context.Background(), "8", "bad \xff byte")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Error(t, svc.Upsert("8", "bad \xff byte"))

	_, ok := svc.Get("8")
	assert.False(t, ok)
	_, err = os.Stat(f.jsonPath)
	assert.True(t, os.IsNotExist(err))
}

func TestNoteServiceRejectsEmptyID(t *testing.T) {
	svc := newNoteFixture(t).service(t)

	_, err := svc.Save(context.Background(), "  ", "text")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Error(t, svc.Upsert("", "text"))
}

func TestNoteServiceConcurrentSavesKeepEveryNote(t *testing.T) {
	f := newNoteFixture(t)
	svc := f.service(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := svc.Save(ctx, fmt.Sprint(id), fmt.Sprintf("note %d", id))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, svc.List(), 20)
	snap, err := f.repo.Read()
	require.NoError(t, err)
	assert.Len(t, snap.JSON, 20)
	assert.Equal(t, snap.JSON, snap.CSV)
}

func TestNoteServiceExport(t *testing.T) {
	svc := newNoteFixture(t).service(t)
	require.NoError(t, svc.Upsert("2", "b"))
	require.NoError(t, svc.Upsert("1", "a"))

	csvBytes, err := svc.Export(models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Intern ID,Note\n1,a\n2,b\n", string(csvBytes))

	jsonBytes, err := svc.Export(models.ExportFormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"a","2":"b"}`, string(jsonBytes))

	_, err = svc.Export(models.ExportFormatPDF)
	assert.Error(t, err)
}

func TestParseNoteExportFormat(t *testing.T) {
	f, err := ParseNoteExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, f)

	f, err = ParseNoteExportFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatJSON, f)

	_, err = ParseNoteExportFormat("xml")
	assert.Error(t, err)
}
