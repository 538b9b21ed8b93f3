package repository

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoteRepo(t *testing.T, dir string) *NoteFileRepository {
	t.Helper()
	repo, err := NewNoteFileRepository(NoteFileRepositoryParams{
		CSVPath:          filepath.Join(dir, "intern_notes.csv"),
		JSONPath:         filepath.Join(dir, "intern_notes.json"),
		SchemaValidation: true,
	})
	require.NoError(t, err)
	return repo
}

func TestNoteFileRepositoryReadMissingFiles(t *testing.T) {
	repo := newNoteRepo(t, t.TempDir())

	snap, err := repo.Read()
	require.NoError(t, err)
	assert.False(t, snap.CSVPresent)
	assert.False(t, snap.JSONPresent)
	assert.Empty(t, snap.CSV)
	assert.Empty(t, snap.JSON)
}

func TestNoteFileRepositoryWriteProducesEquivalentFiles(t *testing.T) {
	dir := t.TempDir()
	repo := newNoteRepo(t, dir)
	notes := map[string]string{
		"10": "multi\nline, with \"quotes\"",
		"2":  "good progress",
		"7":  "",
		"x1": "<b>raw</b>",
	}

	require.NoError(t, repo.Write(notes))

	snap, err := repo.Read()
	require.NoError(t, err)
	assert.Equal(t, notes, snap.JSON)
	assert.Equal(t, notes, snap.CSV)

	rawJSON, err := os.ReadFile(filepath.Join(dir, "intern_notes.json"))
	require.NoError(t, err)
	assert.Contains(t, string(rawJSON), "\n    \"10\": ")
	assert.Contains(t, string(rawJSON), "<b>raw</b>")

	file, err := os.Open(filepath.Join(dir, "intern_notes.csv"))
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Intern ID", "Note"}, rows[0])
	assert.Equal(t, []string{"2", "7", "10", "x1"}, []string{rows[1][0], rows[2][0], rows[3][0], rows[4][0]})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestNoteFileRepositoryWriteFailureKeepsPreviousFiles(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	jsonPath := filepath.Join(dir, "intern_notes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"1": "before"}`), 0o644))
	repo, err := NewNoteFileRepository(NoteFileRepositoryParams{
		CSVPath:  filepath.Join(blocker, "intern_notes.csv"),
		JSONPath: jsonPath,
	})
	require.NoError(t, err)

	require.Error(t, repo.Write(map[string]string{"1": "after"}))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": "before"}`, string(data))
}

func TestNoteFileRepositoryRestoresDocumentWhenTableRenameFails(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "intern_notes.csv")
	require.NoError(t, os.MkdirAll(filepath.Join(csvPath, "occupied"), 0o755))
	jsonPath := filepath.Join(dir, "intern_notes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"1": "before"}`), 0o644))
	repo, err := NewNoteFileRepository(NoteFileRepositoryParams{CSVPath: csvPath, JSONPath: jsonPath})
	require.NoError(t, err)

	require.Error(t, repo.Write(map[string]string{"1": "after"}))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": "before"}`, string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestNoteFileRepositoryRemovesNewDocumentWhenTableRenameFails(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "intern_notes.csv")
	require.NoError(t, os.MkdirAll(filepath.Join(csvPath, "occupied"), 0o755))
	jsonPath := filepath.Join(dir, "intern_notes.json")
	repo, err := NewNoteFileRepository(NoteFileRepositoryParams{CSVPath: csvPath, JSONPath: jsonPath})
	require.NoError(t, err)

	require.Error(t, repo.Write(map[string]string{"1": "after"}))

	_, err = os.Stat(jsonPath)
	assert.True(t, os.IsNotExist(err))
}

func TestNoteFileRepositoryNormalisesDocumentKeys(t *testing.T) {
	dir := t.TempDir()
	repo := newNoteRepo(t, dir)
	doc := `{"7.0": "from spreadsheet", " 8 ": "padded", "9.0": "alias", "9": "exact"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intern_notes.json"), []byte(doc), 0o644))

	snap, err := repo.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"7": "from spreadsheet", "8": "padded", "9": "exact"}, snap.JSON)
}

func TestNoteFileRepositorySchemaValidation(t *testing.T) {
	dir := t.TempDir()
	repo := newNoteRepo(t, dir)
	jsonPath := filepath.Join(dir, "intern_notes.json")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"1": 5, "2": ["a"]}`), 0o644))
	_, err := repo.Read()
	var schemaErr *NoteSchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Len(t, schemaErr.Issues, 2)

	require.NoError(t, os.WriteFile(jsonPath, []byte(`[1, 2]`), 0o644))
	_, err = repo.Read()
	require.ErrorAs(t, err, &schemaErr)

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"1": `), 0o644))
	_, err = repo.Read()
	require.Error(t, err)
}

func TestNoteFileRepositoryReadsLegacyCSV(t *testing.T) {
	dir := t.TempDir()
	repo := newNoteRepo(t, dir)
	legacy := "Intern ID,Note\n3.0,first\n 4 ,\n,orphan\n3,second\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intern_notes.csv"), []byte(legacy), 0o644))

	snap, err := repo.Read()
	require.NoError(t, err)
	assert.True(t, snap.CSVPresent)
	assert.Equal(t, map[string]string{"3": "second", "4": ""}, snap.CSV)
}

func TestNoteFileRepositoryRejectsCSVWithoutColumns(t *testing.T) {
	dir := t.TempDir()
	repo := newNoteRepo(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intern_notes.csv"), []byte("id,text\n1,a\n"), 0o644))

	_, err := repo.Read()
	require.ErrorContains(t, err, "columns")
}

func TestEncodeNotesJSONEmpty(t *testing.T) {
	data, err := EncodeNotesJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(string(data)))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Empty(t, decoded)
}

func TestNormalizeNoteID(t *testing.T) {
	assert.Equal(t, "12", NormalizeNoteID(" 12.0 "))
	assert.Equal(t, "ab.0", NormalizeNoteID("ab.0"))
	assert.Equal(t, "7", NormalizeNoteID("7"))
}
