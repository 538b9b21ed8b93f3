package repository

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/noah-isme/intern-dashboard-api/pkg/storage"
)

// Column names of the note table.
const (
	NoteColumnID   = "Intern ID"
	NoteColumnNote = "Note"
)

const noteDocumentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"propertyNames": {"minLength": 1},
	"additionalProperties": {"type": "string"}
}`

// NoteSnapshot is the raw content of both note files as found on disk.
type NoteSnapshot struct {
	CSV         map[string]string
	JSON        map[string]string
	CSVPresent  bool
	JSONPresent bool
}

// NoteSchemaError lists every violation of the note document shape.
type NoteSchemaError struct {
	Path   string
	Issues []string
}

func (e *NoteSchemaError) Error() string {
	return fmt.Sprintf("note document %s is invalid: %s", e.Path, strings.Join(e.Issues, "; "))
}

// NoteFileRepository reads and writes the CSV table and JSON document holding intern notes.
type NoteFileRepository struct {
	csvPath  string
	jsonPath string
	schema   *gojsonschema.Schema
}

// NoteFileRepositoryParams configures NoteFileRepository.
type NoteFileRepositoryParams struct {
	CSVPath          string
	JSONPath         string
	SchemaValidation bool
}

// NewNoteFileRepository constructs the repository, compiling the document schema when enabled.
func NewNoteFileRepository(params NoteFileRepositoryParams) (*NoteFileRepository, error) {
	if params.CSVPath == "" || params.JSONPath == "" {
		return nil, errors.New("note csv and json paths are required")
	}
	repo := &NoteFileRepository{csvPath: params.CSVPath, jsonPath: params.JSONPath}
	if params.SchemaValidation {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(noteDocumentSchema))
		if err != nil {
			return nil, fmt.Errorf("compile note schema: %w", err)
		}
		repo.schema = schema
	}
	return repo, nil
}

// Paths returns the CSV and JSON file locations.
func (r *NoteFileRepository) Paths() (csvPath, jsonPath string) {
	return r.csvPath, r.jsonPath
}

// Read parses both files independently. Missing files are reported as absent, not as errors.
func (r *NoteFileRepository) Read() (NoteSnapshot, error) {
	var snap NoteSnapshot
	var err error
	if snap.JSON, snap.JSONPresent, err = r.readJSON(); err != nil {
		return NoteSnapshot{}, err
	}
	if snap.CSV, snap.CSVPresent, err = r.readCSV(); err != nil {
		return NoteSnapshot{}, err
	}
	return snap, nil
}

// Write replaces both files with notes. Both encodings are staged next to their targets
// before either is renamed, the JSON document first. When the CSV rename fails the previous
// JSON document is restored, so a failed write leaves the prior pair on disk.
func (r *NoteFileRepository) Write(notes map[string]string) error {
	jsonData, err := EncodeNotesJSON(notes)
	if err != nil {
		return err
	}
	csvData, err := EncodeNotesCSV(notes)
	if err != nil {
		return err
	}

	for _, path := range []string{r.jsonPath, r.csvPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("prepare note directory: %w", err)
		}
	}

	previous, err := r.stagePreviousJSON()
	if err != nil {
		return err
	}
	defer previous.Discard()
	stagedJSON, err := storage.Stage(r.jsonPath, jsonData, 0o644)
	if err != nil {
		return err
	}
	defer stagedJSON.Discard()
	stagedCSV, err := storage.Stage(r.csvPath, csvData, 0o644)
	if err != nil {
		return err
	}
	defer stagedCSV.Discard()

	if err := stagedJSON.Commit(); err != nil {
		return err
	}
	if err := stagedCSV.Commit(); err != nil {
		if rerr := r.restoreJSON(previous); rerr != nil {
			return fmt.Errorf("%s is ahead of %s (%v): %w", stagedJSON.Target(), stagedCSV.Target(), rerr, err)
		}
		return err
	}
	return nil
}

// stagePreviousJSON copies the current document next to it so it can be renamed back.
// A nil result means there was no document.
func (r *NoteFileRepository) stagePreviousJSON() (*storage.Staged, error) {
	data, err := os.ReadFile(r.jsonPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read note document: %w", err)
	}
	return storage.Stage(r.jsonPath, data, 0o644)
}

func (r *NoteFileRepository) restoreJSON(previous *storage.Staged) error {
	if previous == nil {
		if err := os.Remove(r.jsonPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove new note document: %w", err)
		}
		return nil
	}
	return previous.Commit()
}

func (r *NoteFileRepository) readJSON() (map[string]string, bool, error) {
	data, err := os.ReadFile(r.jsonPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, false, nil
		}
		return nil, false, fmt.Errorf("read note document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, true, nil
	}
	if r.schema != nil {
		result, err := r.schema.Validate(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, true, fmt.Errorf("parse note document %s: %w", r.jsonPath, err)
		}
		if !result.Valid() {
			issues := make([]string, 0, len(result.Errors()))
			for _, e := range result.Errors() {
				issues = append(issues, e.String())
			}
			return nil, true, &NoteSchemaError{Path: r.jsonPath, Issues: issues}
		}
	}
	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, true, fmt.Errorf("decode note document %s: %w", r.jsonPath, err)
	}
	notes := make(map[string]string, len(raw))
	for key, text := range raw {
		id := NormalizeNoteID(key)
		if id == "" {
			continue
		}
		// an exact key beats a spreadsheet style alias of the same id
		if _, exact := raw[id]; exact && id != key {
			continue
		}
		notes[id] = text
	}
	return notes, true, nil
}

func (r *NoteFileRepository) readCSV() (map[string]string, bool, error) {
	file, err := os.Open(r.csvPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, false, nil
		}
		return nil, false, fmt.Errorf("open note table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, true, fmt.Errorf("read note table %s: %w", r.csvPath, err)
	}
	notes := map[string]string{}
	if len(rows) == 0 {
		return notes, true, nil
	}

	idCol, noteCol := -1, -1
	for i, name := range rows[0] {
		switch normalizeHeader(name) {
		case strings.ToLower(NoteColumnID):
			idCol = i
		case strings.ToLower(NoteColumnNote):
			noteCol = i
		}
	}
	if idCol < 0 || noteCol < 0 {
		return nil, true, fmt.Errorf("note table %s must have %q and %q columns", r.csvPath, NoteColumnID, NoteColumnNote)
	}
	for _, row := range rows[1:] {
		if idCol >= len(row) {
			continue
		}
		id := NormalizeNoteID(row[idCol])
		if id == "" {
			continue
		}
		text := ""
		if noteCol < len(row) {
			text = row[noteCol]
		}
		notes[id] = text
	}
	return notes, true, nil
}

// NormalizeNoteID trims an intern id and drops a spreadsheet style ".0" suffix.
func NormalizeNoteID(raw string) string {
	id := strings.TrimSpace(raw)
	if trimmed := strings.TrimSuffix(id, ".0"); trimmed != id {
		if _, err := strconv.Atoi(trimmed); err == nil {
			return trimmed
		}
	}
	return id
}

// EncodeNotesJSON renders the note document with four space indentation.
func EncodeNotesJSON(notes map[string]string) ([]byte, error) {
	if notes == nil {
		notes = map[string]string{}
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(notes); err != nil {
		return nil, fmt.Errorf("encode note document: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeNotesCSV renders the note table, one row per id ordered by numeric id.
func EncodeNotesCSV(notes map[string]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{NoteColumnID, NoteColumnNote}); err != nil {
		return nil, fmt.Errorf("write note table header: %w", err)
	}
	for _, id := range SortedNoteIDs(notes) {
		if err := writer.Write([]string{id, notes[id]}); err != nil {
			return nil, fmt.Errorf("write note row %s: %w", id, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush note table: %w", err)
	}
	return buf.Bytes(), nil
}

// SortedNoteIDs orders ids numerically, with non-numeric ids after them in lexical order.
func SortedNoteIDs(notes map[string]string) []string {
	ids := make([]string, 0, len(notes))
	for id := range notes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		switch {
		case aErr == nil && bErr == nil:
			if a != b {
				return a < b
			}
			return ids[i] < ids[j]
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}
