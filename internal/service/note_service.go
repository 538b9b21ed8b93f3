package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
)

const diffSampleSize = 5

type noteFileStore interface {
	Read() (repository.NoteSnapshot, error)
	Write(notes map[string]string) error
}

type writerLock interface {
	Lock(ctx context.Context) error
	Unlock() error
}

type noteInput struct {
	InternID string `validate:"required,max=64"`
	Note     string `validate:"max=20000"`
}

// NoteServiceParams groups constructor dependencies.
type NoteServiceParams struct {
	Store     noteFileStore
	Lock      writerLock
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// NoteService is the keyed intern note store. The JSON document is authoritative; the CSV
// table is regenerated from it on every write.
type NoteService struct {
	store     noteFileStore
	lock      writerLock
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger

	// writeMu serialises every mutation so a Save never overwrites a concurrent Upsert.
	writeMu sync.Mutex
	mu      sync.RWMutex
	notes   map[string]string
}

// NewNoteService constructs a NoteService with an empty state. Call Load to read the files.
func NewNoteService(params NoteServiceParams) *NoteService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &NoteService{
		store:     params.Store,
		lock:      params.Lock,
		validator: validate,
		metrics:   params.Metrics,
		logger:    logger,
		notes:     map[string]string{},
	}
}

// Load rebuilds the in-memory state from disk. Missing files yield an empty store. When the
// files disagree the JSON document wins; when only the CSV table exists it is used instead.
func (s *NoteService) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap, err := s.store.Read()
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}

	var notes map[string]string
	switch {
	case snap.JSONPresent:
		notes = snap.JSON
		if diff := diffNotes(snap.CSV, snap.JSON); !diff.Consistent {
			s.logger.Warn("note files disagree, using json document",
				zap.Bool("csv_present", snap.CSVPresent),
				zap.Int("missing_from_csv", len(diff.MissingFromCSV)),
				zap.Int("missing_from_json", len(diff.MissingFromJSON)),
				zap.Int("text_mismatch", len(diff.TextMismatch)),
				zap.Strings("sample_ids", sampleIDs(diff)),
			)
		}
	case snap.CSVPresent:
		notes = snap.CSV
		s.logger.Warn("note document missing, recovered notes from csv table", zap.Int("notes", len(notes)))
	default:
		notes = map[string]string{}
	}

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
	s.logger.Info("notes loaded", zap.Int("notes", len(notes)))
	return nil
}

// Upsert inserts or replaces the note for id in memory only.
func (s *NoteService) Upsert(id, text string) error {
	input, err := s.validate(id, text)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.notes[input.InternID] = input.Note
	s.mu.Unlock()
	return nil
}

// Persist writes the current state to both files.
func (s *NoteService) Persist(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.persist(ctx, s.snapshot())
}

// Save upserts and persists as one step. The in-memory state only changes when both files
// were written.
func (s *NoteService) Save(ctx context.Context, id, text string) (models.NoteRecord, error) {
	input, err := s.validate(id, text)
	if err != nil {
		return models.NoteRecord{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.snapshot()
	next[input.InternID] = input.Note
	if err := s.persist(ctx, next); err != nil {
		return models.NoteRecord{}, err
	}

	s.mu.Lock()
	s.notes = next
	s.mu.Unlock()
	s.logger.Info("note saved", zap.String("intern_id", input.InternID), zap.Int("length", len(input.Note)))
	return models.NoteRecord{InternID: input.InternID, Note: input.Note}, nil
}

// Get returns the note for id. Unknown ids report false.
func (s *NoteService) Get(id string) (models.NoteRecord, bool) {
	id = repository.NormalizeNoteID(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.notes[id]
	return models.NoteRecord{InternID: id, Note: text}, ok
}

// Text returns the note for id or an empty string.
func (s *NoteService) Text(id string) string {
	rec, _ := s.Get(id)
	return rec.Note
}

// List returns every note ordered by numeric id.
func (s *NoteService) List() []models.NoteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := repository.SortedNoteIDs(s.notes)
	out := make([]models.NoteRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.NoteRecord{InternID: id, Note: s.notes[id]})
	}
	return out
}

// Snapshot returns a copy of the note map.
func (s *NoteService) Snapshot() map[string]string {
	return s.snapshot()
}

// Verify parses both files independently and compares their key sets and texts.
func (s *NoteService) Verify(ctx context.Context) (models.NoteConsistency, error) {
	snap, err := s.store.Read()
	if err != nil {
		return models.NoteConsistency{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read note files")
	}
	result := diffNotes(snap.CSV, snap.JSON)
	result.CSVPresent = snap.CSVPresent
	result.JSONPresent = snap.JSONPresent
	return result, nil
}

func (s *NoteService) validate(id, text string) (noteInput, error) {
	if !utf8.ValidString(id) || !utf8.ValidString(text) {
		return noteInput{}, appErrors.Clone(appErrors.ErrValidation, "note must be valid UTF-8")
	}
	input := noteInput{InternID: repository.NormalizeNoteID(id), Note: normalizeNewlines(text)}
	if err := s.validator.Struct(input); err != nil {
		return noteInput{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	return input, nil
}

// normalizeNewlines stores line breaks as LF. The CSV reader folds CRLF inside quoted
// fields, so any CR would read back differently from the JSON document.
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func (s *NoteService) snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.notes)+1)
	for k, v := range s.notes {
		out[k] = v
	}
	return out
}

func (s *NoteService) persist(ctx context.Context, notes map[string]string) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveNoteSave(err == nil, time.Since(start)) }()

	if s.lock != nil {
		if err := s.lock.Lock(ctx); err != nil {
			return appErrors.Wrap(err, appErrors.ErrNotesPersist.Code, appErrors.ErrNotesPersist.Status, "notes are locked by another writer")
		}
		defer func() {
			if uerr := s.lock.Unlock(); uerr != nil {
				s.logger.Warn("release note lock failed", zap.Error(uerr))
			}
		}()
	}
	if err := s.store.Write(notes); err != nil {
		s.logger.Error("persist notes failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrNotesPersist.Code, appErrors.ErrNotesPersist.Status, appErrors.ErrNotesPersist.Message)
	}
	return nil
}

func diffNotes(csvNotes, jsonNotes map[string]string) models.NoteConsistency {
	result := models.NoteConsistency{
		CSVCount:        len(csvNotes),
		JSONCount:       len(jsonNotes),
		MissingFromCSV:  []string{},
		MissingFromJSON: []string{},
		TextMismatch:    []string{},
	}
	for id, text := range jsonNotes {
		other, ok := csvNotes[id]
		switch {
		case !ok:
			result.MissingFromCSV = append(result.MissingFromCSV, id)
		case other != text:
			result.TextMismatch = append(result.TextMismatch, id)
		}
	}
	for id := range csvNotes {
		if _, ok := jsonNotes[id]; !ok {
			result.MissingFromJSON = append(result.MissingFromJSON, id)
		}
	}
	sortIDs(result.MissingFromCSV)
	sortIDs(result.MissingFromJSON)
	sortIDs(result.TextMismatch)
	result.Consistent = len(result.MissingFromCSV) == 0 && len(result.MissingFromJSON) == 0 && len(result.TextMismatch) == 0
	return result
}

func sortIDs(ids []string) {
	set := make(map[string]string, len(ids))
	for _, id := range ids {
		set[id] = ""
	}
	sorted := repository.SortedNoteIDs(set)
	copy(ids, sorted)
}

func sampleIDs(diff models.NoteConsistency) []string {
	all := append(append(append([]string{}, diff.MissingFromCSV...), diff.MissingFromJSON...), diff.TextMismatch...)
	sort.Strings(all)
	if len(all) > diffSampleSize {
		all = all[:diffSampleSize]
	}
	return all
}

// ParseNoteExportFormat accepts csv or json.
func ParseNoteExportFormat(raw string) (models.ExportFormat, error) {
	switch f := models.ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", models.ExportFormatCSV:
		return models.ExportFormatCSV, nil
	case models.ExportFormatJSON:
		return models.ExportFormatJSON, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or json")
	}
}

// Export renders the current notes in the same encoding as the note files.
func (s *NoteService) Export(format models.ExportFormat) ([]byte, error) {
	notes := s.snapshot()
	switch format {
	case models.ExportFormatCSV:
		return repository.EncodeNotesCSV(notes)
	case models.ExportFormatJSON:
		return repository.EncodeNotesJSON(notes)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or json")
	}
}
