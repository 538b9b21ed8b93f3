package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/internal/repository"
	"github.com/noah-isme/intern-dashboard-api/internal/service"
	"github.com/noah-isme/intern-dashboard-api/pkg/config"
	"github.com/noah-isme/intern-dashboard-api/pkg/database"
	"github.com/noah-isme/intern-dashboard-api/pkg/filelock"
	"github.com/noah-isme/intern-dashboard-api/pkg/logger"
)

// runtime holds the configuration and long-lived collaborators shared by subcommands.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	// db is set when the dataset is read from Postgres.
	db *sqlx.DB
	// noteFiles is set by openNotes.
	noteFiles *repository.NoteFileRepository
	closers   []func() error
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: logr, metrics: service.NewMetricsService()}, nil
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Warn("close resource", zap.Error(err))
		}
	}
	_ = r.logger.Sync()
}

// openNotes builds the note store over the configured files and loads its state.
func (r *runtime) openNotes(ctx context.Context) (*service.NoteService, error) {
	store, err := repository.NewNoteFileRepository(repository.NoteFileRepositoryParams{
		CSVPath:          r.cfg.Notes.CSVPath,
		JSONPath:         r.cfg.Notes.JSONPath,
		SchemaValidation: r.cfg.Notes.SchemaValidation,
	})
	if err != nil {
		return nil, err
	}
	lock, err := filelock.New(r.cfg.Notes.LockPath)
	if err != nil {
		return nil, err
	}
	r.noteFiles = store
	csvPath, jsonPath := store.Paths()
	r.logger.Debug("note files", zap.String("csv", csvPath), zap.String("json", jsonPath), zap.String("lock", lock.Path()))
	notes := service.NewNoteService(service.NoteServiceParams{
		Store:   store,
		Lock:    lock,
		Metrics: r.metrics,
		Logger:  r.logger.Named("notes"),
	})
	if err := notes.Load(ctx); err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	return notes, nil
}

// openDataset loads the intern dataset from the configured source.
func (r *runtime) openDataset(ctx context.Context) (*service.DatasetService, error) {
	var source interface {
		LoadInterns(ctx context.Context) ([]models.InternRecord, error)
	}
	switch r.cfg.Dataset.Source {
	case config.DatasetSourcePostgres:
		db, err := database.NewPostgres(ctx, r.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		r.db = db
		r.closers = append(r.closers, db.Close)
		repo, err := repository.NewInternRepository(db, r.cfg.Dataset.Table)
		if err != nil {
			return nil, err
		}
		source = repo
	case config.DatasetSourceCSV, "":
		source = repository.NewCSVInternSource(r.cfg.Dataset.Path)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", r.cfg.Dataset.Source)
	}

	dataset := service.NewDatasetService(service.DatasetServiceParams{
		Source:  source,
		Metrics: r.metrics,
		Logger:  r.logger.Named("dataset"),
	})
	if err := dataset.Load(ctx); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return dataset, nil
}
