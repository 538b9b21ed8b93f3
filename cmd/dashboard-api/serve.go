package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/intern-dashboard-api/api/swagger"
	"github.com/noah-isme/intern-dashboard-api/internal/handler"
	"github.com/noah-isme/intern-dashboard-api/internal/middleware"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/internal/repository"
	"github.com/noah-isme/intern-dashboard-api/internal/service"
	"github.com/noah-isme/intern-dashboard-api/pkg/cache"
	"github.com/noah-isme/intern-dashboard-api/pkg/config"
	"github.com/noah-isme/intern-dashboard-api/pkg/export"
	"github.com/noah-isme/intern-dashboard-api/pkg/jobs"
	"github.com/noah-isme/intern-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/intern-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/intern-dashboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/intern-dashboard-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

var servePort int

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Load the intern dataset and note files, then serve the dashboard API until interrupted.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()
	cfg := rt.cfg
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dataset, err := rt.openDataset(ctx)
	if err != nil {
		return err
	}
	notes, err := rt.openNotes(ctx)
	if err != nil {
		return err
	}
	validate := validator.New()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			rt.logger.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, "intern-dashboard:", rt.logger.Named("cache"))
			rt.closers = append(rt.closers, repo.Close)
			cacheSvc = service.NewCacheService(repo, rt.metrics, cfg.Cache.TTL, rt.logger.Named("cache"), true)
		}
	}

	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Dataset: dataset,
		Cache:   cacheSvc,
		Logger:  rt.logger.Named("dashboard"),
		Config: service.DashboardServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			TopPerformersLimit: cfg.Dashboard.TopPerformersLimit,
		},
	})
	if err := dashboard.PurgeCache(ctx); err != nil {
		rt.logger.Warn("purge dashboard cache", zap.Error(err))
	}

	routes := handler.Routes{
		Dataset: handler.NewDatasetHandler(dataset),
		Interns: handler.NewInternHandler(service.NewInternService(service.InternServiceParams{
			Dataset: dataset,
			Notes:   notes,
			Logger:  rt.logger.Named("interns"),
		})),
		Dashboard: handler.NewDashboardHandler(dashboard, dataset),
		Notes:     handler.NewNoteHandler(notes, dataset),
		Metrics:   handler.NewMetricsHandler(rt.metrics, dataset),
		Logger:    rt.logger.Named("audit"),
	}

	if cfg.Auth.Enabled {
		auth := service.NewAuthService(validate, rt.logger.Named("auth"), service.AuthConfig{
			AccessTokenSecret: cfg.Auth.Secret,
			AccessTokenExpiry: cfg.Auth.Expiration,
			Accounts: []service.Account{{
				Email:        cfg.Auth.AdminEmail,
				FullName:     cfg.Auth.AdminName,
				Role:         models.RoleAdmin,
				PasswordHash: cfg.Auth.AdminPasswordHash,
			}},
		})
		routes.Auth = handler.NewAuthHandler(auth)
		routes.Tokens = auth
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Exports.Enabled {
		exportJobs, queue, err := buildExports(cfg, rt, dataset, notes, validate)
		if err != nil {
			return err
		}
		routes.Exports = handler.NewExportHandler(exportJobs)
		queue.Start(gctx)
		defer queue.Stop()
		exportJobs.StartCleanup(gctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(rt.logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(rt.metrics, "/health", "/ready", "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", routes.Metrics.Health)
	r.GET("/ready", routes.Metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", routes.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	routes.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		rt.logger.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "records", len(dataset.Records()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		rt.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildExports(cfg *config.Config, rt *runtime, dataset *service.DatasetService, notes *service.NoteService, validate *validator.Validate) (*service.ExportJobService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init export storage: %w", err)
	}
	exporter := service.NewExportService(service.ExportServiceParams{
		Dataset: dataset,
		Notes:   notes,
		Storage: files,
		Signer:  storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		CSV:     export.NewCSVExporter(export.WithFormulaEscaping()),
		PDF:     export.NewPDFExporter(),
		Logger:  rt.logger.Named("exports"),
		Config:  service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
	})
	var store exportJobStore = repository.NewExportJobStore()
	if rt.db != nil {
		store = repository.NewExportJobRepository(rt.db)
	}
	worker := service.NewExportWorker(store, exporter, rt.metrics, rt.logger.Named("export-worker"))

	var jobsSvc *service.ExportJobService
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnExhausted: func(ctx context.Context, job jobs.Job, err error) {
			jobsSvc.MarkExhausted(ctx, job, err)
		},
		Logger: rt.logger.Named("export-queue"),
	})
	jobsSvc = service.NewExportJobService(service.ExportJobServiceParams{
		Store:     store,
		Queue:     queue,
		Exporter:  exporter,
		Criteria:  dataset,
		Validator: validate,
		Metrics:   rt.metrics,
		Logger:    rt.logger.Named("exports"),
		Config: service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		},
	})
	return jobsSvc, queue, nil
}
