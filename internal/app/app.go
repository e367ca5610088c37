// Package app wires configuration, storage and extraction together for the
// binaries.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/export"
	"github.com/joseph-ayodele/invoices-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoices-tracker/internal/llm/gemini"
	"github.com/joseph-ayodele/invoices-tracker/internal/llm/groq"
	"github.com/joseph-ayodele/invoices-tracker/internal/logging"
	"github.com/joseph-ayodele/invoices-tracker/internal/pipeline"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
	"github.com/joseph-ayodele/invoices-tracker/internal/server"
)

// LoadConfig reads .env files, the optional YAML file and the environment,
// validates the result and builds the logger.
func LoadConfig(configPath string, envFiles ...string) (*common.Config, *zap.Logger, error) {
	if err := common.LoadDotEnv(append([]string{".env"}, envFiles...)...); err != nil {
		return nil, nil, err
	}
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// NewProcessor builds both provider clients and the orchestrator over blobs.
func NewProcessor(cfg *common.Config, blobs pipeline.BlobReader, logger *zap.Logger) *pipeline.Processor {
	gc := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, logger)
	qc := groq.NewClient(groq.Config{
		APIKey:  cfg.Groq.APIKey,
		BaseURL: cfg.Groq.BaseURL,
		Model:   cfg.Groq.Model,
		Timeout: cfg.Groq.Timeout,
	}, logger)
	return pipeline.NewProcessor(logger, blobs, gc, qc)
}

// App holds every long-lived component of a process backed by the store.
type App struct {
	Config    *common.Config
	Logger    *zap.Logger
	DB        *repository.DB
	Files     repository.FileRepository
	Invoices  *invoices.Service
	Processor *pipeline.Processor
	Export    *export.Service
}

// Open connects to the store, applies the schema and builds the services.
func Open(ctx context.Context, cfg *common.Config, logger *zap.Logger) (*App, error) {
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	invRepo, err := repository.NewInvoiceRepository(db, logger)
	if err != nil {
		server.CloseDB(db, logger)
		return nil, fmt.Errorf("invoice repository: %w", err)
	}
	files := repository.NewFileRepository(db, logger)
	svc := invoices.NewService(invRepo, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Files:     files,
		Invoices:  svc,
		Processor: NewProcessor(cfg, files, logger),
		Export:    export.NewService(svc, logger),
	}, nil
}

// NewServer builds the HTTP surface over the app's services.
func (a *App) NewServer() (*server.Server, error) {
	return server.NewServer(server.Deps{
		Files:    a.Files,
		Invoices: a.Invoices,
		Extract:  a.Processor,
		Export:   a.Export,
	}, server.Config{
		Port:       a.Config.Server.Port,
		Production: a.Config.IsProduction(),
	}, a.Logger)
}

func (a *App) Close() {
	server.CloseDB(a.DB, a.Logger)
}
