// Package app wires configuration, repositories, storage and services together.
package app

import (
	"context"
	"fmt"

	"documerge-backend/config"
	"documerge-backend/models"
	"documerge-backend/repository"
	"documerge-backend/repository/sqlite"
	"documerge-backend/service"
	"documerge-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

// ClientRepository is the client store used for seeding
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// QuestionnaireRepository extends the read side used during generation with
// the writes needed to build a questionnaire
type QuestionnaireRepository interface {
	service.QuestionnaireRepository
	CreatePetitionModel(ctx context.Context, model *models.PetitionModel) error
	CreateQuestion(ctx context.Context, question *models.Question) error
	CreateThesisLink(ctx context.Context, link *models.ThesisQuestionLink) error
}

// ThesisRepository extends the thesis store with listing
type ThesisRepository interface {
	service.ThesisRepository
	ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*models.Thesis, error)
}

// App holds the wired components of one process
type App struct {
	Clients       ClientRepository
	Questionnaire QuestionnaireRepository
	Theses        ThesisRepository
	Petitions     service.GeneratedPetitionRepository
	Storage       storage.Storage

	Documents       *service.DocumentService
	PetitionService *service.PetitionService

	Logger zerolog.Logger

	closers []func()
}

// New opens the configured database and storage and builds the services
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Logger: log}

	switch cfg.DBType {
	case config.DBTypeSQLite:
		level := logger.Silent
		if log.GetLevel() <= zerolog.DebugLevel {
			level = logger.Info
		}
		db, err := sqlite.Open(cfg.SQLitePath, level)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
		a.Clients = sqlite.NewClientRepository(db)
		a.Questionnaire = sqlite.NewQuestionnaireRepository(db)
		a.Theses = sqlite.NewThesisRepository(db)
		a.Petitions = sqlite.NewGeneratedPetitionRepository(db)
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite database opened")
	default:
		pool, err := initPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.Clients = repository.NewClientRepository(pool)
		a.Questionnaire = repository.NewQuestionnaireRepository(pool)
		a.Theses = repository.NewThesisRepository(pool)
		a.Petitions = repository.NewGeneratedPetitionRepository(pool)
		log.Info().Msg("postgres connection established")
	}

	st, err := storage.NewStorage(ctx, cfg.Storage, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = st

	a.Documents = service.NewDocumentService(
		service.DocumentWithQuestionnaireRepository(a.Questionnaire),
		service.DocumentWithThesisRepository(a.Theses),
		service.DocumentWithPetitionRepository(a.Petitions),
		service.DocumentWithStorage(st),
		service.DocumentWithLogger(log.With().Str("component", "documents").Logger()),
		service.DocumentWithFetchConcurrency(cfg.FetchConcurrency),
	)
	a.PetitionService = service.NewPetitionService(
		service.WithPetitionRepository(a.Petitions),
	)

	return a, nil
}

// Close releases the database connections
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}
