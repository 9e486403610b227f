package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "docforms-backend/internal/auth"
	"docforms-backend/internal/contact"
	"docforms-backend/internal/document"
	"docforms-backend/internal/document/docx"
	"docforms-backend/internal/document/pdf"
	"docforms-backend/internal/exports"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/llm"
	"docforms-backend/internal/llm/gemini"
	"docforms-backend/internal/llm/openai"
	"docforms-backend/internal/sessions"
	"docforms-backend/internal/shared/auth"
	"docforms-backend/internal/shared/config"
	"docforms-backend/internal/shared/server"
	"docforms-backend/internal/shared/storage/db"
	"docforms-backend/internal/shared/storage/object"
	localstore "docforms-backend/internal/shared/storage/object/local"
	s3store "docforms-backend/internal/shared/storage/object/s3"
	"docforms-backend/internal/shared/telemetry"
	"docforms-backend/internal/summarize"
	"docforms-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.Store
	Registry         *forms.Registry
	Assembler        *document.Assembler
	Sessions         *sessions.Store
	Summarizer       llm.Summarizer
	ExportsRepo      exports.Repo
	UsersRepo        users.Repo
	ExportsService   *exports.Service
	SummarizeService *summarize.Service
	ContactService   *contact.Service
	UsersService     *users.Service
	GoogleAuth       *googleauth.Google
	Tokens           *auth.Tokens

	closers []func() error
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Registry:  registry,
		Assembler: BuildAssembler(cfg),
		Tokens:    tokens,
	}
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	summarizer, closeFn, err := BuildSummarizer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Summarizer = summarizer
	if closeFn != nil {
		app.closers = append(app.closers, closeFn)
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		FormsHandler:     forms.NewHandler(app.Registry),
		SessionsHandler:  sessions.NewHandler(app.Sessions, app.UsersService),
		ExportsHandler:   exports.NewHandler(app.ExportsService),
		SummariesHandler: summarize.NewHandler(app.SummarizeService),
		ContactHandler:   contact.NewHandler(app.ContactService),
		UsersHandler:     users.NewHandler(app.UsersService),
		GoogleAuth:       app.GoogleAuth,
		Tokens:           app.Tokens,
	})

	return app, nil
}

// Close releases the database pool and model clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildRegistry loads the form definitions with company settings from cfg.
func BuildRegistry(cfg config.Config) (*forms.Registry, error) {
	registry, err := forms.NewRegistry(forms.Options{
		Company:     cfg.CompanyName,
		BankDetails: cfg.BankDetails,
		TaxRate:     &cfg.TaxRate,
	})
	if err != nil {
		return nil, fmt.Errorf("load form definitions: %w", err)
	}
	return registry, nil
}

// BuildAssembler registers both serializers.
func BuildAssembler(cfg config.Config) *document.Assembler {
	author := cfg.CompanyName
	if strings.TrimSpace(author) == "" {
		author = forms.DefaultCompany
	}
	return document.NewAssembler(docx.New(author), pdf.New(author))
}

// BuildSummarizer picks the model provider. Missing keys disable summaries
// instead of failing startup; the returned func closes the client, if any.
func BuildSummarizer(ctx context.Context, cfg config.Config) (llm.Summarizer, func() error, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_disabled", map[string]any{"provider": "gemini", "reason": "GEMINI_API_KEY empty"})
			return llm.Disabled{}, nil, nil
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_disabled", map[string]any{"provider": "openai", "reason": "OPENAI_API_KEY empty"})
			return llm.Disabled{}, nil, nil
		}
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		return llm.Disabled{}, nil, nil
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDev() {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.ServerPool().WithEnv(nil))
	if err == nil {
		err = db.Migrate(ctx, sqlDB)
	}
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database unavailable", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var exportRepo exports.Repo
	var userRepo users.Repo
	if app.DB != nil {
		exportRepo = &exports.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		exportRepo = exports.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	app.Sessions = sessions.NewStore(app.Registry)
	app.ExportsRepo = exportRepo
	app.UsersRepo = userRepo
	app.UsersService = users.NewService(userRepo)
	app.ExportsService = &exports.Service{
		Registry:  app.Registry,
		Assembler: app.Assembler,
		Sessions:  app.Sessions,
		Repo:      exportRepo,
		Store:     app.Store,
		Archive:   app.Config.ArchiveExports,
	}
	app.SummarizeService = summarize.NewService(app.Summarizer)
	app.ContactService = contact.NewService(contact.LogNotifier{})
	app.GoogleAuth = googleauth.NewGoogle(googleauth.GoogleConfig{
		ClientID:     app.Config.GoogleClientID,
		ClientSecret: app.Config.GoogleClientSecret,
		RedirectURL:  app.Config.GoogleRedirectURL,
		UIRedirect:   app.Config.UIRedirectURL,
	}, app.Tokens, app.UsersService)
}
