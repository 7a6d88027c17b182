package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/at-ishikawa/refresher/internal/analytics"
	"github.com/at-ishikawa/refresher/internal/assistant"
	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/config"
	"github.com/at-ishikawa/refresher/internal/database"
	"github.com/at-ishikawa/refresher/internal/inference"
	"github.com/at-ishikawa/refresher/internal/inference/local"
	"github.com/at-ishikawa/refresher/internal/inference/openai"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/quiz"
	"github.com/at-ishikawa/refresher/internal/selector"
)

// Components holds everything a front end needs for one learner profile.
type Components struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Store     *progress.Store
	Analytics *analytics.Engine
	Selector  *selector.Selector
	Model     inference.Client
	Assistant *assistant.Assistant

	logger *slog.Logger
	loader interface {
		Load(ctx context.Context) error
	}
}

// Build opens the configured storage and model provider. Connections are closed by the app's shutdown hooks.
func Build(ctx context.Context, app *App, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	subjects, err := OpenCatalog(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("OpenCatalog() > %w", err)
	}
	storage, err := OpenStorage(ctx, app, cfg)
	if err != nil {
		return nil, fmt.Errorf("OpenStorage() > %w", err)
	}

	engine := analytics.NewEngine(cfg.Analytics)
	store := progress.NewStore(ctx, storage,
		progress.WithAnalyzer(engine),
		progress.WithLogger(logger),
		progress.WithStreakPassAccuracy(cfg.Quiz.StreakPassAccuracy),
	)

	c := &Components{
		Config:    cfg,
		Catalog:   subjects,
		Store:     store,
		Analytics: engine,
		Selector:  newSelector(cfg.Quiz),
		logger:    logger,
	}
	c.Model = c.newModel(app)
	c.Assistant = assistant.New(c.Model, subjects, newSelector(cfg.Quiz), store,
		assistant.WithTimeout(time.Duration(cfg.Assistant.TimeoutSeconds)*time.Second),
		assistant.WithDefaultSubject(cfg.Assistant.DefaultSubject),
		assistant.WithLogger(logger),
	)
	return c, nil
}

func newSelector(cfg config.QuizConfig) *selector.Selector {
	return selector.New(selector.WithTopicThresholds(cfg.WeakTopicBelow, cfg.StrongTopicFrom))
}

func OpenCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Directory == "" {
		return catalog.LoadDefault()
	}
	return catalog.LoadDirectory(cfg.Directory)
}

// OpenStorage returns the storage backend named by cfg.Storage.Driver.
func OpenStorage(ctx context.Context, app *App, cfg *config.Config) (progress.Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return progress.NewMemoryStorage(), nil
	case config.StorageFile:
		return progress.NewFileStorage(cfg.Storage.FilePath), nil
	case config.StorageMySQL, config.StorageSQLite:
		db, err := database.Open(cfg.Storage, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database.Open() > %w", err)
		}
		app.AddShutdownHook(func(context.Context) error {
			return db.Close()
		})
		storage := progress.NewDBStorage(db, cfg.Storage.Key)
		if cfg.Storage.Migrate {
			if err := storage.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("storage.Migrate() > %w", err)
			}
		}
		return storage, nil
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.AddShutdownHook(func(context.Context) error {
			return client.Close()
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis.Ping(%s) > %w", cfg.Redis.Addr, err)
		}
		return progress.NewRedisStorage(client, cfg.Storage.Key), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (c *Components) newModel(app *App) inference.Client {
	cfg := c.Config
	switch cfg.Assistant.Provider {
	case config.ProviderOpenAI:
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.RetryAttempts,
			openai.WithLogger(c.logger),
		)
		app.AddShutdownHook(func(context.Context) error {
			return client.Close()
		})
		return client
	case config.ProviderLocal:
		client := local.NewClient(cfg.Local.BaseURL, cfg.Local.APIKey, cfg.Local.Model,
			local.WithLoadAttempts(cfg.Local.LoadAttempts),
			local.WithLoadDelay(time.Duration(cfg.Local.LoadDelaySeconds)*time.Second),
		)
		c.loader = client
		return client
	default:
		return inference.Unavailable{}
	}
}

// LoadModel performs the one-time model loading of providers that need it. Other providers return immediately.
func (c *Components) LoadModel(ctx context.Context) error {
	if c.loader == nil {
		return nil
	}
	c.logger.InfoContext(ctx, "loading model", slog.String("model", c.Config.Local.Model))
	if err := c.loader.Load(ctx); err != nil {
		return fmt.Errorf("Load() > %w", err)
	}
	c.logger.InfoContext(ctx, "model is ready", slog.String("model", c.Config.Local.Model))
	return nil
}

// QuizConfig returns the configured quiz defaults.
func (c *Components) QuizConfig() selector.Config {
	q := c.Config.Quiz
	cfg := selector.Config{
		QuestionCount:    q.QuestionCount,
		Difficulty:       q.Difficulty,
		AdaptiveLearning: q.AdaptiveLearning,
	}
	if q.TimeLimitSeconds > 0 {
		limit := q.TimeLimitSeconds
		cfg.TimeLimit = &limit
	}
	return cfg
}

// NewSession creates a quiz session on the shared catalog. A nil recorder records into the store.
func (c *Components) NewSession(recorder quiz.Recorder) *quiz.Session {
	if recorder == nil {
		recorder = c.Store
	}
	return quiz.NewSession(c.Catalog, c.Selector, recorder, quiz.WithLogger(c.logger))
}
