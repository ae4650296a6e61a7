package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/haguru/recordmigrator/config"
	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/migration"
	mongoRepo "github.com/haguru/recordmigrator/internal/repository/mongo"
	"github.com/haguru/recordmigrator/internal/repository/constants"
	"github.com/haguru/recordmigrator/internal/repository/sqlrepo"
	"github.com/haguru/recordmigrator/internal/source"
	"github.com/haguru/recordmigrator/pkg/databases/mongo"
	"github.com/haguru/recordmigrator/pkg/databases/sqldb"
	"github.com/haguru/recordmigrator/pkg/metrics"
	"github.com/haguru/recordmigrator/pkg/zerolog"

	structValidator "github.com/go-playground/validator/v10"
)

const (
	DBTypeMongo    = "mongo"
	DBTypePostgres = "postgres"
	DBTypeSQLite   = "sqlite"
)

// Options adjusts a loaded configuration from the command line.
type Options struct {
	// Routines, when set, enables exactly the named routines.
	Routines []string
	// LogLevel, when set, replaces the configured level.
	LogLevel string
	// LogOutput defaults to stdout.
	LogOutput io.Writer
}

// App wires the configuration, the store and the migrator together.
type App struct {
	Config   *config.ServiceConfig
	Logger   interfaces.Logger
	Metrics  interfaces.Metrics
	Migrator *migration.Migrator
	dbClient interfaces.DBClient
	repos    migration.Repositories
}

// NewApp creates and configures a new App instance. The store is connected
// and its tables or indexes exist when NewApp returns.
func NewApp(ctx context.Context, configPath string, opts Options) (*App, error) {
	cfg, err := config.ReadLocalConfig(configPath)
	if err != nil {
		return nil, err
	}
	if len(opts.Routines) > 0 {
		cfg.Routines.EnableOnly(opts.Routines)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	// Validate the configuration
	validator := structValidator.New()
	if err := validator.Struct(cfg); err != nil {
		var validationErrors structValidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validation error: %s", validationErrors)
		}
		return nil, fmt.Errorf("validation error: %w", err)
	}

	app := &App{
		Config: cfg,
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := zerolog.NewLogger(cfg.ServiceName, cfg.LogFormat, out)
	logger.SetLevel(cfg.LogLevel)
	app.Logger = logger

	app.Metrics = metrics.NewMetrics(strings.ReplaceAll(cfg.ServiceName, "-", "_"))

	if err := app.initializeStore(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	if err := app.ensureIndices(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to ensure indices: %w", err)
	}

	loader, err := source.NewCSVLoader(source.Options{
		Directory: cfg.Source.Directory,
		Extension: cfg.Source.Extension,
		Encoding:  cfg.Source.Encoding,
	})
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize source loader: %w", err)
	}

	app.Migrator, err = migration.NewMigrator(migration.NewConfig(cfg), app.repos, loader, app.Logger,
		migration.WithMetrics(app.Metrics),
		migration.WithWriteLimiter(migration.NewWriteLimiter(cfg.WriteRateLimit)),
	)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize migrator: %w", err)
	}

	return app, nil
}

// Run migrates the enabled entities and, when configured, writes the run
// metrics to the textfile. Only a failure to write the metrics is returned
// as an error; data problems are in the report.
func (app *App) Run(ctx context.Context) (migration.RunReport, error) {
	report := app.Migrator.Run(ctx)

	if path := app.Config.Metrics.TextfilePath; path != "" {
		if err := app.Metrics.WriteTextfile(path); err != nil {
			return report, fmt.Errorf("failed to write metrics textfile: %w", err)
		}
		app.Logger.Debug("Metrics written", "path", path)
	}

	return report, nil
}

// Close disconnects from the store.
func (app *App) Close(ctx context.Context) error {
	if app.dbClient == nil {
		return nil
	}
	return app.dbClient.Disconnect(ctx)
}

func (app *App) initializeStore(ctx context.Context) error {
	dbConfig := app.Config.Database

	switch dbConfig.Type {
	case DBTypeMongo:
		// Initialize MongoDB client
		client := mongo.NewMongoDB(&dbConfig.MongoDB, app.Logger)
		if err := client.Connect(ctx, dbConfig.DSN); err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		app.dbClient = client

		return app.initializeMongoRepos(client)

	case DBTypePostgres, DBTypeSQLite:
		dialect, err := sqldb.DialectByName(dbConfig.Type)
		if err != nil {
			return err
		}
		client := sqldb.NewSQLDatabaseClient(dialect, sqldb.Options{
			MaxOpenConns:    dbConfig.SQL.Options.MaxOpenConns,
			MaxIdleConns:    dbConfig.SQL.Options.MaxIdleConns,
			ConnMaxLifetime: dbConfig.SQL.Options.ConnMaxLifetime,
			KeyColumns:      constants.KeyColumns(),
		})
		if err := client.Connect(ctx, dbConfig.DSN); err != nil {
			return fmt.Errorf("failed to connect to %s: %w", dialect.Name, err)
		}
		app.dbClient = client
		app.Logger.Info("Connected to database", "type", dialect.Name)

		return app.initializeSQLRepos(client)

	default:
		return fmt.Errorf("unsupported database type: %s", dbConfig.Type)
	}
}

func (app *App) initializeMongoRepos(client interfaces.DBClient) error {
	users, err := mongoRepo.NewMongoUserRepository(client)
	if err != nil {
		return fmt.Errorf("failed to initialize MongoDB user repository: %w", err)
	}
	products, err := mongoRepo.NewMongoProductRepository(client)
	if err != nil {
		return fmt.Errorf("failed to initialize MongoDB product repository: %w", err)
	}
	sales, err := mongoRepo.NewMongoSaleRepository(client)
	if err != nil {
		return fmt.Errorf("failed to initialize MongoDB sale repository: %w", err)
	}

	app.repos = migration.Repositories{Users: users, Products: products, Sales: sales}
	return nil
}

func (app *App) initializeSQLRepos(client *sqldb.SQLDatabaseClient) error {
	users, err := sqlrepo.NewSQLUserRepository(client)
	if err != nil {
		return fmt.Errorf("failed to initialize SQL user repository: %w", err)
	}
	products, err := sqlrepo.NewSQLProductRepository(client)
	if err != nil {
		return fmt.Errorf("failed to initialize SQL product repository: %w", err)
	}
	sales, err := sqlrepo.NewSQLSaleRepository(client)
	if err != nil {
		return fmt.Errorf("failed to initialize SQL sale repository: %w", err)
	}

	app.repos = migration.Repositories{Users: users, Products: products, Sales: sales}
	return nil
}

// ensureIndices prepares the store. Sales reference users and products, so
// they come last.
func (app *App) ensureIndices(ctx context.Context) error {
	if err := app.repos.Users.EnsureIndices(ctx); err != nil {
		return fmt.Errorf("users: %w", err)
	}
	if err := app.repos.Products.EnsureIndices(ctx); err != nil {
		return fmt.Errorf("products: %w", err)
	}
	if err := app.repos.Sales.EnsureIndices(ctx); err != nil {
		return fmt.Errorf("sales: %w", err)
	}
	return nil
}
