// Package migration drives the users, products and sales routines that move
// source rows into the store.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/haguru/recordmigrator/config"
	"github.com/haguru/recordmigrator/internal/interfaces"
	"github.com/haguru/recordmigrator/internal/models"
	"github.com/haguru/recordmigrator/internal/schema"
	"github.com/haguru/recordmigrator/internal/source"
	"github.com/haguru/recordmigrator/pkg/helper"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Config selects the routines of a run and the source file of each entity.
// The migrator keeps its own copy.
type Config struct {
	Routines config.RoutineConfig
	Users    config.EntitySource
	Products config.EntitySource
	Sales    config.EntitySource
}

// NewConfig extracts the migration settings from the service configuration.
func NewConfig(cfg *config.ServiceConfig) Config {
	return Config{
		Routines: cfg.Routines,
		Users:    cfg.UsersConfig,
		Products: cfg.ProductsConfig,
		Sales:    cfg.SalesConfig,
	}
}

// Repositories groups the stores the migrator writes to.
type Repositories struct {
	Users    interfaces.UserRepository
	Products interfaces.ProductRepository
	Sales    interfaces.SaleRepository
}

// Option configures optional collaborators of a Migrator.
type Option func(*Migrator)

// WithMetrics records row outcomes and routine durations.
func WithMetrics(metrics interfaces.Metrics) Option {
	return func(m *Migrator) {
		m.metrics = metrics
	}
}

// WithWriteLimiter makes every insert wait on limiter first.
func WithWriteLimiter(limiter *rate.Limiter) Option {
	return func(m *Migrator) {
		m.limiter = limiter
	}
}

// NewWriteLimiter returns a limiter allowing perSecond inserts, or nil when
// perSecond is not positive.
func NewWriteLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Migrator runs the migration routines. It is not safe for concurrent use.
type Migrator struct {
	cfg     Config
	repos   Repositories
	loader  interfaces.SourceLoader
	logger  interfaces.Logger
	metrics interfaces.Metrics
	limiter *rate.Limiter
	done    map[string]bool
}

// NewMigrator creates a Migrator.
func NewMigrator(cfg Config, repos Repositories, loader interfaces.SourceLoader, logger interfaces.Logger, opts ...Option) (*Migrator, error) {
	if repos.Users == nil || repos.Products == nil || repos.Sales == nil {
		return nil, fmt.Errorf("repositories cannot be nil")
	}
	if loader == nil {
		return nil, fmt.Errorf("source loader cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	m := &Migrator{
		cfg:    cfg,
		repos:  repos,
		loader: loader,
		logger: logger,
		done:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.metrics != nil {
		m.metrics.RegisterCounterVec(MetricRecordsTotal, "Source rows processed, by entity and outcome.", []string{"entity", "outcome"})
		m.metrics.RegisterHistogramVec(MetricRoutineDuration, "Duration of migration routines.", nil, []string{"entity", "status"})
		m.metrics.RegisterGauge(MetricLastRun, "Unix time of the last migration run.")
	}

	return m, nil
}

// Run executes the enabled routines in dependency order: users, products,
// then sales. Data problems never fail a run; they show up in the report.
func (m *Migrator) Run(ctx context.Context) RunReport {
	funcName := helper.GetFuncName()
	report := RunReport{RunID: uuid.NewString()}

	base := m.logger
	m.logger = base.With("run_id", report.RunID)
	defer func() { m.logger = base }()
	m.done = make(map[string]bool)

	m.logger.Debug("Entering function", "func", funcName)
	m.logger.Info(MsgRunStarted,
		config.EntityUsers, m.cfg.Routines.MigrateUsers,
		config.EntityProducts, m.cfg.Routines.MigrateProducts,
		config.EntitySales, m.cfg.Routines.MigrateSales,
	)

	routines := []struct {
		entity  string
		enabled bool
		run     func(context.Context) RoutineReport
	}{
		{config.EntityUsers, m.cfg.Routines.MigrateUsers, m.MigrateUsers},
		{config.EntityProducts, m.cfg.Routines.MigrateProducts, m.MigrateProducts},
		{config.EntitySales, m.cfg.Routines.MigrateSales, m.MigrateSales},
	}
	for _, r := range routines {
		if !r.enabled {
			m.logger.Info(MsgRoutineDisabled, "entity", r.entity)
			continue
		}
		report.Routines = append(report.Routines, r.run(ctx))
	}

	if m.metrics != nil {
		m.metrics.SetCurrentTimeGauge(MetricLastRun)
	}

	for _, rr := range report.Routines {
		keyvals := append([]interface{}{"entity", rr.Entity, "rows", rr.Rows(), "duration", rr.Duration}, countFields(rr)...)
		if rr.Aborted() {
			keyvals = append(keyvals, "error", rr.Err)
		}
		m.logger.Info(MsgRoutineSummary, keyvals...)
	}
	m.logger.Info(MsgRunFinished, "migrated", report.Migrated(), "aborted", strings.Join(report.Aborted(), ","))
	m.logger.Debug("Exiting function", "func", funcName)

	return report
}

// MigrateUsers inserts every valid user whose email is not yet stored.
func (m *Migrator) MigrateUsers(ctx context.Context) RoutineReport {
	return migrateKeyed(ctx, m, keyedRoutine[*models.User]{
		entity:    config.EntityUsers,
		source:    m.cfg.Users,
		columns:   models.UserColumns,
		newRecord: func() *models.User { return &models.User{} },
		find:      m.repos.Users.FindByEmail,
		insert:    m.repos.Users.Insert,
	})
}

// MigrateProducts inserts every valid product whose name is not yet stored.
func (m *Migrator) MigrateProducts(ctx context.Context) RoutineReport {
	return migrateKeyed(ctx, m, keyedRoutine[*models.Product]{
		entity:    config.EntityProducts,
		source:    m.cfg.Products,
		columns:   models.ProductColumns,
		newRecord: func() *models.Product { return &models.Product{} },
		find:      m.repos.Products.FindByName,
		insert:    m.repos.Products.Insert,
	})
}

// MigrateSales inserts every valid sale whose user and product are stored,
// pointing it at their surrogate keys. Sales are not deduplicated.
// When the users or products routine is enabled for this run it must have
// run first, otherwise MigrateSales returns ErrDependencyNotMigrated in the report.
func (m *Migrator) MigrateSales(ctx context.Context) RoutineReport {
	funcName := helper.GetFuncName()
	log := m.logger.With("entity", config.EntitySales, "file", m.cfg.Sales.FileName)
	log.Debug("Entering function", "func", funcName)

	var pending []string
	if m.cfg.Routines.MigrateUsers && !m.done[config.EntityUsers] {
		pending = append(pending, config.EntityUsers)
	}
	if m.cfg.Routines.MigrateProducts && !m.done[config.EntityProducts] {
		pending = append(pending, config.EntityProducts)
	}
	if len(pending) > 0 {
		err := fmt.Errorf("%w: %s", ErrDependencyNotMigrated, strings.Join(pending, ", "))
		return m.finish(log, newRoutineReport(config.EntitySales), time.Now(), err)
	}

	return m.runRoutine(ctx, config.EntitySales, m.cfg.Sales, models.SaleColumns,
		func(ctx context.Context, log interfaces.Logger, row models.Row) Outcome {
			sale := &models.Sale{}
			if !sale.LoadFromRow(row) {
				log.Warn(MsgRecordInvalid, "sale", sale.String())
				return OutcomeSkippedInvalid
			}
			log = log.With("user", sale.EmailUsuario, "product", sale.Produto)

			user, err := m.repos.Users.FindByEmail(ctx, sale.EmailUsuario)
			if err != nil {
				log.Error(MsgLookupFailed, "error", err)
				return OutcomeLookupFailed
			}
			if !user.Found {
				log.Warn(MsgUserNotFound)
				return OutcomeSkippedUnresolved
			}

			product, err := m.repos.Products.FindByName(ctx, sale.Produto)
			if err != nil {
				log.Error(MsgLookupFailed, "error", err)
				return OutcomeLookupFailed
			}
			if !product.Found {
				log.Warn(MsgProductNotFound)
				return OutcomeSkippedUnresolved
			}

			sale.Resolve(user.Record, product.Record)

			outcome := m.insert(ctx, log, func(ctx context.Context) error {
				return m.repos.Sales.Insert(ctx, sale)
			})
			if outcome == OutcomeMigrated {
				log.Info(MsgRecordMigrated, "id", sale.SurrogateKey(),
					"id_usuario", sale.IDUsuario, "id_produto", sale.IDProduto)
			}
			return outcome
		})
}

// keyedRecord is a record identified by a natural key.
type keyedRecord interface {
	LoadFromRow(row models.Row) bool
	NaturalKey() string
	SurrogateKey() string
}

type keyedRoutine[T keyedRecord] struct {
	entity    string
	source    config.EntitySource
	columns   func() ([]string, []string)
	newRecord func() T
	find      func(ctx context.Context, key string) (models.Lookup[T], error)
	insert    func(ctx context.Context, record T) error
}

// migrateKeyed runs BUILD, CHECK_VALID, CHECK_EXISTS and INSERT for each row.
func migrateKeyed[T keyedRecord](ctx context.Context, m *Migrator, r keyedRoutine[T]) RoutineReport {
	return m.runRoutine(ctx, r.entity, r.source, r.columns,
		func(ctx context.Context, log interfaces.Logger, row models.Row) Outcome {
			record := r.newRecord()
			if !record.LoadFromRow(row) {
				log.Warn(MsgRecordInvalid, "key", record.NaturalKey())
				return OutcomeSkippedInvalid
			}
			key := record.NaturalKey()
			log = log.With("key", key)

			existing, err := r.find(ctx, key)
			if err != nil {
				log.Error(MsgLookupFailed, "error", err)
				return OutcomeLookupFailed
			}
			if existing.Found {
				log.Info(MsgRecordDuplicate, "id", existing.Record.SurrogateKey())
				return OutcomeSkippedDuplicate
			}

			outcome := m.insert(ctx, log, func(ctx context.Context) error {
				return r.insert(ctx, record)
			})
			if outcome == OutcomeMigrated {
				log.Info(MsgRecordMigrated, "id", record.SurrogateKey())
			}
			return outcome
		})
}

type rowHandler func(ctx context.Context, log interfaces.Logger, row models.Row) Outcome

// runRoutine loads and checks a source file, then hands each row to handle.
// Only an unreadable or mismatched file, or a failure part way through
// reading it, aborts the routine.
func (m *Migrator) runRoutine(ctx context.Context, entity string, src config.EntitySource, columns func() ([]string, []string), handle rowHandler) RoutineReport {
	start := time.Now()
	report := newRoutineReport(entity)
	log := m.logger.With("entity", entity, "file", src.FileName)
	log.Info(MsgRoutineStarted, "pattern", src.ColumnPattern)

	table, err := m.open(src, columns)
	if err != nil {
		return m.finish(log, report, start, err)
	}
	defer func() {
		if err := table.Close(); err != nil {
			log.Warn("Failed to close source file", "error", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return m.finish(log, report, start, err)
		}

		row, err := table.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		rowLog := log.With("line", table.Line())
		if errors.Is(err, source.ErrMalformedRow) {
			rowLog.Warn(MsgMalformedRow, "error", err)
			m.count(report, OutcomeSkippedInvalid)
			continue
		}
		if err != nil {
			return m.finish(log, report, start, err)
		}

		m.count(report, handle(ctx, rowLog, row))
	}

	return m.finish(log, report, start, nil)
}

// open loads the source file and checks its header before any row is read.
func (m *Migrator) open(src config.EntitySource, columns func() ([]string, []string)) (interfaces.SourceTable, error) {
	table, err := m.loader.Load(src.FileName)
	if err != nil {
		return nil, err
	}

	header := table.Header()
	err = schema.Validate(header, src.ColumnPattern)
	if err == nil {
		cols, keyCols := columns()
		err = schema.Bind(header, cols, keyCols)
	}
	if err == nil && !table.HasRows() {
		err = ErrNoRows
	}
	if err != nil {
		_ = table.Close()
		return nil, err
	}

	return table, nil
}

// insert waits on the write limiter, if any, and runs insertFn. A duplicate
// key reported by the store counts as already migrated.
func (m *Migrator) insert(ctx context.Context, log interfaces.Logger, insertFn func(context.Context) error) Outcome {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			log.Error(MsgWriteLimitFailed, "error", err)
			return OutcomeInsertFailed
		}
	}

	if err := insertFn(ctx); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			log.Info(MsgRecordDuplicate, "error", err)
			return OutcomeSkippedDuplicate
		}
		log.Error(MsgInsertFailed, "error", err)
		return OutcomeInsertFailed
	}
	return OutcomeMigrated
}

func (m *Migrator) count(report RoutineReport, outcome Outcome) {
	report.Counts[outcome]++
	if m.metrics != nil {
		m.metrics.IncCounterVec(MetricRecordsTotal, report.Entity, string(outcome))
	}
}

func (m *Migrator) finish(log interfaces.Logger, report RoutineReport, start time.Time, err error) RoutineReport {
	report.Duration = time.Since(start)
	report.Err = err
	m.done[report.Entity] = true

	status := statusCompleted
	if err != nil {
		status = statusAborted
		log.Error(MsgRoutineAborted, "error", err)
	} else {
		log.Info(MsgRoutineFinished, append([]interface{}{"rows", report.Rows()}, countFields(report)...)...)
	}

	if m.metrics != nil {
		m.metrics.ObserveHistogramVec(MetricRoutineDuration, report.Duration.Seconds(), report.Entity, status)
	}
	return report
}

func countFields(report RoutineReport) []interface{} {
	fields := make([]interface{}, 0, 2*len(Outcomes))
	for _, o := range Outcomes {
		fields = append(fields, string(o), report.Counts[o])
	}
	return fields
}
