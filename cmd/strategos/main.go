package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/alexanderramin/strategos/internal/cli"
	"github.com/alexanderramin/strategos/internal/config"
	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/datasource"
	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/eventsink"
	"github.com/alexanderramin/strategos/internal/logging"
	"github.com/alexanderramin/strategos/internal/repository"
	"github.com/alexanderramin/strategos/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	planRepo := repository.NewSQLiteActionPlanRepo(database)
	followUpRepo := repository.NewSQLiteFollowUpRepo(database)
	ideaRepo := repository.NewSQLiteIdeaRepo(database)
	kpiRepo := repository.NewSQLiteKPIRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	sources, err := buildSources(cfg.DataSources, database)
	if err != nil {
		return err
	}
	logger.Debug("kpi data sources registered", zap.Strings("modules", sources.Modules()))

	env := service.Env{
		Clock:  domain.SystemClock{},
		IDs:    domain.UUIDGenerator{},
		Events: buildSink(cfg, logger),
		Logger: logger,
	}
	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Plans:     service.NewActionPlanService(planRepo, uow, env, observer),
		FollowUps: service.NewFollowUpService(planRepo, followUpRepo, uow, env, observer),
		Ideas:     service.NewIdeaService(ideaRepo, uow, env, observer),
		KPIs:      service.NewKPIService(kpiRepo, sources, uow, env, observer),
		Tenant: contract.NewTenantContext(
			cfg.Tenant.UserID,
			cfg.Tenant.OrganizationID,
			cfg.Tenant.BranchID,
		),
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

func buildSources(cfg config.DataSourceConfig, database *sql.DB) (*datasource.Registry, error) {
	sources := datasource.NewRegistry()
	if cfg.SQLEnabled {
		sources.Register(datasource.ModuleSQL, datasource.NewSQLSource(database))
	}
	if cfg.SnapshotFile != "" {
		snapshot, err := datasource.LoadSnapshot(cfg.SnapshotFile)
		if err != nil {
			return nil, err
		}
		sources.Register(datasource.ModuleSnapshot, snapshot)
	}
	return sources, nil
}

func buildSink(cfg *config.Config, logger *zap.Logger) eventsink.Publisher {
	sinks := []eventsink.Publisher{eventsink.NewLogSink(logger)}
	if cfg.RedisEnabled() {
		ev := cfg.Events
		sinks = append(sinks, eventsink.NewRedisStreamSink(eventsink.RedisOptions{
			Addr:     ev.RedisAddr,
			Password: ev.RedisPassword,
			DB:       ev.RedisDB,
			Stream:   ev.RedisStream,
			MaxLen:   ev.RedisMaxLen,
		}))
	}
	return eventsink.NewMulti(sinks...)
}
