package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/report-relay/config"
	"github.com/target/report-relay/internal/adapters/blobsink"
	"github.com/target/report-relay/internal/adapters/lwa"
	"github.com/target/report-relay/internal/adapters/mailer"
	"github.com/target/report-relay/internal/adapters/spapi"
	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/data"
	"github.com/target/report-relay/internal/domain/job"
	"github.com/target/report-relay/internal/observability/notify/pagerduty"
	"github.com/target/report-relay/internal/observability/notify/slack"
	"github.com/target/report-relay/internal/observability/statsd"
	"github.com/target/report-relay/internal/service"
	"github.com/target/report-relay/internal/service/failurenotifier"
)

const userAgent = "report-relay/1.0 (Language=Go)"

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// Metrics returns the metrics sink, or nil when metrics are disabled.
//
//nolint:ireturn // a nil interface lets emitters skip work.
func (o ObservabilityContainer) Metrics() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// Application is the wired object graph shared by the daemon and the admin CLI.
type Application struct {
	Config   *config.AppConfig
	Logger   *slog.Logger
	Catalog  job.Catalog
	Targets  blobsink.Targets
	Ledgers  core.LedgerStore
	Notifier core.Notifier

	// Pipeline is nil when vendor credentials are missing.
	Pipeline *service.PipelineService
	// DropFolder is nil when no AS400 target is configured.
	DropFolder *service.DropFolderService

	Observability ObservabilityContainer

	db    *sql.DB
	redis redis.UniversalClient
}

// NewApplication connects the configured stores and builds every service.
func NewApplication(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &Application{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	catalog, err := BuildCatalog(cfg)
	if err != nil {
		return nil, err
	}
	app.Catalog = catalog

	if err := app.openLedgers(ctx); err != nil {
		return nil, err
	}

	app.Observability = buildObservability(ctx, logger, cfg.Observability)

	targets, err := BuildTargets(ctx, cfg.Sinks, logger)
	if err != nil {
		return nil, err
	}
	app.Targets = targets

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.Notifier = notifier

	if missing := cfg.Vendor.MissingRequired(); len(missing) == 0 {
		pipeline, err := app.buildPipeline()
		if err != nil {
			return nil, err
		}
		app.Pipeline = pipeline
	} else {
		logger.WarnContext(ctx, "vendor credentials missing; report pipelines disabled", "missing", missing)
	}

	if as400, err := targets.Get(job.TargetAS400); err == nil {
		app.DropFolder = service.NewDropFolderService(service.DropFolderServiceOptions{
			Deps: service.DropFolderDeps{Share: as400, Notifier: notifier},
			Config: service.DropFolderConfig{
				Jobs:       cfg.Jobs.DropFolders,
				Recipients: cfg.Recipients(),
				Metrics:    app.Observability.Metrics(),
				Failures:   app.Observability.FailureNotifier,
			},
			Logger: logger,
		})
	}

	ok = true
	return app, nil
}

// OpenLedgerStore connects only what the ledger backend needs. The admin CLI
// uses it for ledger maintenance without vendor credentials or shares.
func OpenLedgerStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	app := &Application{Config: cfg, Logger: logger}
	if err := app.openLedgers(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *Application) openLedgers(ctx context.Context) error {
	cfg := a.Config
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: a.Logger}

	if cfg.Ledger.NeedsPostgres() {
		db, err := ConnectDB(ctx, dbCfg)
		if err != nil {
			return err
		}
		a.db = db
		if cfg.Postgres.RunMigrationsOnStart {
			if err := RunMigrations(ctx, db, a.Logger); err != nil {
				return err
			}
		}
	}
	if cfg.Ledger.NeedsRedis() {
		client, err := ConnectRedis(ctx, dbCfg)
		if err != nil {
			return err
		}
		a.redis = client
	}

	store, err := data.NewLedgerStore(data.LedgerStoreOptions{
		Backend:     data.LedgerBackend(cfg.Ledger.Backend),
		Dir:         cfg.Ledger.Dir,
		Redis:       a.redis,
		RedisPrefix: cfg.Ledger.RedisPrefix,
		DB:          a.db,
	})
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	a.Ledgers = store
	a.Logger.InfoContext(ctx, "ledger store ready", "backend", cfg.Ledger.Backend)
	return nil
}

// DB returns the ledger database, or nil for other backends.
func (a *Application) DB() *sql.DB { return a.db }

// Close releases connections held by the application.
func (a *Application) Close() error {
	var errs []error
	if a.Observability.MetricsSink != nil {
		errs = append(errs, a.Observability.MetricsSink.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// BuildCatalog builds the job descriptors and applies the settings file overrides.
func BuildCatalog(cfg *config.AppConfig) (job.Catalog, error) {
	paths := cfg.Sinks.NASPaths
	catalog := job.NewCatalog(job.CatalogOptions{
		MarketplaceIDs: cfg.Vendor.MarketplaceIDs,
		Paths: job.Paths{
			DailyLedger:   paths.DailyLedger,
			WeeklyLedger:  paths.WeeklyLedger,
			MonthlyLedger: paths.MonthlyLedger,
			Settlements:   paths.Settlements,
			Shipments:     paths.Shipments,
		},
		Recipients: cfg.Recipients(),
		Policy:     cfg.Pipeline.ItemPolicy,
		WorkDir:    cfg.Sinks.ArchiveDir,
	})
	if err := cfg.Jobs.Apply(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// BuildTargets builds the nas and as400 sinks. In smb mode a share without
// server and share name is left out.
func BuildTargets(ctx context.Context, cfg config.SinkConfig, logger *slog.Logger) (blobsink.Targets, error) {
	shares := map[string]config.ShareConfig{
		job.TargetNAS:   cfg.NAS,
		job.TargetAS400: cfg.IBM,
	}
	targets := make(blobsink.Targets, len(shares))
	for name, share := range shares {
		if cfg.Mode == blobsink.ModeSMB && !share.IsConfigured() {
			logger.WarnContext(ctx, "sink target not configured", "target", name)
			continue
		}
		sink, err := blobsink.New(ctx, blobsink.Config{
			Mode:      cfg.Mode,
			Name:      name,
			LocalRoot: cfg.LocalRoot,
			SMB: blobsink.SMBConfig{
				Server:   share.Server,
				Port:     share.Port,
				Share:    share.Share,
				User:     share.Username,
				Password: share.Password,
				Domain:   share.Domain,
				Root:     share.Root,
			},
			S3: blobsink.S3Config{
				Endpoint:        cfg.S3.Endpoint,
				Region:          cfg.S3.Region,
				Bucket:          cfg.S3.Bucket,
				Prefix:          cfg.S3.Prefix,
				AccessKeyID:     cfg.S3.AccessKeyID,
				SecretAccessKey: cfg.S3.SecretAccessKey,
			},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build sink: %w", err)
		}
		targets[name] = sink
	}
	return targets, nil
}

func buildNotifier(cfg *config.AppConfig, logger *slog.Logger) (core.Notifier, error) {
	n, err := mailer.New(mailer.Config{
		Mode: cfg.Email.Mode,
		SMTP: mailer.SMTPConfig{
			Host:     cfg.Email.Server,
			Port:     cfg.Email.Port,
			Username: cfg.Email.SenderEmail,
			Password: cfg.Email.SenderPassword,
			From:     cfg.Email.SenderEmail,
			UseTLS:   cfg.Email.StartTLS,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build notifier: %w", err)
	}
	return n, nil
}

func (a *Application) buildPipeline() (*service.PipelineService, error) {
	cfg := a.Config
	provider, err := lwa.NewProvider(lwa.ProviderConfig{
		ClientID:     cfg.Vendor.ClientID,
		ClientSecret: cfg.Vendor.ClientSecret,
		RefreshToken: cfg.Vendor.RefreshToken,
		TokenURL:     cfg.Vendor.TokenURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build credential provider: %w", err)
	}

	marketplace := job.DefaultMarketplaceID
	if len(cfg.Vendor.MarketplaceIDs) > 0 {
		marketplace = cfg.Vendor.MarketplaceIDs[0]
	}
	client, err := spapi.NewClient(spapi.Config{
		Endpoint:      cfg.Vendor.Endpoint,
		RateLimit:     cfg.Vendor.RateLimit,
		Burst:         cfg.Vendor.RateBurst,
		UserAgent:     userAgent,
		MarketplaceID: marketplace,
		Timeout:       cfg.Vendor.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build vendor client: %w", err)
	}

	jobs := service.NewReportJobService(service.ReportJobServiceOptions{API: client, Logger: a.Logger})
	fetcher := service.NewReportFetcher(service.FetcherOptions{
		Reports:   client,
		Documents: client,
		Retry: service.FetchRetry{
			Attempts: cfg.Pipeline.FetchAttempts,
			Backoff:  cfg.Pipeline.FetchBackoff,
		},
		Logger: a.Logger,
	})

	return service.NewPipelineService(service.PipelineServiceOptions{
		Deps: service.PipelineDeps{
			Credentials: provider,
			Jobs:        jobs,
			Fetcher:     fetcher,
			Reports:     client,
			Shipments:   client,
			Ledgers:     a.Ledgers,
			Targets:     a.Targets,
			// Descriptor archive dirs are absolute, so the archive sink has no root.
			Archive:  blobsink.NewLocalSink(""),
			Notifier: a.Notifier,
		},
		Config: service.PipelineConfig{
			Await: service.AwaitOptions{
				Interval:      cfg.Pipeline.PollInterval,
				Timeout:       cfg.Pipeline.AwaitTimeout,
				MaxPollErrors: cfg.Pipeline.MaxPollErrors,
			},
			Metrics:  a.Observability.Metrics(),
			Failures: a.Observability.FailureNotifier,
		},
		Logger: a.Logger,
	}), nil
}

// buildObservability configures metrics and notification adapters.
func buildObservability(ctx context.Context, logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(ctx, statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: buildFailureNotifier(obsLogger, cfg.Notifications),
		NotifierConfig:  cfg.Notifications,
	}
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger,
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger:         baseLogger,
		Sinks:          sinks,
		NotifyTerminal: cfg.Terminal,
	})
}
