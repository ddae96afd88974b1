package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/report-relay/config"
	"github.com/target/report-relay/internal/adapters/blobsink"
	"github.com/target/report-relay/internal/domain/job"
	"github.com/target/report-relay/internal/domain/model"
	"github.com/target/report-relay/internal/observability/notify"
)

func localConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	root := t.TempDir()
	cfg := &config.AppConfig{
		Services: "pipelines,dropfolder",
		Sinks: config.SinkConfig{
			Mode:      blobsink.ModeLocal,
			LocalRoot: filepath.Join(root, "shares"),
		},
		Email:  config.EmailConfig{Mode: config.EmailModeLocal},
		Ledger: config.LedgerConfig{Backend: config.LedgerBackendFile, Dir: filepath.Join(root, "ledgers")},
	}
	cfg.Pipeline.ItemPolicy = model.ItemPolicyBestEffort
	return cfg
}

func TestBuildCatalog_AppliesOverrides(t *testing.T) {
	cfg := localConfig(t)
	cfg.Sinks.NASPaths.Settlements = "Finance/Settlements"
	cfg.Sinks.ArchiveDir = "/var/lib/report-relay"
	cfg.Email.Recipients = []string{"ops@example.com"}
	cfg.Jobs = config.JobSettings{Overrides: map[string]config.JobOverride{
		job.NameShipments: {Policy: model.ItemPolicyFailFast},
	}}

	catalog, err := BuildCatalog(cfg)
	require.NoError(t, err)

	settlements, err := catalog.Lookup(job.NameSettlements)
	require.NoError(t, err)
	assert.Equal(t, "Finance/Settlements", settlements.Destination.Dir)
	assert.Equal(t, filepath.Join("/var/lib/report-relay", "settlement-downloads"), settlements.ArchiveDir)

	shipments, err := catalog.Lookup(job.NameShipments)
	require.NoError(t, err)
	assert.Equal(t, model.ItemPolicyFailFast, shipments.Policy)

	as400, err := catalog.Lookup(job.NameDailyAS400)
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com"}, as400.Notify.Recipients)
}

func TestBuildTargets(t *testing.T) {
	ctx := context.Background()

	t.Run("local mode builds both targets", func(t *testing.T) {
		cfg := localConfig(t)
		targets, err := BuildTargets(ctx, cfg.Sinks, slog.Default())
		require.NoError(t, err)
		assert.Equal(t, []string{job.TargetAS400, job.TargetNAS}, targets.Names())
	})

	t.Run("smb mode skips unconfigured shares", func(t *testing.T) {
		sinks := config.SinkConfig{
			Mode: blobsink.ModeSMB,
			NAS:  config.ShareConfig{Server: "nas01", Share: "Finance", Port: 445},
		}
		targets, err := BuildTargets(ctx, sinks, slog.Default())
		require.NoError(t, err)
		assert.Equal(t, []string{job.TargetNAS}, targets.Names())
		_, err = targets.Get(job.TargetAS400)
		require.Error(t, err)
	})

	t.Run("local mode without root fails", func(t *testing.T) {
		_, err := BuildTargets(ctx, config.SinkConfig{Mode: blobsink.ModeLocal}, slog.Default())
		require.Error(t, err)
	})
}

func TestNewApplication_WithoutCredentials(t *testing.T) {
	cfg := localConfig(t)

	app, err := NewApplication(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Nil(t, app.Pipeline)
	assert.NotNil(t, app.DropFolder)
	assert.NotNil(t, app.Notifier)
	assert.Nil(t, app.DB())

	ledger, err := app.Ledgers.Open(context.Background(), "daily-nas")
	require.NoError(t, err)
	require.NoError(t, ledger.Record(context.Background(), "r-1"))
	ok, err := ledger.Contains(context.Background(), "r-1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = buildBackgroundServices(app)
	require.Error(t, err)
}

func TestNewApplication_WithCredentials(t *testing.T) {
	cfg := localConfig(t)
	cfg.Vendor = config.VendorConfig{
		RefreshToken: "Atzr|token",
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     "https://sellingpartnerapi-na.amazon.com",
	}
	cfg.Pipeline.Jobs = []string{job.NameDailyNAS, job.NameSettlements}

	app, err := NewApplication(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NotNil(t, app.Pipeline)
	services, err := buildBackgroundServices(app)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, config.ServiceModePipelines, services[0].mode)
	assert.Equal(t, config.ServiceModeDropFolder, services[1].mode)
}

func TestNewApplication_UnknownJobOverride(t *testing.T) {
	cfg := localConfig(t)
	cfg.Jobs = config.JobSettings{Overrides: map[string]config.JobOverride{"hourly": {}}}

	_, err := NewApplication(context.Background(), cfg, slog.Default())
	require.Error(t, err)
}

func TestOpenLedgerStore(t *testing.T) {
	cfg := localConfig(t)
	app, err := OpenLedgerStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.NotNil(t, app.Ledgers)
	assert.Nil(t, app.Pipeline)

	cfg.Ledger.Backend = "etcd"
	_, err = OpenLedgerStore(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestNewLogger_FanOutToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")
	var stdout bytes.Buffer

	logger, closeFn := newLogger(&stdout, config.LoggingConfig{Level: "debug", File: path})
	logger.Debug("hello", "job", "daily-nas")
	require.NoError(t, closeFn())

	assert.Contains(t, stdout.String(), `"msg":"hello"`)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"job":"daily-nas"`)
}

func TestNewLogger_StdoutOnly(t *testing.T) {
	var stdout bytes.Buffer
	logger, closeFn := newLogger(&stdout, config.LoggingConfig{Level: "info"})
	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, closeFn())

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "shown")
}

func TestBuildFailureNotifier_TagsComponentOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := buildFailureNotifier(logger, config.ObservabilityNotificationsConfig{
		Enabled: true,
		Slack:   config.SlackNotificationConfig{Enabled: true, WebhookURL: srv.URL},
	})
	require.True(t, svc.Enabled())

	svc.NotifyRunFailure(context.Background(), notify.RunFailurePayload{RunID: "run-1", Job: "settlements"})

	line := buf.String()
	require.Contains(t, line, "failure notifier delivery error")
	assert.Equal(t, 1, bytes.Count([]byte(line), []byte(`"component":"failure_notifier"`)))
}
