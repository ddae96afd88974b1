package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/report-relay/internal/data"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
	"github.com/target/report-relay/internal/mocks"
	"github.com/target/report-relay/internal/observability/statsd"
)

func writeQueued(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

type dropFixture struct {
	share    *mocks.MockRemoteShare
	notifier *mocks.MockNotifier
	metrics  *statsd.Recorder
	clock    *data.FixedTimeProvider
}

func newDropFixture(t *testing.T) dropFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return dropFixture{
		share:    mocks.NewMockRemoteShare(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		metrics:  &statsd.Recorder{},
		clock:    data.NewFixedTimeProvider(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)),
	}
}

func (f dropFixture) service(jobs ...model.DropFolderJob) *DropFolderService {
	return NewDropFolderService(DropFolderServiceOptions{
		Deps: DropFolderDeps{Share: f.share, Notifier: f.notifier},
		Config: DropFolderConfig{
			Jobs:       jobs,
			Recipients: []string{"ops@example.com"},
			Clock:      f.clock,
			Metrics:    f.metrics,
		},
	})
}

func TestDropFolder_UploadsFirstFileAndArchives(t *testing.T) {
	f := newDropFixture(t)
	dir := t.TempDir()
	writeQueued(t, dir, map[string]string{
		"b_second.tsv": "two",
		"a_first.tsv":  "one",
		"c_third.tsv":  "three",
	})
	job := model.DropFolderJob{Name: "Daily Ledger", FileName: "amazonia.tsv", Folder: dir}

	gomock.InOrder(
		f.share.EXPECT().Exists(gomock.Any(), "amazonia.tsv").Return(false, nil),
		f.share.EXPECT().Store(gomock.Any(), "amazonia.tsv", []byte("one")).Return(nil),
		f.notifier.EXPECT().Notify(gomock.Any(), model.Notification{
			Subject:    "Daily Ledger File: a_first.tsv Uploaded to AS400",
			Body:       "filename: a_first.tsv\nhas been uploaded as: amazonia.tsv\nand is ready for processing.\n\nRemaining files in queue folder: 2",
			Recipients: []string{"ops@example.com"},
		}).Return(nil),
	)

	n, err := f.service(job).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, filepath.Join(dir, "a_first.tsv"))
	assert.FileExists(t, filepath.Join(dir, model.ArchiveFolderName, "a_first.tsv"))
	assert.FileExists(t, filepath.Join(dir, "b_second.tsv"))

	depth := f.metrics.Named("dropfolder.queue_depth")
	require.Len(t, depth, 1)
	assert.InDelta(t, 2, depth[0].Value, 0)
}

func TestDropFolder_WaitsWhileRemoteFilePending(t *testing.T) {
	f := newDropFixture(t)
	dir := t.TempDir()
	writeQueued(t, dir, map[string]string{"a.tsv": "one"})
	job := model.DropFolderJob{Name: "Weekly", FileName: "amazonia.tsv", Folder: dir}

	f.share.EXPECT().Exists(gomock.Any(), "amazonia.tsv").Return(true, nil)

	n, err := f.service(job).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.FileExists(t, filepath.Join(dir, "a.tsv"))
}

func TestDropFolder_EmptyFolderIsSkipped(t *testing.T) {
	f := newDropFixture(t)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, model.ArchiveFolderName), 0o750))
	job := model.DropFolderJob{Name: "Daily", FileName: "amazonia.tsv", Folder: dir}

	f.share.EXPECT().Exists(gomock.Any(), "amazonia.tsv").Return(false, nil)

	n, err := f.service(job).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDropFolder_ArchiveNameCollision(t *testing.T) {
	f := newDropFixture(t)
	dir := t.TempDir()
	writeQueued(t, dir, map[string]string{"a.tsv": "new"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, model.ArchiveFolderName), 0o750))
	writeQueued(t, filepath.Join(dir, model.ArchiveFolderName), map[string]string{"a.tsv": "old"})
	job := model.DropFolderJob{Name: "Daily", FileName: "amazonia.tsv", Folder: dir}

	f.share.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil)
	f.share.EXPECT().Store(gomock.Any(), "amazonia.tsv", []byte("new")).Return(nil)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.service(job).RunOnce(context.Background())
	require.NoError(t, err)

	old, err := os.ReadFile(filepath.Join(dir, model.ArchiveFolderName, "a.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
	assert.FileExists(t, filepath.Join(dir, model.ArchiveFolderName, "a_20240315T093000.tsv"))
}

func TestDropFolder_FailingJobDoesNotStopOthers(t *testing.T) {
	f := newDropFixture(t)
	broken := model.DropFolderJob{Name: "Broken", FileName: "first.tsv", Folder: t.TempDir()}
	okDir := t.TempDir()
	writeQueued(t, okDir, map[string]string{"x.tsv": "x"})
	healthy := model.DropFolderJob{Name: "Healthy", FileName: "second.tsv", Folder: okDir}

	f.share.EXPECT().Exists(gomock.Any(), "first.tsv").Return(false, errors.New("smb: connection reset"))
	f.share.EXPECT().Exists(gomock.Any(), "second.tsv").Return(false, nil)
	f.share.EXPECT().Store(gomock.Any(), "second.tsv", []byte("x")).Return(nil)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	n, err := f.service(broken, healthy).RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
	assert.Equal(t, 1, n)
}

func TestDropFolder_UploadFailureKeepsFileQueued(t *testing.T) {
	f := newDropFixture(t)
	dir := t.TempDir()
	writeQueued(t, dir, map[string]string{"a.tsv": "one"})
	job := model.DropFolderJob{Name: "Daily", FileName: "amazonia.tsv", Folder: dir}

	f.share.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil)
	f.share.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("access denied"))

	_, err := f.service(job).RunOnce(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsSink(err))
	assert.FileExists(t, filepath.Join(dir, "a.tsv"))
}

func TestUploadNotification(t *testing.T) {
	n := UploadNotification(model.DropFolderJob{Name: "Weekly Ledger", FileName: "amazonia.tsv"}, "w3.tsv", 0, nil)
	assert.Equal(t, "Weekly Ledger File: w3.tsv Uploaded to AS400", n.Subject)
	assert.Contains(t, n.Body, "Remaining files in queue folder: 0")
	assert.False(t, n.HasRecipients())
}

func TestDropFolder_ArchiveFailureLeavesFileQueued(t *testing.T) {
	f := newDropFixture(t)
	dir := t.TempDir()
	writeQueued(t, dir, map[string]string{"a.tsv": "one"})
	// A regular file named like the archive folder makes MkdirAll fail.
	writeQueued(t, dir, map[string]string{model.ArchiveFolderName: "not a folder"})
	job := model.DropFolderJob{Name: "Daily", FileName: "amazonia.tsv", Folder: dir}

	f.share.EXPECT().Exists(gomock.Any(), "amazonia.tsv").Return(false, nil)
	f.share.EXPECT().Store(gomock.Any(), "amazonia.tsv", []byte("one")).Return(nil)

	n, err := f.service(job).RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create archive folder")
	assert.Zero(t, n)
	// The upload happened; the file stays queued and is uploaded again once
	// the host consumes the remote copy.
	assert.FileExists(t, filepath.Join(dir, "a.tsv"))
}
