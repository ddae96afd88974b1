package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   ProcessingStatus
		terminal bool
		failure  bool
	}{
		{StatusInQueue, false, false},
		{StatusInProgress, false, false},
		{StatusDone, true, false},
		{StatusCancelled, true, true},
		{StatusFatal, true, true},
		{ProcessingStatus("AWAITING_REVIEW"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.failure, tt.status.IsFailure())
		})
	}
}

func TestParseProcessingStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusDone, ParseProcessingStatus(" done "))
	assert.Equal(t, ProcessingStatus("SOMETHING_NEW"), ParseProcessingStatus("something_new"))
	assert.False(t, ParseProcessingStatus("something_new").Known())
}

func TestNewReportRequest_OwnsCollections(t *testing.T) {
	t.Parallel()

	ids := []string{"B", "A", "A"}
	opts := map[string]string{"aggregateByLocation": "FC"}
	start := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	req := NewReportRequest(ReportTypeLedgerSummary, start, end, ids, opts)

	ids[0] = "mutated"
	opts["aggregateByLocation"] = "COUNTRY"

	assert.Equal(t, []string{"A", "B"}, req.MarketplaceIDs)
	assert.Equal(t, "FC", req.Options["aggregateByLocation"])
	assert.Equal(t, start, req.DataStart)
	assert.Equal(t, end, req.DataEnd)
}

func TestAccessToken_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.True(t, AccessToken{}.Expired(now))
	assert.False(t, AccessToken{Value: "tok"}.Expired(now))
	assert.False(t, AccessToken{Value: "tok", ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, AccessToken{Value: "tok", ExpiresAt: now}.Expired(now))
}

func TestNotificationTemplate_Render(t *testing.T) {
	t.Parallel()

	tmpl := NotificationTemplate{
		Subject:    "Daily Inv Ledger: {filename} Uploaded to AS400",
		Body:       "filename: {filename}\nhas been uploaded and is ready for processing.",
		Recipients: []string{"ops@example.com"},
	}

	n := tmpl.Render("amazonia.tsv")
	assert.Equal(t, "Daily Inv Ledger: amazonia.tsv Uploaded to AS400", n.Subject)
	assert.Equal(t, "filename: amazonia.tsv\nhas been uploaded and is ready for processing.", n.Body)
	assert.True(t, n.HasRecipients())

	n.Recipients[0] = "changed@example.com"
	assert.Equal(t, "ops@example.com", tmpl.Recipients[0])
}

func TestDestination_Path(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "amazonia.tsv", Destination{}.Path("amazonia.tsv"))
	assert.Equal(t,
		"Amazon Downloads/Weekly Inventory Ledger/a.tsv",
		Destination{Dir: `Amazon Downloads\Weekly Inventory Ledger`}.Path("a.tsv"),
	)
}

func TestJobDescriptor_Validate(t *testing.T) {
	t.Parallel()

	name := func(time.Time, Window, string) string { return "x.tsv" }
	win := func(today time.Time) Window { return Window{Start: today, End: today} }

	valid := JobDescriptor{
		Name:     "daily-nas",
		Kind:     JobKindDaily,
		Report:   ReportSpec{Type: ReportTypeLedgerSummary},
		Window:   win,
		Filename: name,
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, "daily-nas", valid.LedgerName())

	missingWindow := valid
	missingWindow.Window = nil
	require.Error(t, missingWindow.Validate())

	badKind := valid
	badKind.Kind = "hourly"
	require.Error(t, badKind.Validate())

	listJob := JobDescriptor{Name: "settlements", Kind: JobKindSettlements, Filename: name, Ledger: "settlements-log"}
	require.NoError(t, listJob.Validate())
	assert.Equal(t, "settlements-log", listJob.LedgerName())
}

func TestRunResult_Counts(t *testing.T) {
	t.Parallel()

	r := RunResult{Items: []ItemResult{
		{ID: "1", Outcome: Delivered()},
		{ID: "2", Outcome: Skipped()},
		{ID: "3", Outcome: Faulted("fetch", StageFetch, "boom")},
		{ID: "4", Outcome: Terminal(StatusFatal)},
	}}
	assert.Equal(t, 1, r.Delivered())
	assert.Equal(t, 2, r.Failed())
}

func TestItemPolicy_UnmarshalText(t *testing.T) {
	t.Parallel()

	var p ItemPolicy
	require.NoError(t, p.UnmarshalText([]byte(" Fail-Fast ")))
	assert.Equal(t, ItemPolicyFailFast, p)
	require.Error(t, p.UnmarshalText([]byte("sometimes")))
}
