package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
	"github.com/target/report-relay/internal/mocks"
)

const ledgerTSV = "Date\tFNSKU\tASIN\tMSKU\tEnding Warehouse Balance\n03/13/2024\tX001\tB00TEST\tSKU-1\t42\n"

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type fetchFixture struct {
	reports *mocks.MockReportAPI
	docs    *mocks.MockDocumentAPI
	sess    *Session
	fetcher *ReportFetcher
}

func newFetchFixture(t *testing.T) fetchFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialProvider(ctrl)
	creds.EXPECT().AccessToken(gomock.Any()).Return(freshToken("tok"), nil).AnyTimes()
	reports := mocks.NewMockReportAPI(ctrl)
	docs := mocks.NewMockDocumentAPI(ctrl)
	return fetchFixture{
		reports: reports,
		docs:    docs,
		sess:    NewSession(creds),
		fetcher: NewReportFetcher(FetcherOptions{
			Reports:   reports,
			Documents: docs,
			Retry:     FetchRetry{Backoff: time.Millisecond},
		}),
	}
}

func (f fetchFixture) resolves(times int) {
	f.reports.EXPECT().GetReportDocument(gomock.Any(), "tok", "DOC-1").
		Return(model.DocumentLocation{DocumentRef: "DOC-1", URL: "https://example.com/doc"}, nil).Times(times)
}

func TestFetch_GzipRoundTrip(t *testing.T) {
	f := newFetchFixture(t)
	f.resolves(1)
	f.docs.EXPECT().Download(gomock.Any(), "https://example.com/doc").Return(gzipped(t, []byte(ledgerTSV)), nil)

	w := model.Window{Start: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)}
	doc, err := f.fetcher.Fetch(context.Background(), f.sess, "R1", "DOC-1", w)
	require.NoError(t, err)
	assert.Equal(t, ledgerTSV, string(doc.Content))
	assert.Equal(t, "R1", doc.JobID)
	assert.Equal(t, w.Start, doc.DataStart)
	assert.Equal(t, w.End, doc.DataEnd)
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	f := newFetchFixture(t)
	f.resolves(3)
	transient := apperrors.FetchError(nil, "status 503", true)
	gomock.InOrder(
		f.docs.EXPECT().Download(gomock.Any(), gomock.Any()).Return(nil, transient).Times(2),
		f.docs.EXPECT().Download(gomock.Any(), gomock.Any()).Return([]byte(ledgerTSV), nil),
	)

	doc, err := f.fetcher.Fetch(context.Background(), f.sess, "R1", "DOC-1", model.Window{})
	require.NoError(t, err)
	assert.Equal(t, ledgerTSV, string(doc.Content))
}

func TestFetch_GivesUpAfterThreeAttempts(t *testing.T) {
	f := newFetchFixture(t)
	f.resolves(3)
	f.docs.EXPECT().Download(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.FetchError(nil, "status 429", true)).Times(3)

	_, err := f.fetcher.Fetch(context.Background(), f.sess, "R1", "DOC-1", model.Window{})
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
}

func TestFetch_PermanentFailureIsNotRetried(t *testing.T) {
	f := newFetchFixture(t)
	f.resolves(1)
	f.docs.EXPECT().Download(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.FetchError(nil, "status 403", false)).Times(1)

	_, err := f.fetcher.Fetch(context.Background(), f.sess, "R1", "DOC-1", model.Window{})
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
	assert.False(t, apperrors.IsRetryable(err))
}

func TestFetch_MissingDocumentRef(t *testing.T) {
	f := newFetchFixture(t)
	_, err := f.fetcher.Fetch(context.Background(), f.sess, "R1", "", model.Window{})
	assert.True(t, apperrors.IsFetch(err))
}

func TestFetch_RetriesCorruptPayload(t *testing.T) {
	f := newFetchFixture(t)
	f.resolves(2)
	full := gzipped(t, []byte(ledgerTSV))
	gomock.InOrder(
		f.docs.EXPECT().Download(gomock.Any(), gomock.Any()).Return(full[:len(full)/2], nil),
		f.docs.EXPECT().Download(gomock.Any(), gomock.Any()).Return(full, nil),
	)

	doc, err := f.fetcher.Fetch(context.Background(), f.sess, "R1", "DOC-1", model.Window{})
	require.NoError(t, err)
	assert.Equal(t, ledgerTSV, string(doc.Content))
}

func TestFetch_CorruptPayloadGivesUpAfterThreeAttempts(t *testing.T) {
	f := newFetchFixture(t)
	f.resolves(3)
	f.docs.EXPECT().Download(gomock.Any(), gomock.Any()).Return([]byte{0x1f, 0x8b, 0x00, 0x01}, nil).Times(3)

	_, err := f.fetcher.Fetch(context.Background(), f.sess, "R1", "DOC-1", model.Window{})
	require.Error(t, err)
	assert.True(t, apperrors.IsDecode(err))
	assert.Contains(t, err.Error(), "report R1")
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		want    string
		wantErr bool
	}{
		{name: "plain utf-8", raw: []byte("a\tb\n"), want: "a\tb\n"},
		{name: "utf-8 bom stripped", raw: append([]byte{0xef, 0xbb, 0xbf}, "a\tb\n"...), want: "a\tb\n"},
		{name: "utf-16le with bom", raw: []byte{0xff, 0xfe, 'a', 0, '\t', 0, 0xe9, 0}, want: "a\té"},
		{name: "utf-16be with bom", raw: []byte{0xfe, 0xff, 0, 'a', 0, '\t', 0, 0xe9}, want: "a\té"},
		{name: "non ascii utf-8", raw: []byte("Café\n"), want: "Café\n"},
		{name: "empty", raw: nil, want: ""},
		{name: "invalid utf-8", raw: []byte{'a', 0xc3, 0x28}, wantErr: true},
		{name: "truncated gzip", raw: []byte{0x1f, 0x8b, 0x08}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsDecode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecode_GzipWithBOM(t *testing.T) {
	payload := append([]byte{0xef, 0xbb, 0xbf}, ledgerTSV...)
	got, err := Decode(gzipped(t, payload))
	require.NoError(t, err)
	assert.Equal(t, ledgerTSV, string(got))
}

func TestShipmentTSV(t *testing.T) {
	out, err := ShipmentTSV([]model.ShipmentItem{{
		ShipmentID:            "FBA1",
		SellerSKU:             "SKU-1",
		FulfillmentNetworkSKU: "X001",
		QuantityShipped:       "10",
		QuantityReceived:      "0",
		QuantityInCase:        "5",
		PrepInstruction:       "Labeling",
		PrepOwner:             "SELLER",
	}})
	require.NoError(t, err)
	assert.Equal(t,
		"ShipmentId\tSellerSKU\tFulfillmentNetworkSKU\tQuantityShipped\tQuantityReceived\tQuantityInCase\tPrepInstruction\tPrepOwner\n"+
			"FBA1\tSKU-1\tX001\t10\t0\t5\tLabeling\tSELLER\n",
		string(out))
}
