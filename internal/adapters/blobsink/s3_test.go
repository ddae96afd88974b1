package blobsink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		b.objects[key] = data
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if key == "reports" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if _, ok := b.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Sink(t *testing.T) {
	t.Parallel()

	bucket := &fakeBucket{objects: map[string][]byte{}}
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	sink, err := NewS3Sink(context.Background(), S3Config{
		Endpoint:        srv.URL,
		Bucket:          "reports",
		Prefix:          "/relay/nas/",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		HTTPClient:      srv.Client(),
	})
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := sink.Exists(ctx, "Settlements/disb_1.tsv")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sink.Store(ctx, `Settlements\disb_1.tsv`, []byte("row\n")))

	bucket.mu.Lock()
	assert.Equal(t, []byte("row\n"), bucket.objects["reports/relay/nas/Settlements/disb_1.tsv"])
	bucket.mu.Unlock()

	ok, err = sink.Exists(ctx, "Settlements/disb_1.tsv")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, sink.Ping(ctx))
}
