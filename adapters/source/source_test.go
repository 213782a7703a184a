package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"phddash/internal/errors"
)

const sampleTSV = "Year\tDoctorate recipients\n1958\t8,773\n"

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestHTTPFetcher_Success(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/tab-separated-values")
		io.WriteString(w, sampleTSV)
	}))
	defer server.Close()

	rc, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL+"/phds.tsv")
	require.NoError(t, err)
	assert.Equal(t, sampleTSV, readAll(t, rc))
	assert.Equal(t, userAgent, gotAgent)
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPFetcherWithClient(server.Client()).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPFetcher_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleTSV)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher(time.Second).Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchError, errors.GetCode(err))
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phds.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sampleTSV), 0o644))

	rc, err := FileFetcher{}.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, sampleTSV, readAll(t, rc))

	rc, err = FileFetcher{}.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, sampleTSV, readAll(t, rc))

	_, err = FileFetcher{}.Fetch(context.Background(), filepath.Join(dir, "missing.tsv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchError, errors.GetCode(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type MockObjectGetter struct {
	mock.Mock
}

func (m *MockObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, *params.Bucket, *params.Key)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func TestS3Fetcher(t *testing.T) {
	getter := &MockObjectGetter{}
	getter.On("GetObject", mock.Anything, "datasets", "phd/by_year.tsv").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(sampleTSV))}, nil).Once()
	getter.On("GetObject", mock.Anything, "datasets", "absent.tsv").
		Return(nil, io.ErrUnexpectedEOF).Once()

	fetcher := NewS3FetcherWithClient(getter)

	rc, err := fetcher.Fetch(context.Background(), "s3://datasets/phd/by_year.tsv")
	require.NoError(t, err)
	assert.Equal(t, sampleTSV, readAll(t, rc))

	_, err = fetcher.Fetch(context.Background(), "s3://datasets/absent.tsv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchError, errors.GetCode(err))

	getter.AssertExpectations(t)
}

func TestParseS3Location(t *testing.T) {
	bucket, key, err := ParseS3Location("s3://bucket/a/b.tsv")
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "a/b.tsv", key)

	for _, bad := range []string{"s3://bucket", "s3:///key", "https://bucket/key"} {
		_, _, err := ParseS3Location(bad)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), bad)
	}
}

type staticFetcher string

func (s staticFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewBufferString(string(s))), nil
}

func TestRouter(t *testing.T) {
	router := NewRouter().
		Register(staticFetcher("web"), "http", "https").
		Register(staticFetcher("disk"), "", "file")

	rc, err := router.Fetch(context.Background(), "HTTPS://example.org/x.tsv")
	require.NoError(t, err)
	assert.Equal(t, "web", readAll(t, rc))

	rc, err = router.Fetch(context.Background(), "/tmp/x.tsv")
	require.NoError(t, err)
	assert.Equal(t, "disk", readAll(t, rc))

	_, err = router.Fetch(context.Background(), "ftp://example.org/x.tsv")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = router.Fetch(context.Background(), "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
