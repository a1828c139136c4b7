package httpcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchJSONCachesAcrossCalls(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hello":"world"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(dir)

	res1, err := c.FetchJSON(context.Background(), srv.URL, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "world", res1.Get("hello").String())

	res2, err := c.FetchJSON(context.Background(), srv.URL, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "world", res2.Get("hello").String())

	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "second fetch should be served from cache")
}

func TestFetchJSONForceRefresh(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	c := New(t.TempDir())
	_, err := c.FetchJSON(context.Background(), srv.URL, DefaultOptions())
	require.NoError(t, err)

	_, err = c.FetchJSON(context.Background(), srv.URL, Options{UseCache: true, ForceRefresh: true})
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestFetchJSONNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(t.TempDir())
	_, err := c.FetchJSON(context.Background(), srv.URL, DefaultOptions())
	require.Error(t, err)
}

func TestFetchJSONInvalidJSONIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(t.TempDir())
	_, err := c.FetchJSON(context.Background(), srv.URL, DefaultOptions())
	require.Error(t, err)
}

func TestDownloadFileStreamsToDestAndCreatesParentDirs(t *testing.T) {
	payload := []byte("binary-content-blob")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	c := New(t.TempDir())
	dest := filepath.Join(t.TempDir(), "nested", "dir", "file.bin")

	err := c.DownloadFile(context.Background(), srv.URL, dest, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadFileObserverReceivesProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	c := New(t.TempDir())
	var lastRead int64
	obs := observerFunc(func(url string, bytesRead, total int64) {
		lastRead = bytesRead
	})

	dest := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, c.DownloadFile(context.Background(), srv.URL, dest, obs))
	assert.Equal(t, int64(len("hello world")), lastRead)
}

func TestPurgeIsTolerantOfMissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, c.Purge())
}

type observerFunc func(url string, bytesRead, total int64)

func (f observerFunc) OnProgress(url string, bytesRead, total int64) { f(url, bytesRead, total) }
