package resource

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krywicki/zeroshot/internal/domain/entity"
	"github.com/krywicki/zeroshot/internal/domain/service"
)

func newFileServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/facebook/bart-large-mnli/resolve/main/config.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, err := w.Write([]byte(body))
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResolver_ResolveRemote(t *testing.T) {
	t.Run("downloads on cache miss then serves from cache", func(t *testing.T) {
		var hits int32
		server := newFileServer(t, `{"model_type":"bart"}`, &hits)
		cacheDir := t.TempDir()
		resolver := NewResolver(cacheDir)
		res := entity.RemoteResource("bart-large-mnli/config", server.URL+"/facebook/bart-large-mnli/resolve/main/config.json")

		path, err := resolver.Resolve(context.Background(), res)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cacheDir, "bart-large-mnli", "config", "config.json"), path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"model_type":"bart"}`, string(data))

		again, err := resolver.Resolve(context.Background(), res)

		require.NoError(t, err)
		assert.Equal(t, path, again)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("downloads with progress bar enabled", func(t *testing.T) {
		var hits int32
		server := newFileServer(t, `{"model_type":"bart"}`, &hits)
		var progress bytes.Buffer
		resolver := NewResolver(t.TempDir(), WithProgress(&progress))
		res := entity.RemoteResource("bart-large-mnli/config", server.URL+"/facebook/bart-large-mnli/resolve/main/config.json")

		path, err := resolver.Resolve(context.Background(), res)

		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("http error leaves no file behind", func(t *testing.T) {
		var hits int32
		server := newFileServer(t, "", &hits)
		cacheDir := t.TempDir()
		resolver := NewResolver(cacheDir)
		res := entity.RemoteResource("bart-large-mnli/vocab", server.URL+"/facebook/bart-large-mnli/resolve/main/vocab.json")

		path, err := resolver.Resolve(context.Background(), res)

		assert.Empty(t, path)
		assert.ErrorIs(t, err, service.ErrResourceResolution)
		assert.Contains(t, err.Error(), "404")
		assert.NoFileExists(t, resolver.CachePath(res))
	})

	t.Run("unreachable host", func(t *testing.T) {
		resolver := NewResolver(t.TempDir())
		res := entity.RemoteResource("bart-large-mnli/vocab", "http://127.0.0.1:1/vocab.json")

		_, err := resolver.Resolve(context.Background(), res)

		assert.ErrorIs(t, err, service.ErrResourceResolution)
	})
}

func TestResolver_ResolveLocal(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "merges.txt")
		require.NoError(t, os.WriteFile(file, []byte("#version: 0.2\n"), 0o644))
		resolver := NewResolver(t.TempDir())

		path, err := resolver.Resolve(context.Background(), entity.LocalResource(file))

		require.NoError(t, err)
		assert.Equal(t, file, path)
	})

	t.Run("missing file", func(t *testing.T) {
		resolver := NewResolver(t.TempDir())

		_, err := resolver.Resolve(context.Background(), entity.LocalResource("/does/not/exist.json"))

		assert.ErrorIs(t, err, service.ErrResourceResolution)
	})
}

func TestResolver_UnknownKind(t *testing.T) {
	resolver := NewResolver(t.TempDir())

	_, err := resolver.Resolve(context.Background(), entity.Resource{Kind: "ftp"})

	assert.ErrorIs(t, err, service.ErrResourceResolution)
}

func TestResolver_Check(t *testing.T) {
	t.Run("remote resource is checked with HEAD only", func(t *testing.T) {
		methods := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods <- r.Method
			w.Header().Set("Content-Length", "1024")
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(server.Close)
		resolver := NewResolver(t.TempDir())
		res := entity.RemoteResource("bart-large-mnli/model", server.URL+"/facebook/bart-large-mnli/resolve/main/model.safetensors")

		err := resolver.Check(context.Background(), res)

		require.NoError(t, err)
		assert.Equal(t, http.MethodHead, <-methods)
		assert.NoFileExists(t, resolver.CachePath(res))
	})

	t.Run("cached remote resource skips the network", func(t *testing.T) {
		var hits int32
		server := newFileServer(t, `{"model_type":"bart"}`, &hits)
		resolver := NewResolver(t.TempDir())
		res := entity.RemoteResource("bart-large-mnli/config", server.URL+"/facebook/bart-large-mnli/resolve/main/config.json")
		_, err := resolver.Resolve(context.Background(), res)
		require.NoError(t, err)

		err = resolver.Check(context.Background(), res)

		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("missing remote resource", func(t *testing.T) {
		var hits int32
		server := newFileServer(t, "", &hits)
		resolver := NewResolver(t.TempDir())
		res := entity.RemoteResource("broken/model", server.URL+"/model.bin")

		err := resolver.Check(context.Background(), res)

		assert.ErrorIs(t, err, service.ErrResourceResolution)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("unreachable host", func(t *testing.T) {
		resolver := NewResolver(t.TempDir())
		res := entity.RemoteResource("broken/model", "http://127.0.0.1:1/model.bin")

		err := resolver.Check(context.Background(), res)

		assert.ErrorIs(t, err, service.ErrResourceResolution)
	})

	t.Run("local file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "model.safetensors")
		require.NoError(t, os.WriteFile(file, []byte("weights"), 0o644))
		resolver := NewResolver(t.TempDir())

		assert.NoError(t, resolver.Check(context.Background(), entity.LocalResource(file)))
	})

	t.Run("missing local file", func(t *testing.T) {
		resolver := NewResolver(t.TempDir())

		err := resolver.Check(context.Background(), entity.LocalResource("/models/bart/model.safetensors"))

		assert.ErrorIs(t, err, service.ErrResourceResolution)
	})

	t.Run("local directory", func(t *testing.T) {
		resolver := NewResolver(t.TempDir())

		err := resolver.Check(context.Background(), entity.LocalResource(t.TempDir()))

		assert.ErrorIs(t, err, service.ErrResourceResolution)
	})
}
