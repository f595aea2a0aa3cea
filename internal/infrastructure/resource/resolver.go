package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/krywicki/zeroshot/internal/domain/entity"
	"github.com/krywicki/zeroshot/internal/domain/service"
)

// Resolver turns resource references into local file paths, downloading
// remote resources into a cache directory on first use.
type Resolver struct {
	cacheDir   string
	httpClient *http.Client
	progress   io.Writer
	logger     *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithHTTPClient sets the client used for downloads
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// WithProgress renders download progress bars to w
func WithProgress(w io.Writer) Option {
	return func(r *Resolver) {
		r.progress = w
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver caching under cacheDir
func NewResolver(cacheDir string, opts ...Option) *Resolver {
	r := &Resolver{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Minute,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CachePath returns where a remote resource is stored in the cache
func (r *Resolver) CachePath(res entity.Resource) string {
	return filepath.Join(r.cacheDir, filepath.FromSlash(res.Name), res.FileName())
}

// Resolve returns the local path of res
func (r *Resolver) Resolve(ctx context.Context, res entity.Resource) (string, error) {
	switch res.Kind {
	case entity.ResourceKindLocal:
		if err := checkLocal(res); err != nil {
			return "", err
		}
		return res.Path, nil
	case entity.ResourceKindRemote:
		return r.resolveRemote(ctx, res)
	default:
		return "", fmt.Errorf("%w: unknown resource kind %q", service.ErrResourceResolution, res.Kind)
	}
}

// Check verifies res is reachable without fetching its content. Cached
// remote resources are not checked over the network.
func (r *Resolver) Check(ctx context.Context, res entity.Resource) error {
	switch res.Kind {
	case entity.ResourceKindLocal:
		return checkLocal(res)
	case entity.ResourceKindRemote:
		if info, err := os.Stat(r.CachePath(res)); err == nil && info.Mode().IsRegular() {
			return nil
		}
		return r.head(ctx, res)
	default:
		return fmt.Errorf("%w: unknown resource kind %q", service.ErrResourceResolution, res.Kind)
	}
}

func checkLocal(res entity.Resource) error {
	info, err := os.Stat(res.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", service.ErrResourceResolution, res.Path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", service.ErrResourceResolution, res.Path)
	}
	return nil
}

func (r *Resolver) head(ctx context.Context, res entity.Resource) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, res.URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", service.ErrResourceResolution, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to reach %s: %v", service.ErrResourceResolution, res.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned status %d", service.ErrResourceResolution, res.URL, resp.StatusCode)
	}

	r.logger.Debug("Resource reachable", zap.String("resource", res.Name), zap.String("url", res.URL))
	return nil
}

func (r *Resolver) resolveRemote(ctx context.Context, res entity.Resource) (string, error) {
	dest := r.CachePath(res)

	info, err := os.Stat(dest)
	if err == nil && info.Mode().IsRegular() {
		r.logger.Debug("Resource found in cache", zap.String("resource", res.Name), zap.String("path", dest))
		return dest, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s: %v", service.ErrResourceResolution, dest, err)
	}

	r.logger.Info("Downloading resource", zap.String("resource", res.Name), zap.String("url", res.URL))
	start := time.Now()

	if err := r.download(ctx, res, dest); err != nil {
		return "", err
	}

	r.logger.Info("Resource downloaded",
		zap.String("resource", res.Name),
		zap.String("path", dest),
		zap.Duration("elapsed", time.Since(start)),
	)
	return dest, nil
}

func (r *Resolver) download(ctx context.Context, res entity.Resource, dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create cache directory: %v", service.ErrResourceResolution, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", service.ErrResourceResolution, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch %s: %v", service.ErrResourceResolution, res.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", service.ErrResourceResolution, res.URL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, "."+res.FileName()+".*.part")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", service.ErrResourceResolution, err)
	}
	tmpPath := tmp.Name()

	_, copyErr := r.copyWithProgress(ctx, tmp, resp.Body, resp.ContentLength, res.Name)
	closeErr := tmp.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to download %s: %v", service.ErrResourceResolution, res.URL, copyErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to store %s: %v", service.ErrResourceResolution, dest, err)
	}
	return nil
}

func (r *Resolver) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, size int64, name string) (int64, error) {
	if r.progress == nil {
		return io.Copy(dst, src)
	}

	p := mpb.NewWithContext(ctx, mpb.WithOutput(r.progress), mpb.WithWidth(60))
	bar := p.AddBar(size,
		mpb.PrependDecorators(
			decor.Name(name+" ", decor.WCSyncSpaceR),
			decor.CountersKibiByte("% .1f / % .1f"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WCSyncSpace), "done"),
		),
	)

	proxy := bar.ProxyReader(src)
	n, err := io.Copy(dst, proxy)
	_ = proxy.Close()

	if err != nil {
		bar.Abort(false)
	} else {
		bar.SetTotal(-1, true)
	}
	p.Wait()

	return n, err
}
