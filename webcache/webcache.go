// Package webcache resolves document URIs to local files, downloading remote
// documents into an on-disk cache.
package webcache

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/time/rate"
)

const (
	VERSION = "0.1.0"

	// DefaultRequestsPerSecond keeps remote fetches within the SEC limit of
	// 10 requests per second.
	DefaultRequestsPerSecond = 10

	// SecEmailEnvVar is the environment variable name for the contact email
	// sent in the User-Agent header.
	SecEmailEnvVar = "SEC_EMAIL"

	lockRetryInterval = 50 * time.Millisecond
)

var (
	// ErrNotFound reports a local file that does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrNotCached reports a remote document that is absent from the cache
	// while working offline.
	ErrNotCached = errors.New("not in cache and working offline")
)

// Config configures a Cache.
type Config struct {
	Dir               string        // cache root, defaults to the user cache dir
	UserAgent         string        // sent with every request
	RequestsPerSecond float64       // fetch rate limit
	Burst             int           // fetch burst size
	Timeout           time.Duration // per-request timeout
	WorkOffline       bool          // never go to the network
}

// Cache maps URIs to local files.
type Cache struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// New returns a cache configured by cfg, filling in defaults.
func New(cfg Config) *Cache {
	if cfg.Dir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			cfg.Dir = filepath.Join(dir, "goxbrl")
		} else {
			cfg.Dir = filepath.Join(os.TempDir(), "goxbrl")
		}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "go-xbrl/" + VERSION
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Cache{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.cfg.Dir
}

// EmailFromEnv retrieves the contact email from the environment.
func EmailFromEnv() (string, error) {
	email := os.Getenv(SecEmailEnvVar)
	if email == "" {
		return "", fmt.Errorf("contact email required: set %s environment variable or use --email flag", SecEmailEnvVar)
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return "", fmt.Errorf("invalid email format: %s", email)
	}
	return email, nil
}

// BuildUserAgent creates a User-Agent string carrying a contact email, as
// required by sec.gov.
func BuildUserAgent(email string) string {
	return fmt.Sprintf("go-xbrl/%s (%s)", VERSION, email)
}

func isRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// NormalizeURL resolves uri against base, where base names a file (or a
// directory when it ends with a slash). Remote URIs keep URL semantics, local
// ones become clean absolute paths. It returns "" when uri is empty.
func (c *Cache) NormalizeURL(uri, base string) string {
	uri = strings.TrimSpace(uri)
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		uri = uri[:i]
	}
	if uri == "" {
		return ""
	}
	if strings.HasPrefix(uri, "file://") {
		uri = fileURIPath(uri)
	}
	if isRemote(uri) {
		u, err := url.Parse(uri)
		if err != nil {
			return uri
		}
		return u.ResolveReference(&url.URL{}).String()
	}
	if strings.HasPrefix(base, "file://") {
		base = fileURIPath(base)
	}
	if isRemote(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		ref, err := url.Parse(filepath.ToSlash(uri))
		if err != nil {
			return ""
		}
		return b.ResolveReference(ref).String()
	}
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri)
	}
	if base == "" {
		abs, err := filepath.Abs(uri)
		if err != nil {
			return filepath.Clean(uri)
		}
		return abs
	}
	joined := filepath.Join(filepath.Dir(base), uri)
	if !filepath.IsAbs(joined) {
		if abs, err := filepath.Abs(joined); err == nil {
			return abs
		}
	}
	return filepath.Clean(joined)
}

func fileURIPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// IsArchiveMember reports whether uri addresses a file inside a zip archive,
// written as path/to/archive.zip/member/path.
func (c *Cache) IsArchiveMember(uri string) bool {
	_, _, ok := splitArchive(uri)
	return ok
}

func splitArchive(uri string) (archive, member string, ok bool) {
	lower := strings.ToLower(uri)
	i := strings.Index(lower, ".zip/")
	if i < 0 {
		return "", "", false
	}
	return uri[:i+len(".zip")], uri[i+len(".zip/"):], true
}

// CachePath returns where a remote uri is stored in the cache.
func (c *Cache) CachePath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", uri, err)
	}
	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return filepath.Join(c.cfg.Dir, u.Scheme, u.Host, filepath.FromSlash(p)), nil
}

// GetLocalPath returns a local file holding uri, downloading it into the
// cache when needed. reload forces a fresh download.
func (c *Cache) GetLocalPath(ctx context.Context, uri string, reload bool) (string, error) {
	if !isRemote(uri) {
		if c.IsArchiveMember(uri) {
			return uri, nil
		}
		if _, err := os.Stat(uri); err != nil {
			return "", fmt.Errorf("%s: %w", uri, ErrNotFound)
		}
		return uri, nil
	}
	dest, err := c.CachePath(uri)
	if err != nil {
		return "", err
	}
	if !reload {
		if _, err := os.Stat(dest); err == nil {
			return dest, nil
		}
	}
	if c.cfg.WorkOffline {
		return "", fmt.Errorf("%s: %w", uri, ErrNotCached)
	}
	if err := c.download(ctx, uri, dest, reload); err != nil {
		return "", err
	}
	return dest, nil
}

// download fetches uri into dest. A file lock keeps concurrent processes
// sharing the cache from writing the same entry twice.
func (c *Cache) download(ctx context.Context, uri, dest string, reload bool) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	lock := flock.New(dest + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("failed to lock cache entry: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock cache entry %s", dest)
	}
	defer lock.Unlock()

	if !reload {
		if _, err := os.Stat(dest); err == nil {
			return nil
		}
	}

	body, err := c.fetch(ctx, uri)
	if err != nil {
		return err
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	return nil
}

// fetch performs one rate-limited GET.
func (c *Cache) fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", uri, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// Open opens a local path returned by GetLocalPath, including archive members.
func (c *Cache) Open(path string) (io.ReadCloser, error) {
	archive, member, ok := splitArchive(path)
	if !ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return f, nil
	}
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archive, err)
	}
	member = filepath.ToSlash(member)
	for _, f := range zr.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("failed to open %s in %s: %w", member, archive, err)
		}
		return &archiveReader{ReadCloser: rc, archive: zr}, nil
	}
	zr.Close()
	return nil, fmt.Errorf("%s in %s: %w", member, archive, ErrNotFound)
}

type archiveReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (r *archiveReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.archive.Close(); err == nil {
		err = cerr
	}
	return err
}
