// Package httpcache implements the metadata HTTP cache of spec.md §4.2:
// fetch-and-cache JSON documents by URL, keyed content-addressably, plus
// binary file downloads that bypass the cache.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/YPSH-DGC/YPMS/internal/config"
	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/YPSH-DGC/YPMS/internal/log"
	"github.com/tidwall/gjson"
)

// downloadChunkSize is the streaming chunk size for binary downloads,
// per spec.md §4.2 ("stream in 64 KiB chunks").
const downloadChunkSize = 64 * 1024

// Observer receives progress updates during a file download. It is an
// optional, out-of-core hook (spec.md §4.2: "observer is out of core
// scope; the core only guarantees that download either produces the file
// or fails with an error").
type Observer interface {
	OnProgress(url string, bytesRead, totalBytes int64)
}

// Cache fetches and caches JSON documents by URL under a cache directory.
type Cache struct {
	Dir    string
	client *http.Client
	logger log.Logger
}

// New creates a Cache rooted at dir, using a client with the configured
// HTTP timeout (spec.md §4.2: 20-second timeout by default).
func New(dir string) *Cache {
	return &Cache{
		Dir:    dir,
		client: newHTTPClient(),
		logger: log.Default(),
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: config.HTTPTimeout(),
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Options controls a single FetchJSON call.
type Options struct {
	// UseCache enables checking the on-disk cache before fetching. Default true.
	UseCache bool
	// ForceRefresh skips the cache check and always fetches, still
	// writing the result back to cache afterward.
	ForceRefresh bool
}

// DefaultOptions returns {UseCache: true, ForceRefresh: false}.
func DefaultOptions() Options {
	return Options{UseCache: true, ForceRefresh: false}
}

// keyFor returns the content-addressable cache file path for a URL: the
// hex SHA-256 of the URL with a .json suffix, per spec.md §4.2.
func (c *Cache) keyFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.Dir, hex.EncodeToString(sum[:])+".json")
}

// FetchJSON returns the parsed JSON document at url as a gjson.Result,
// consulting and populating the cache per spec.md §4.2.
func (c *Cache) FetchJSON(ctx context.Context, url string, opts Options) (gjson.Result, error) {
	path := c.keyFor(url)

	if opts.UseCache && !opts.ForceRefresh {
		if data, err := os.ReadFile(path); err == nil {
			parsed := gjson.ParseBytes(data)
			if parsed.Exists() {
				c.logger.Debug("metadata cache hit", "url", url)
				return parsed, nil
			}
		}
	}

	data, err := c.fetch(ctx, url)
	if err != nil {
		return gjson.Result{}, err
	}

	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errs.New(errs.KindDecode, "invalid JSON at %s", url)
	}
	parsed := gjson.ParseBytes(data)

	if opts.UseCache {
		// Cache-write failures are non-fatal per spec.md §4.2.
		if werr := c.writeCache(path, data); werr != nil {
			c.logger.Warn("failed to write metadata cache", "url", url, "error", werr)
		}
	}

	return parsed, nil
}

func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, err, "build request for %s", url)
	}
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.ClassifyNetwork(err, fmt.Sprintf("GET %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.KindNetwork, "HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, err, "read response body for %s", url)
	}

	return data, nil
}

func (c *Cache) writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Purge recursively deletes the cache tree, tolerant of missing entries,
// per spec.md §4.2.
func (c *Cache) Purge() error {
	if err := os.RemoveAll(c.Dir); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.KindFilesystem, err, "purge cache directory %s", c.Dir)
	}
	return os.MkdirAll(c.Dir, 0o755)
}

// DownloadFile streams url to destPath, bypassing the metadata cache,
// creating destPath's parent directory, per spec.md §4.2.
func (c *Cache) DownloadFile(ctx context.Context, url, destPath string, observer Observer) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errs.Wrap(errs.KindFilesystem, err, "create parent directory for %s", destPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.Wrap(errs.KindNetwork, err, "build download request for %s", url)
	}
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.ClassifyNetwork(err, fmt.Sprintf("download %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.KindNetwork, "HTTP %d for %s", resp.StatusCode, url)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return errs.Wrap(errs.KindFilesystem, err, "create destination file %s", destPath)
	}
	defer out.Close()

	total := resp.ContentLength
	var read int64
	buf := make([]byte, downloadChunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return errs.Wrap(errs.KindFilesystem, werr, "write to %s", destPath)
			}
			read += int64(n)
			if observer != nil {
				observer.OnProgress(url, read, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return errs.ClassifyNetwork(rerr, fmt.Sprintf("stream download %s", url))
		}
	}

	return nil
}
