// SPDX-License-Identifier: MPL-2.0

package gogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gogunpack/gogunpack/internal/testutil"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DefaultMaxAge is the age after which EnsureFresh re-downloads.
	DefaultMaxAge = 7 * 24 * time.Hour
	// DefaultCacheSize bounds the number of memoized lookups.
	DefaultCacheSize = 4096

	lookupQuery = `SELECT title FROM products WHERE search_title = ?`
)

var (
	// ErrInvalidDatabase is returned when a downloaded file fails validation.
	ErrInvalidDatabase = errors.New("invalid product database")
	// ErrNoURL is returned by Download when no source URL is configured.
	ErrNoURL = errors.New("no product database URL configured")
)

type (
	// Options configures a Cache.
	Options struct {
		// Path is the local database file.
		Path string
		// URL is the download source used by Download and EnsureFresh.
		URL string
		// MaxAge is the staleness window. Defaults to DefaultMaxAge.
		MaxAge time.Duration
		// AutoUpdate lets EnsureFresh replace a stale file.
		AutoUpdate bool
		// HTTPClient defaults to http.DefaultClient.
		HTTPClient *http.Client
		// Clock defaults to the system clock.
		Clock testutil.Clock
		// CacheSize defaults to DefaultCacheSize.
		CacheSize int
		// UserAgent is sent with download requests.
		UserAgent string
	}

	// Cache looks up product names in the local database and memoizes the
	// answers, including misses.
	Cache struct {
		opts Options

		mu   sync.Mutex
		db   *sql.DB
		memo *lru.Cache[string, lookupResult]
	}

	lookupResult struct {
		name  string
		found bool
	}
)

// Open creates a Cache. It neither opens the database nor touches the network.
func Open(opts Options) (*Cache, error) {
	if opts.Path == "" {
		return nil, errors.New("gogdb: path must not be empty")
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = testutil.RealClock{}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "gogunpack"
	}

	memo, err := lru.New[string, lookupResult](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}
	return &Cache{opts: opts, memo: memo}, nil
}

// Path returns the local database file.
func (c *Cache) Path() string { return c.opts.Path }

// Available reports whether the local database file exists.
func (c *Cache) Available() bool {
	info, err := os.Stat(c.opts.Path)
	return err == nil && !info.IsDir()
}

// LookupName returns the product title whose search title equals key with
// underscores removed. Titles are reduced to ASCII and stripped of
// characters that are not allowed in file names.
func (c *Cache) LookupName(ctx context.Context, key string) (string, bool) {
	searchKey := strings.ReplaceAll(key, "_", "")
	if res, ok := c.memo.Get(searchKey); ok {
		return res.name, res.found
	}

	res, err := c.query(ctx, searchKey)
	if err != nil {
		slog.Error("product database query failed", "key", searchKey, "error", err)
		return "", false
	}
	c.memo.Add(searchKey, res)

	if res.found {
		slog.Debug("found product name", "key", searchKey, "name", res.name)
	} else {
		slog.Debug("no product found", "key", searchKey)
	}
	return res.name, res.found
}

func (c *Cache) query(ctx context.Context, searchKey string) (lookupResult, error) {
	db, err := c.handle()
	if err != nil || db == nil {
		return lookupResult{}, err
	}

	var title sql.NullString
	err = db.QueryRowContext(ctx, lookupQuery, searchKey).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return lookupResult{}, nil
	}
	if err != nil {
		return lookupResult{}, err
	}

	name := cleanTitle(title.String)
	return lookupResult{name: name, found: name != ""}, nil
}

// handle opens the database on first use. A missing file yields a nil handle.
func (c *Cache) handle() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}
	if !c.Available() {
		return nil, nil
	}
	db, err := openReadOnly(c.opts.Path)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// reset drops the open handle and memoized answers after the file changed.
func (c *Cache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		_ = c.db.Close()
		c.db = nil
	}
	c.memo.Purge()
}

// Close releases the database handle.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// openReadOnly opens path as a read-only SQLite URI. The path is made
// absolute first; a relative one would be parsed as the URI authority.
func openReadOnly(path string) (*sql.DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	uriPath := filepath.ToSlash(abs)
	if !strings.HasPrefix(uriPath, "/") {
		uriPath = "/" + uriPath
	}
	dsn := (&url.URL{Scheme: "file", Path: uriPath, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

func cleanTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || strings.ContainsRune(`\/:*?"<>|`, r) {
			return -1
		}
		return r
	}, title)
}
