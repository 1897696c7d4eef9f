// SPDX-License-Identifier: MPL-2.0

package gogdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureFresh downloads the database when the local file is missing, or
// when AutoUpdate is set and the file is older than MaxAge. A fresh file is
// left untouched and no request is made.
func (c *Cache) EnsureFresh(ctx context.Context) error {
	info, err := os.Stat(c.opts.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Warn("product database not found, downloading", "path", c.opts.Path)
	case err != nil:
		return fmt.Errorf("stat product database: %w", err)
	case !c.opts.AutoUpdate:
		return nil
	case c.opts.Clock.Since(info.ModTime()) <= c.opts.MaxAge:
		slog.Debug("product database is up to date", "path", c.opts.Path, "modified", info.ModTime())
		return nil
	default:
		slog.Info("product database is out of date, downloading", "path", c.opts.Path, "modified", info.ModTime())
	}
	return c.Download(ctx)
}

// Download fetches the database to "<path>.temp", validates it and renames
// it over the current file. On failure the current file is kept.
func (c *Cache) Download(ctx context.Context) error {
	if c.opts.URL == "" {
		return ErrNoURL
	}

	slog.Info("downloading product database", "url", c.opts.URL)

	resp, err := c.doRequest(ctx, c.opts.URL)
	if err != nil {
		return fmt.Errorf("downloading product database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading product database: unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(c.opts.Path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	tmpPath := c.opts.Path + ".temp"
	if err := writeFile(tmpPath, resp.Body); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	slog.Debug("downloaded product database to temporary location", "path", tmpPath)

	if err := Validate(ctx, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	c.reset()
	if err := os.Rename(tmpPath, c.opts.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace product database: %w", err)
	}

	slog.Info("updated product database", "path", c.opts.Path)
	return nil
}

// Validate checks that path is a SQLite database with a non-empty products table.
func Validate(ctx context.Context, path string) error {
	db, err := openReadOnly(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDatabase, err)
	}
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='products' LIMIT 1`).Scan(&name)
	if err != nil {
		return fmt.Errorf("%w: products table: %w", ErrInvalidDatabase, err)
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("%w: count products: %w", ErrInvalidDatabase, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: products table is empty", ErrInvalidDatabase)
	}
	return nil
}

// doRequest creates and executes a GET request with the configured user agent.
func (c *Cache) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}
