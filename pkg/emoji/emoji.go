// Package emoji resolves GroupMe "powerup" emoji references to downloadable
// image bundles. Messages carry placeholder tokens whose charmap entries name
// a pack id and an index within that pack; the pack catalog maps those to a
// transliteration string and per-resolution zip assets.
package emoji

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCatalogURL is the production powerup catalog endpoint.
const DefaultCatalogURL = "https://powerup.groupme.com/powerups"

// CharmapRef identifies one emoji: a pack and an index within it.
type CharmapRef struct {
	PackID int `json:"pack_id"`
	Index  int `json:"index"`
}

// FromPairs converts raw charmap pairs as returned by the message API
// ([[packID, index], ...]) into refs. Malformed entries are dropped.
func FromPairs(pairs [][]int) []CharmapRef {
	refs := make([]CharmapRef, 0, len(pairs))
	for _, p := range pairs {
		if len(p) < 2 {
			continue
		}
		refs = append(refs, CharmapRef{PackID: p[0], Index: p[1]})
	}
	return refs
}

// Pack is one entry of the powerup catalog.
type Pack struct {
	Meta struct {
		PackID           int      `json:"pack_id"`
		Transliterations []string `json:"transliterations"`
		Inline           []struct {
			ZipURL string `json:"zip_url"`
		} `json:"inline"`
	} `json:"meta"`
}

// Asset is a resolved emoji: its transliteration and the zip bundle holding
// its image at the requested resolution.
type Asset struct {
	Transliteration string
	ZipURL          string
}

// Client fetches the powerup catalog and emoji asset bundles.
type Client struct {
	catalogURL string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithCatalogURL points the client at a different catalog endpoint.
func WithCatalogURL(u string) Option {
	return func(c *Client) { c.catalogURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		catalogURL: DefaultCatalogURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Packs fetches the full powerup catalog.
func (c *Client) Packs(ctx context.Context) ([]Pack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.catalogURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching powerup catalog: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching powerup catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not fetch powerup emoji data: request returned %d", resp.StatusCode)
	}

	var envelope struct {
		Powerups []Pack `json:"powerups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding powerup catalog: %w", err)
	}
	return envelope.Powerups, nil
}

// Resolve looks up one charmap ref at the given resolution tier (1 lowest,
// 5 highest). An unknown pack or out-of-range index resolves to nil rather
// than an error, since stale charmaps occur in old messages.
func (c *Client) Resolve(ctx context.Context, ref CharmapRef, resolution int) (*Asset, error) {
	if resolution < 1 || resolution > 5 {
		return nil, fmt.Errorf("emoji resolution must be between 1 and 5, got %d", resolution)
	}

	packs, err := c.Packs(ctx)
	if err != nil {
		return nil, err
	}

	for _, pack := range packs {
		if pack.Meta.PackID != ref.PackID {
			continue
		}
		if ref.Index < 0 || ref.Index >= len(pack.Meta.Transliterations) {
			return nil, nil
		}
		if resolution > len(pack.Meta.Inline) {
			return nil, fmt.Errorf("pack %d has no assets at resolution %d", ref.PackID, resolution)
		}
		return &Asset{
			Transliteration: pack.Meta.Transliterations[ref.Index],
			ZipURL:          pack.Meta.Inline[resolution-1].ZipURL,
		}, nil
	}
	return nil, nil
}

// Download fetches the asset's zip bundle and extracts it under destDir,
// returning the written file paths.
func (c *Client) Download(ctx context.Context, asset *Asset, destDir string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.ZipURL, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading emoji images: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading emoji images: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to retrieve emoji images: request returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("downloading emoji images: %w", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("reading emoji bundle: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	var written []string
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Reject entries that would escape destDir.
		name := filepath.Clean(f.Name)
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			return nil, fmt.Errorf("emoji bundle entry %q escapes destination directory", f.Name)
		}

		path := filepath.Join(destDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		src, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading emoji bundle: %w", err)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("reading emoji bundle: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}
