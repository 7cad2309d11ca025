package emoji

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFromPairs(t *testing.T) {
	refs := FromPairs([][]int{{1, 42}, {3}, {2, 7, 99}, nil})
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2 (malformed entries dropped)", len(refs))
	}
	if refs[0] != (CharmapRef{PackID: 1, Index: 42}) {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1] != (CharmapRef{PackID: 2, Index: 7}) {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}

func catalogJSON() map[string]any {
	pack := func(id int, translits []string, zips ...string) map[string]any {
		inline := make([]map[string]any, 0, len(zips))
		for _, z := range zips {
			inline = append(inline, map[string]any{"zip_url": z})
		}
		return map[string]any{"meta": map[string]any{
			"pack_id":          id,
			"transliterations": translits,
			"inline":           inline,
		}}
	}
	return map[string]any{"powerups": []map[string]any{
		pack(1, []string{"grin", "wink", "sob"},
			"https://assets.example/p1-r1.zip",
			"https://assets.example/p1-r2.zip"),
		pack(4, []string{"taco"},
			"https://assets.example/p4-r1.zip"),
	}}
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalogJSON())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPacks(t *testing.T) {
	srv := catalogServer(t)
	client := NewClient(WithCatalogURL(srv.URL))

	packs, err := client.Packs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packs) != 2 {
		t.Fatalf("got %d packs, want 2", len(packs))
	}
	if packs[0].Meta.PackID != 1 || len(packs[0].Meta.Transliterations) != 3 {
		t.Errorf("pack 0 = %+v", packs[0].Meta)
	}
}

func TestPacksErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(WithCatalogURL(srv.URL)).Packs(context.Background()); err == nil {
		t.Fatal("expected an error for a failed catalog fetch")
	}
}

func TestResolve(t *testing.T) {
	srv := catalogServer(t)
	client := NewClient(WithCatalogURL(srv.URL))
	ctx := context.Background()

	asset, err := client.Resolve(ctx, CharmapRef{PackID: 1, Index: 2}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset == nil {
		t.Fatal("asset not resolved")
	}
	if asset.Transliteration != "sob" {
		t.Errorf("transliteration = %s, want sob", asset.Transliteration)
	}
	if asset.ZipURL != "https://assets.example/p1-r2.zip" {
		t.Errorf("zip url = %s", asset.ZipURL)
	}

	// Stale charmaps resolve to nil, not errors.
	asset, err = client.Resolve(ctx, CharmapRef{PackID: 99, Index: 0}, 1)
	if err != nil || asset != nil {
		t.Errorf("unknown pack = (%+v, %v), want (nil, nil)", asset, err)
	}
	asset, err = client.Resolve(ctx, CharmapRef{PackID: 1, Index: 50}, 1)
	if err != nil || asset != nil {
		t.Errorf("out-of-range index = (%+v, %v), want (nil, nil)", asset, err)
	}

	if _, err = client.Resolve(ctx, CharmapRef{PackID: 1, Index: 0}, 0); err == nil {
		t.Error("resolution 0 accepted")
	}
	if _, err = client.Resolve(ctx, CharmapRef{PackID: 1, Index: 0}, 6); err == nil {
		t.Error("resolution 6 accepted")
	}
	if _, err = client.Resolve(ctx, CharmapRef{PackID: 4, Index: 0}, 3); err == nil {
		t.Error("expected an error for a resolution tier the pack lacks")
	}
}

func zipBundle(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestDownload(t *testing.T) {
	bundle := zipBundle(t, map[string]string{
		"sob@2x.png":        "png-bytes",
		"extra/wink@2x.png": "more-png-bytes",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bundle)
	}))
	defer srv.Close()

	dest := t.TempDir()
	written, err := NewClient().Download(context.Background(),
		&Asset{Transliteration: "sob", ZipURL: srv.URL + "/p1-r2.zip"}, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("wrote %d files, want 2", len(written))
	}

	data, err := os.ReadFile(filepath.Join(dest, "sob@2x.png"))
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("extracted content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dest, "extra", "wink@2x.png")); err != nil {
		t.Errorf("nested entry not extracted: %v", err)
	}
}

func TestDownloadRejectsTraversal(t *testing.T) {
	bundle := zipBundle(t, map[string]string{"../evil.png": "nope"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bundle)
	}))
	defer srv.Close()

	dest := t.TempDir()
	_, err := NewClient().Download(context.Background(),
		&Asset{ZipURL: srv.URL + "/bundle.zip"}, dest)
	if err == nil {
		t.Fatal("expected an error for a traversal entry")
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "evil.png")); statErr == nil {
		t.Error("traversal entry was written outside the destination")
	}
}
