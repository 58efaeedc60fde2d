package gallery

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewImageDecodesHeader(t *testing.T) {
	img := NewImage("https://i.waifu.pics/x.png", pngBytes(t, 10, 20), "image/png")
	if img.Format != "png" || img.Width != 10 || img.Height != 20 {
		t.Errorf("got %s %dx%d", img.Format, img.Width, img.Height)
	}
	if img.Ext() != ".png" {
		t.Errorf("Ext = %q", img.Ext())
	}
	if !strings.HasPrefix(img.Describe(), "png 10×20") {
		t.Errorf("Describe = %q", img.Describe())
	}
}

func TestImageExtFallbacks(t *testing.T) {
	tests := []struct {
		url, contentType, want string
	}{
		{"https://i.waifu.pics/abc.gif", "", ".gif"},
		{"https://example.com/raw", "image/jpeg", ".jpg"},
		{"https://example.com/raw?x=1", "image/webp; q=1", ".webp"},
		{"https://example.com/raw", "", ".png"},
	}
	for _, tt := range tests {
		img := NewImage(tt.url, []byte("garbage"), tt.contentType)
		if got := img.Ext(); got != tt.want {
			t.Errorf("Ext(%q, %q) = %q, want %q", tt.url, tt.contentType, got, tt.want)
		}
	}
}

func TestSuggestedFilename(t *testing.T) {
	now := time.Unix(1700000000, 0)
	img := NewImage("https://i.waifu.pics/a.png", pngBytes(t, 1, 1), "image/png")
	if got := SuggestedFilename(now, img); got != "waifu_1700000000.png" {
		t.Errorf("SuggestedFilename = %q", got)
	}
	if got := SuggestedFilename(now, nil); got != "waifu_1700000000.png" {
		t.Errorf("SuggestedFilename(nil) = %q", got)
	}
}

func TestSaveTo(t *testing.T) {
	data := pngBytes(t, 2, 2)
	dst := filepath.Join(t.TempDir(), "nested", "dir", "out.png")

	if err := SaveTo(dst, NewImage("u", data, "")); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("saved bytes differ")
	}
}

func TestSaveToError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := SaveTo(filepath.Join(blocker, "out.png"), NewImage("u", []byte("x"), ""))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error = %T %v, want *IOError", err, err)
	}
}

func TestTempStore(t *testing.T) {
	dir := t.TempDir()
	ts := NewTempStore(dir, 0)
	if ts.TTL() != DefaultTempTTL {
		t.Errorf("TTL = %v, want %v", ts.TTL(), DefaultTempTTL)
	}

	img := NewImage("u", pngBytes(t, 1, 1), "image/png")
	first, err := ts.Write(img)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Dir(first) != dir || filepath.Ext(first) != ".png" {
		t.Errorf("unexpected temp path %q", first)
	}

	second, err := ts.Write(img)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("first temp file should be removed when replaced")
	}
	if _, err := os.Stat(second); err != nil {
		t.Errorf("second temp file missing: %v", err)
	}

	ts.Remove(second)
	if _, err := os.Stat(second); !os.IsNotExist(err) {
		t.Error("second temp file should be removed")
	}
	ts.Remove(second) // already gone

	third, _ := ts.Write(img)
	ts.Close()
	if _, err := os.Stat(third); !os.IsNotExist(err) {
		t.Error("Close should remove remaining files")
	}
}

func TestTempStoreIgnoresForeignPaths(t *testing.T) {
	dir := t.TempDir()
	foreign := filepath.Join(dir, "keep.png")
	os.WriteFile(foreign, []byte("x"), 0o644)

	ts := NewTempStore(dir, time.Second)
	ts.Remove(foreign)
	if _, err := os.Stat(foreign); err != nil {
		t.Error("Remove must not delete files the store did not write")
	}
}
