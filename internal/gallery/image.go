package gallery

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultTempTTL is how long a displayed temp file lives before removal.
const DefaultTempTTL = 5 * time.Second

// Image is a downloaded image with header metadata.
type Image struct {
	URL         string
	Body        []byte
	ContentType string
	Format      string // "png", "jpeg", "gif", "webp", ... or "" if unknown
	Width       int
	Height      int
}

// NewImage wraps downloaded bytes and decodes the image header.
func NewImage(url string, body []byte, contentType string) *Image {
	img := &Image{
		URL:         url,
		Body:        body,
		ContentType: contentType,
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(body)); err == nil {
		img.Format = format
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img
}

// Size returns the number of bytes.
func (img *Image) Size() int {
	return len(img.Body)
}

// Ext returns a file extension (with dot) for the image.
func (img *Image) Ext() string {
	switch img.Format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "webp", "bmp":
		return "." + img.Format
	}
	if u, err := url.Parse(img.URL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 5 {
			return ext
		}
	}
	mediaType, _, _ := mime.ParseMediaType(img.ContentType)
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png", "image/gif", "image/webp", "image/bmp":
		return "." + strings.TrimPrefix(mediaType, "image/")
	}
	return ".png"
}

// Describe returns a one-line summary like "png 640×480, 120 KB".
func (img *Image) Describe() string {
	format := img.Format
	if format == "" {
		format = "unknown"
	}
	size := fmt.Sprintf("%d B", img.Size())
	switch {
	case img.Size() >= 1<<20:
		size = fmt.Sprintf("%.1f MB", float64(img.Size())/(1<<20))
	case img.Size() >= 1<<10:
		size = fmt.Sprintf("%d KB", img.Size()>>10)
	}
	if img.Width > 0 && img.Height > 0 {
		return fmt.Sprintf("%s %d×%d, %s", format, img.Width, img.Height, size)
	}
	return fmt.Sprintf("%s, %s", format, size)
}

// SuggestedFilename returns the default name offered when saving an image.
func SuggestedFilename(now time.Time, img *Image) string {
	ext := ".png"
	if img != nil {
		ext = img.Ext()
	}
	return fmt.Sprintf("waifu_%d%s", now.Unix(), ext)
}

// SaveTo writes the image bytes to dst, creating parent directories.
func SaveTo(dst string, img *Image) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &IOError{Op: "create dir", Path: filepath.Dir(dst), Err: err}
	}
	if err := os.WriteFile(dst, img.Body, 0o644); err != nil {
		return &IOError{Op: "write", Path: dst, Err: err}
	}
	return nil
}

// TempStore holds the temp files written for display. A file lives until
// Remove is called for it, a newer file replaces it, or the store is closed.
type TempStore struct {
	mu      sync.Mutex
	dir     string
	ttl     time.Duration
	current string
	files   map[string]struct{}
}

// NewTempStore creates a store writing into dir (os.TempDir when empty).
func NewTempStore(dir string, ttl time.Duration) *TempStore {
	if dir == "" {
		dir = os.TempDir()
	}
	if ttl <= 0 {
		ttl = DefaultTempTTL
	}
	return &TempStore{
		dir:   dir,
		ttl:   ttl,
		files: make(map[string]struct{}),
	}
}

// TTL returns how long callers should keep a temp file before removing it.
func (ts *TempStore) TTL() time.Duration {
	return ts.ttl
}

// Write stores img in a fresh temp file, removing the previously current one.
func (ts *TempStore) Write(img *Image) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.current != "" {
		ts.removeLocked(ts.current)
	}

	p := filepath.Join(ts.dir, "wgen-"+uuid.NewString()+img.Ext())
	if err := os.WriteFile(p, img.Body, 0o600); err != nil {
		return "", &IOError{Op: "write", Path: p, Err: err}
	}
	ts.current = p
	ts.files[p] = struct{}{}
	return p, nil
}

// Remove deletes a temp file if the store still owns it.
func (ts *TempStore) Remove(p string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.removeLocked(p)
}

// Close removes every file still owned by the store.
func (ts *TempStore) Close() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for p := range ts.files {
		ts.removeLocked(p)
	}
	return nil
}

func (ts *TempStore) removeLocked(p string) {
	if _, ok := ts.files[p]; !ok {
		return
	}
	delete(ts.files, p)
	os.Remove(p)
	if ts.current == p {
		ts.current = ""
	}
}
