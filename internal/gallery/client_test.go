package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		sel  Selection
		want string
	}{
		{"https://api.waifu.pics", Selection{"waifu", ModeSFW}, "https://api.waifu.pics/sfw/waifu"},
		{"https://api.waifu.pics/", Selection{"neko", ModeNSFW}, "https://api.waifu.pics/nsfw/neko"},
		{"http://localhost:8080", Selection{"a b", ModeSFW}, "http://localhost:8080/sfw/a%20b"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.sel); got != tt.want {
			t.Errorf("BuildURL(%q, %+v) = %q, want %q", tt.base, tt.sel, got, tt.want)
		}
	}
}

func TestFetchImageURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"url": "https://i.waifu.pics/abc.png"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got, err := c.FetchImageURL(context.Background(), Selection{Tag: "hug", Mode: ModeSFW})
	if err != nil {
		t.Fatalf("FetchImageURL() error = %v", err)
	}
	if got != "https://i.waifu.pics/abc.png" {
		t.Errorf("url = %q", got)
	}
	if gotPath != "/sfw/hug" {
		t.Errorf("request path = %q, want /sfw/hug", gotPath)
	}
}

func TestFetchImageURLErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
	}{
		{"invalid json", http.StatusOK, `not json`, true},
		{"missing field", http.StatusOK, `{"message": "ok"}`, true},
		{"non-string field", http.StatusOK, `{"url": 42}`, true},
		{"empty field", http.StatusOK, `{"url": ""}`, true},
		{"not found", http.StatusNotFound, `{"message": "Not Found"}`, false},
		{"server error", http.StatusInternalServerError, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(WithBaseURL(srv.URL))
			_, err := c.FetchImageURL(context.Background(), Selection{Tag: "waifu"})
			if err == nil {
				t.Fatal("expected an error")
			}

			if tt.malformed {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("error = %T %v, want *HTTPError", err, err)
			}
			if httpErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, tt.status)
			}
		})
	}
}

func TestFetchImageURLNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(WithBaseURL(base))
	_, err := c.FetchImageURL(context.Background(), Selection{Tag: "waifu"})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %T %v, want *NetworkError", err, err)
	}
}

func TestFetchImageURLTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	c := NewClient(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.FetchImageURL(context.Background(), Selection{Tag: "waifu"})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %T %v, want *NetworkError", err, err)
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false", err)
	}
}

func TestDownload(t *testing.T) {
	data := pngBytes(t, 4, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	img, err := NewClient().Download(context.Background(), srv.URL+"/i/abc.png")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if img.Format != "png" || img.Width != 4 || img.Height != 3 {
		t.Errorf("decoded %s %dx%d, want png 4x3", img.Format, img.Width, img.Height)
	}
	if img.Size() != len(data) {
		t.Errorf("Size = %d, want %d", img.Size(), len(data))
	}
}

func TestDownloadSizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"at limit", maxImageSize, false},
		{"over limit", maxImageSize + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := make([]byte, tt.size)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				w.Write(body)
			}))
			defer srv.Close()

			img, err := NewClient().Download(context.Background(), srv.URL+"/big.png")
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Download() error = %v", err)
				}
				if img.Size() != tt.size {
					t.Errorf("Size = %d, want %d", img.Size(), tt.size)
				}
				return
			}
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("Download() error = %v, want ErrMalformedResponse", err)
			}
			if img != nil {
				t.Error("oversized download should not return an image")
			}
		})
	}
}

func TestTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/endpoints" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"sfw": ["Waifu", "hug"], "nsfw": ["neko"]}`)
	}))
	defer srv.Close()

	cat, err := NewClient(WithBaseURL(srv.URL)).Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	if len(cat.SFW) != 2 || cat.SFW[0] != "waifu" || len(cat.NSFW) != 1 {
		t.Errorf("catalog = %+v", cat)
	}
}

func TestTagsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cat, err := NewClient(WithBaseURL(srv.URL)).Tags(context.Background())
	if err == nil {
		t.Error("expected an error")
	}
	if len(cat.SFW) != len(DefaultCatalog().SFW) {
		t.Errorf("fallback catalog has %d sfw tags", len(cat.SFW))
	}
}
