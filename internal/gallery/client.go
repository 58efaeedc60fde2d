package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://api.waifu.pics"
	DefaultTimeout   = 15 * time.Second
	maxJSONSize      = 1 << 20          // 1 MB
	maxImageSize     = 20 * 1024 * 1024 // 20 MB
	defaultUserAgent = "wgen/0.1 (terminal image viewer; +https://github.com/vidyasagar/wgen)"
)

// SharedTransport is a tuned HTTP transport shared by every Client.
var SharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:          20,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 15 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
}

// Client talks to the image API and downloads image bytes.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *zap.SugaredLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.SugaredLogger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client with sensible defaults using the shared transport.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		client: &http.Client{
			Transport: SharedTransport,
			Timeout:   DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildURL returns the API endpoint for a selection: {base}/{mode}/{tag}.
func BuildURL(base string, sel Selection) string {
	return strings.TrimRight(base, "/") + "/" + sel.Mode.String() + "/" + url.PathEscape(sel.Tag)
}

// FetchImageURL asks the API for a random image matching sel and returns its URL.
func (c *Client) FetchImageURL(ctx context.Context, sel Selection) (string, error) {
	endpoint := BuildURL(c.baseURL, sel)
	c.logger.Debugw("requesting image", "url", endpoint, "tag", sel.Tag, "mode", sel.Mode.String())

	body, _, err := c.get(ctx, endpoint, "application/json", maxJSONSize)
	if err != nil {
		return "", err
	}

	var payload struct {
		URL *string `json:"url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.URL == nil || *payload.URL == "" {
		return "", fmt.Errorf("%w: no image url in response", ErrMalformedResponse)
	}

	c.logger.Debugw("image found", "url", *payload.URL)
	return *payload.URL, nil
}

// Download retrieves the raw bytes of an image.
func (c *Client) Download(ctx context.Context, imageURL string) (*Image, error) {
	start := time.Now()
	body, contentType, err := c.get(ctx, imageURL, "image/*", maxImageSize)
	if err != nil {
		return nil, err
	}
	img := NewImage(imageURL, body, contentType)
	c.logger.Debugw("image downloaded",
		"url", imageURL,
		"bytes", len(body),
		"format", img.Format,
		"duration", time.Since(start),
	)
	return img, nil
}

// Tags fetches the tag catalog from the API. On any failure the built-in
// catalog is returned together with the error.
func (c *Client) Tags(ctx context.Context) (Catalog, error) {
	body, _, err := c.get(ctx, c.baseURL+"/endpoints", "application/json", maxJSONSize)
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := json.Unmarshal(body, &cat); err != nil {
		return DefaultCatalog(), fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(cat.SFW) == 0 && len(cat.NSFW) == 0 {
		return DefaultCatalog(), fmt.Errorf("%w: empty tag listing", ErrMalformedResponse)
	}
	cat.SFW = NormalizeTags(cat.SFW)
	cat.NSFW = NormalizeTags(cat.NSFW)
	return cat, nil
}

func (c *Client) get(ctx context.Context, rawURL, accept string, limit int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &NetworkError{URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warnw("request failed", "url", rawURL, "error", err)
		return nil, "", &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warnw("unexpected status", "url", rawURL, "status", resp.StatusCode)
		return nil, "", &HTTPError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", &NetworkError{URL: rawURL, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if int64(len(body)) > limit {
		c.logger.Warnw("response too large", "url", rawURL, "limit", limit)
		return nil, "", fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, limit)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// IsTimeout reports whether err was caused by a request timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
