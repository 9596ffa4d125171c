// Package fetch downloads background images over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
)

// Fetch errors.
var (
	ErrStatus   = errors.New("unexpected HTTP status")
	ErrTooLarge = errors.New("image too large")
)

// Defaults.
const (
	DefaultMaxBytes  = 10 << 20
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "timer-takimca/1"
)

// HTTPFetcher fetches images with a plain GET.
type HTTPFetcher struct {
	// Client performs requests. Default: a client with DefaultTimeout.
	Client *http.Client

	// MaxBytes caps the response body. Default: DefaultMaxBytes.
	MaxBytes int64

	// UserAgent is sent with every request. Default: DefaultUserAgent.
	UserAgent string
}

// New creates a fetcher with default settings.
func New() *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: DefaultTimeout},
		MaxBytes:  DefaultMaxBytes,
		UserAgent: DefaultUserAgent,
	}
}

// Fetch downloads url and returns its content. Non-2xx responses, oversized
// bodies and non-image content are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (imagecache.Image, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return imagecache.Image{}, err
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return imagecache.Image{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return imagecache.Image{}, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return imagecache.Image{}, err
	}
	if int64(len(body)) > maxBytes {
		return imagecache.Image{}, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}

	img := imagecache.Image{ContentType: resp.Header.Get("Content-Type"), Bytes: body}
	img.ContentType = imagecache.ContentType(img)
	if !imagecache.IsImage(img.ContentType) {
		return imagecache.Image{}, fmt.Errorf("%w: %s", imagecache.ErrNotImage, img.ContentType)
	}
	return img, nil
}

var _ imagecache.Fetcher = (*HTTPFetcher)(nil)
