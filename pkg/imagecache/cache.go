package imagecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mehmetsinc/timer-takimca/pkg/degrade"
	"github.com/mehmetsinc/timer-takimca/pkg/kvstore"
)

// StorageKey is the key the collection is stored under.
const StorageKey = "timer_background_images"

// MaxRetained is how many records survive a rejected write.
const MaxRetained = 10

// DefaultPrefetchTimeout bounds a background fetch started by Prefetch.
const DefaultPrefetchTimeout = 30 * time.Second

// ErrNoFetcher is returned by SaveFromURL when the cache cannot fetch.
var ErrNoFetcher = errors.New("image cache has no fetcher")

// Fetcher downloads an image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Image, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (Image, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (Image, error) {
	return f(ctx, url)
}

// Config configures a Cache.
type Config struct {
	// Key is the storage key. Default: StorageKey.
	Key string

	// Codec serializes the collection. Default: JSONCodec.
	Codec Codec

	// Fetcher downloads images for SaveFromURL. Optional.
	Fetcher Fetcher

	// PrefetchTimeout bounds background fetches. Default: DefaultPrefetchTimeout.
	PrefetchTimeout time.Duration

	// Logger receives degrade and prefetch diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// NewID generates record IDs. Default: time-ordered UUIDs.
	NewID func() string

	// OnChange is called with the stored record count after a record is
	// added or removed. Calls are serialized and run with the cache locked,
	// so OnChange must not add or remove records. Optional.
	OnChange func(count int)
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Key:             StorageKey,
		Codec:           JSONCodec{},
		PrefetchTimeout: DefaultPrefetchTimeout,
	}
}

// Cache is the image cache.
type Cache struct {
	store  kvstore.Store
	config Config
	logger *slog.Logger

	// mu serializes read-modify-write cycles on the stored blob.
	mu sync.Mutex

	// fetches collapses concurrent SaveFromURL calls for the same URL.
	fetches singleflight.Group

	// prefetches tracks background fetches started by Prefetch.
	prefetches sync.WaitGroup
}

// New creates a cache on top of store.
func New(store kvstore.Store, cfg Config) *Cache {
	if cfg.Key == "" {
		cfg.Key = StorageKey
	}
	if cfg.Codec == nil {
		cfg.Codec = JSONCodec{}
	}
	if cfg.PrefetchTimeout <= 0 {
		cfg.PrefetchTimeout = DefaultPrefetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = newID(cfg.Now)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		store:  store,
		config: cfg,
		logger: logger.With(slog.String("component", "imagecache")),
	}
}

// newID returns a generator of time-ordered UUIDs, falling back to the
// millisecond clock if the UUID source fails.
func newID(now func() time.Time) func() string {
	return func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return strconv.FormatInt(now().UnixMilli(), 10)
		}
		return id.String()
	}
}

// Load reads the collection. Failures degrade to an empty collection.
func (c *Cache) Load() degrade.Result[[]Record] {
	data, err := c.store.Get(c.config.Key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return degrade.OK([]Record{})
	}
	if err != nil {
		c.logger.Warn("failed to read images", slog.String("error", err.Error()))
		return degrade.Fallback([]Record{}, err)
	}

	records, err := c.config.Codec.Unmarshal(data)
	if err != nil {
		c.logger.Warn("failed to decode images",
			slog.String("codec", c.config.Codec.Name()),
			slog.String("error", err.Error()),
		)
		return degrade.Fallback([]Record{}, err)
	}
	if records == nil {
		records = []Record{}
	}
	return degrade.OK(records)
}

// GetAll returns every cached record in insertion order.
func (c *Cache) GetAll() []Record {
	return c.Load().Value
}

// Count returns the number of cached records.
func (c *Cache) Count() int {
	return len(c.GetAll())
}

// Save replaces the stored collection. If the write is rejected, only the
// MaxRetained most recent records are written, once. The result holds what
// was attempted last and is degraded if the first write failed.
func (c *Cache) Save(records []Record) degrade.Result[[]Record] {
	err := c.write(records)
	if err == nil {
		return degrade.OK(records)
	}

	reduced := Recent(records, MaxRetained)
	c.logger.Warn("failed to save images, retrying with most recent only",
		slog.Int("count", len(records)),
		slog.Int("retained", len(reduced)),
		slog.String("error", err.Error()),
	)

	if retryErr := c.write(reduced); retryErr != nil {
		c.logger.Error("failed to save reduced images", slog.String("error", retryErr.Error()))
		return degrade.Fallback(reduced, errors.Join(err, retryErr))
	}
	return degrade.Fallback(reduced, err)
}

func (c *Cache) write(records []Record) error {
	data, err := c.config.Codec.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	return c.store.Set(c.config.Key, data)
}

// Add stores a data URL as a new record and returns its ID.
func (c *Cache) Add(data string) string {
	return c.insert(Record{Data: data}).ID
}

// AddImage encodes img as a data URL and stores it.
func (c *Cache) AddImage(img Image) (string, error) {
	data, err := EncodeDataURL(img)
	if err != nil {
		return "", err
	}
	return c.Add(data), nil
}

// insert appends rec with a fresh ID and timestamp. A record with a source
// URL is not inserted twice; the existing record is returned instead.
func (c *Cache) insert(rec Record) Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.GetAll()
	if rec.URL != "" {
		if existing, ok := findByURL(records, rec.URL); ok {
			return existing
		}
	}

	rec.ID = c.config.NewID()
	rec.Timestamp = c.config.Now().UnixMilli()
	c.Save(append(records, rec))

	c.logger.Debug("image added",
		slog.String("id", rec.ID),
		slog.String("url", rec.URL),
		slog.Int("size", len(rec.Data)),
	)
	c.changed()
	return rec
}

// Remove deletes the record with the given ID. Unknown IDs are ignored.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.GetAll()
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == len(records) {
		return
	}
	c.Save(filtered)
	c.changed()
}

// changed reports the stored count to OnChange. Callers hold c.mu.
func (c *Cache) changed() {
	if c.config.OnChange != nil {
		c.config.OnChange(c.Count())
	}
}

// Find returns the record with the given ID.
func (c *Cache) Find(id string) (Record, bool) {
	for _, r := range c.GetAll() {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// FindByURL returns the record fetched from url.
func (c *Cache) FindByURL(url string) (Record, bool) {
	return findByURL(c.GetAll(), url)
}

func findByURL(records []Record, url string) (Record, bool) {
	if url == "" {
		return Record{}, false
	}
	for _, r := range records {
		if r.URL == url {
			return r, true
		}
	}
	return Record{}, false
}

// SaveFromURL fetches url and caches it, returning the record ID. A URL that
// is already cached is not fetched again. Fetch and encoding failures are
// returned.
//
// Concurrent calls for the same URL share one fetch. The shared fetch keeps
// ctx's values but not its cancellation and is bounded by PrefetchTimeout;
// each caller stops waiting when its own ctx is done.
func (c *Cache) SaveFromURL(ctx context.Context, url string) (string, error) {
	if rec, ok := c.FindByURL(url); ok {
		return rec.ID, nil
	}
	if c.config.Fetcher == nil {
		return "", ErrNoFetcher
	}

	ch := c.fetches.DoChan(url, func() (any, error) {
		if rec, ok := c.FindByURL(url); ok {
			return rec.ID, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.PrefetchTimeout)
		defer cancel()

		img, err := c.config.Fetcher.Fetch(fetchCtx, url)
		if err != nil {
			return "", fmt.Errorf("fetch image: %w", err)
		}
		data, err := EncodeDataURL(img)
		if err != nil {
			return "", fmt.Errorf("encode image: %w", err)
		}
		return c.insert(Record{Data: data, URL: url}).ID, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("fetch image: %w", ctx.Err())
	}
}

// Prefetch caches url in the background. Failures are logged and dropped.
func (c *Cache) Prefetch(url string) {
	c.prefetches.Add(1)
	go func() {
		defer c.prefetches.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.config.PrefetchTimeout)
		defer cancel()

		if _, err := c.SaveFromURL(ctx, url); err != nil {
			c.logger.Debug("background image fetch failed",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until all background fetches have finished.
func (c *Cache) Wait() {
	c.prefetches.Wait()
}
