package imagecache_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
	"github.com/mehmetsinc/timer-takimca/pkg/imagecache/mocks"
	"github.com/mehmetsinc/timer-takimca/pkg/kvstore"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// flakyStore fails a configurable number of upcoming writes.
type flakyStore struct {
	*kvstore.Memory

	mu        sync.Mutex
	failNext  int
	failAll   bool
	getErr    error
	setCalls  int
	lastWrite []byte
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: kvstore.NewMemory()}
}

func (s *flakyStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Memory.Get(key)
}

func (s *flakyStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setCalls++
	if s.failAll || s.failNext > 0 {
		if s.failNext > 0 {
			s.failNext--
		}
		return kvstore.ErrQuotaExceeded
	}
	s.lastWrite = value
	return s.Memory.Set(key, value)
}

// sequentialIDs returns predictable IDs "1", "2", ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return strconv.Itoa(n)
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newCache(store kvstore.Store, fetcher imagecache.Fetcher) *imagecache.Cache {
	cfg := imagecache.DefaultConfig()
	cfg.Fetcher = fetcher
	cfg.Now = fixedClock()
	cfg.NewID = sequentialIDs()
	return imagecache.New(store, cfg)
}

func records(n int) []imagecache.Record {
	out := make([]imagecache.Record, n)
	for i := range out {
		out[i] = imagecache.Record{
			ID:        strconv.Itoa(i + 1),
			Data:      "data:image/png;base64," + strings.Repeat("A", 40),
			Timestamp: int64(i),
		}
	}
	return out
}

func TestGetAllEmpty(t *testing.T) {
	c := newCache(kvstore.NewMemory(), nil)

	res := c.Load()
	assert.False(t, res.IsDegraded())
	assert.Empty(t, res.Value)
	assert.NotNil(t, res.Value)
}

func TestGetAllCorruptBlobDegradesToEmpty(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(imagecache.StorageKey, []byte("{not json")))
	c := newCache(store, nil)

	res := c.Load()
	assert.True(t, res.IsDegraded())
	assert.Error(t, res.Cause)
	assert.Empty(t, c.GetAll())
}

func TestGetAllReadErrorDegradesToEmpty(t *testing.T) {
	store := newFlakyStore()
	store.getErr = errors.New("disk on fire")
	c := newCache(store, nil)

	res := c.Load()
	assert.True(t, res.IsDegraded())
	assert.EqualError(t, res.Cause, "disk on fire")
	assert.Empty(t, res.Value)
}

func TestGetAllReadsBrowserFormat(t *testing.T) {
	store := kvstore.NewMemory()
	blob := `[{"id":"1729339200000","data":"data:image/png;base64,AAAA","timestamp":1729339200000},` +
		`{"id":"1729339300000","data":"data:image/jpeg;base64,BBBB","url":"https://example.com/a.jpg","timestamp":1729339300000}]`
	require.NoError(t, store.Set(imagecache.StorageKey, []byte(blob)))
	c := newCache(store, nil)

	all := c.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "1729339200000", all[0].ID)
	assert.Empty(t, all[0].URL)
	assert.Equal(t, "https://example.com/a.jpg", all[1].URL)
	assert.Equal(t, time.UnixMilli(1729339300000), all[1].CreatedAt())
}

func TestAddFindRemove(t *testing.T) {
	c := newCache(kvstore.NewMemory(), nil)

	id1 := c.Add("data:image/png;base64,AAAA")
	id2 := c.Add("data:image/png;base64,BBBB")
	require.NotEqual(t, id1, id2)
	assert.Equal(t, 2, c.Count())

	rec, ok := c.Find(id1)
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAAA", rec.Data)
	assert.Equal(t, fixedClock()().UnixMilli(), rec.Timestamp)

	c.Remove(id1)
	_, ok = c.Find(id1)
	assert.False(t, ok)

	c.Remove("does-not-exist")
	all := c.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, id2, all[0].ID)
}

func TestAddGeneratesUniqueIDsWithFrozenClock(t *testing.T) {
	cfg := imagecache.DefaultConfig()
	cfg.Now = fixedClock()
	c := imagecache.New(kvstore.NewMemory(), cfg)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := c.Add("data:image/png;base64,AAAA")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAddImage(t *testing.T) {
	c := newCache(kvstore.NewMemory(), nil)

	id, err := c.AddImage(imagecache.Image{Bytes: pngHeader})
	require.NoError(t, err)

	rec, ok := c.Find(id)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(rec.Data, "data:image/png;base64,"))

	_, err = c.AddImage(imagecache.Image{ContentType: "text/html", Bytes: []byte("<html>")})
	assert.ErrorIs(t, err, imagecache.ErrNotImage)
	assert.Equal(t, 1, c.Count())
}

func TestSaveFallsBackToMostRecentTen(t *testing.T) {
	store := newFlakyStore()
	c := newCache(store, nil)

	store.failNext = 1
	res := c.Save(records(15))

	require.True(t, res.IsDegraded())
	assert.ErrorIs(t, res.Cause, kvstore.ErrQuotaExceeded)
	assert.Len(t, res.Value, imagecache.MaxRetained)

	all := c.GetAll()
	require.Len(t, all, imagecache.MaxRetained)
	for i, r := range all {
		assert.Equal(t, strconv.Itoa(i+6), r.ID, "insertion order is preserved")
	}
}

func TestSaveFallbackUnderQuota(t *testing.T) {
	ten, err := imagecache.JSONCodec{}.Marshal(records(12)[2:])
	require.NoError(t, err)

	// Room for the ten most recent records but not all twelve.
	store := kvstore.NewLimited(kvstore.NewMemory(), len(ten))
	c := newCache(store, nil)

	res := c.Save(records(12))
	require.True(t, res.IsDegraded())

	all := c.GetAll()
	assert.LessOrEqual(t, len(all), imagecache.MaxRetained)
	assert.Equal(t, "3", all[0].ID)
	assert.Equal(t, "12", all[len(all)-1].ID)
}

func TestSaveSecondFailureIsReportedNotRaised(t *testing.T) {
	store := newFlakyStore()
	c := newCache(store, nil)
	require.False(t, c.Save(records(3)).IsDegraded())

	store.failAll = true
	res := c.Save(records(12))

	assert.True(t, res.IsDegraded())
	assert.Equal(t, 2, store.setCalls-1, "one write plus exactly one retry")
	assert.Len(t, c.GetAll(), 3, "previous collection is still stored")
}

func TestAddUnderFailingStoreStillReturnsID(t *testing.T) {
	store := newFlakyStore()
	store.failAll = true
	c := newCache(store, nil)

	id := c.Add("data:image/png;base64,AAAA")
	assert.NotEmpty(t, id)
	assert.Empty(t, c.GetAll())
}

func TestSaveFromURLIsIdempotent(t *testing.T) {
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, "https://example.com/bg.png").
		Return(imagecache.Image{ContentType: "image/png", Bytes: pngHeader}, nil).
		Once()

	c := newCache(kvstore.NewMemory(), fetcher)
	ctx := context.Background()

	id1, err := c.SaveFromURL(ctx, "https://example.com/bg.png")
	require.NoError(t, err)
	id2, err := c.SaveFromURL(ctx, "https://example.com/bg.png")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	require.Equal(t, 1, c.Count())

	rec, ok := c.FindByURL("https://example.com/bg.png")
	require.True(t, ok)
	assert.Equal(t, id1, rec.ID)
	assert.True(t, strings.HasPrefix(rec.Data, "data:image/png;base64,"))
}

func TestSaveFromURLConcurrentCallsShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, "https://example.com/bg.png").
		RunAndReturn(func(ctx context.Context, url string) (imagecache.Image, error) {
			<-release
			return imagecache.Image{ContentType: "image/png", Bytes: pngHeader}, nil
		}).
		Once()

	c := newCache(kvstore.NewMemory(), fetcher)

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := c.SaveFromURL(context.Background(), "https://example.com/bg.png")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, c.Count())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestSaveFromURLCallerCancellationDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, "https://example.com/bg.png").
		RunAndReturn(func(ctx context.Context, url string) (imagecache.Image, error) {
			close(started)
			<-release
			if err := ctx.Err(); err != nil {
				return imagecache.Image{}, err
			}
			return imagecache.Image{ContentType: "image/png", Bytes: pngHeader}, nil
		}).
		Once()

	c := newCache(kvstore.NewMemory(), fetcher)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.SaveFromURL(firstCtx, "https://example.com/bg.png")
		firstErr <- err
	}()
	<-started

	type result struct {
		id  string
		err error
	}
	second := make(chan result, 1)
	go func() {
		id, err := c.SaveFromURL(context.Background(), "https://example.com/bg.png")
		second <- result{id, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)

	rec, ok := c.FindByURL("https://example.com/bg.png")
	require.True(t, ok)
	assert.Equal(t, rec.ID, res.id)
	assert.Equal(t, 1, c.Count())
}

func TestOnChangeReportsCount(t *testing.T) {
	var (
		mu     sync.Mutex
		counts []int
	)
	cfg := imagecache.DefaultConfig()
	cfg.NewID = sequentialIDs()
	cfg.OnChange = func(count int) {
		mu.Lock()
		defer mu.Unlock()
		counts = append(counts, count)
	}
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, "https://example.com/bg.png").
		Return(imagecache.Image{ContentType: "image/png", Bytes: pngHeader}, nil).
		Once()
	cfg.Fetcher = fetcher
	c := imagecache.New(kvstore.NewMemory(), cfg)

	id := c.Add("data:image/png;base64,AAAA")
	c.Prefetch("https://example.com/bg.png")
	c.Wait()
	c.Remove("does-not-exist")
	c.Remove(id)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 1}, counts)
}

func TestSaveFromURLPropagatesFetchFailure(t *testing.T) {
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, "https://example.com/missing.png").
		Return(imagecache.Image{}, errors.New("404 Not Found"))

	c := newCache(kvstore.NewMemory(), fetcher)

	_, err := c.SaveFromURL(context.Background(), "https://example.com/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404 Not Found")
	assert.Zero(t, c.Count())
}

func TestSaveFromURLRejectsNonImage(t *testing.T) {
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, mock.Anything).
		Return(imagecache.Image{ContentType: "text/html; charset=utf-8", Bytes: []byte("<html></html>")}, nil)

	c := newCache(kvstore.NewMemory(), fetcher)

	_, err := c.SaveFromURL(context.Background(), "https://example.com/page")
	assert.ErrorIs(t, err, imagecache.ErrNotImage)
	assert.Zero(t, c.Count())
}

func TestSaveFromURLWithoutFetcher(t *testing.T) {
	c := newCache(kvstore.NewMemory(), nil)

	_, err := c.SaveFromURL(context.Background(), "https://example.com/bg.png")
	assert.ErrorIs(t, err, imagecache.ErrNoFetcher)
}

func TestPrefetchCachesInBackground(t *testing.T) {
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, "https://example.com/bg.png").
		Return(imagecache.Image{ContentType: "image/png", Bytes: pngHeader}, nil).
		Once()

	c := newCache(kvstore.NewMemory(), fetcher)
	c.Prefetch("https://example.com/bg.png")
	c.Wait()

	_, ok := c.FindByURL("https://example.com/bg.png")
	assert.True(t, ok)
}

func TestPrefetchSwallowsFailure(t *testing.T) {
	fetcher := mocks.NewMockFetcher(t)
	fetcher.EXPECT().
		Fetch(mock.Anything, mock.Anything).
		Return(imagecache.Image{}, errors.New("connection refused"))

	c := newCache(kvstore.NewMemory(), fetcher)
	c.Prefetch("https://example.com/bg.png")
	c.Wait()

	assert.Zero(t, c.Count())
}

func TestCacheWithCBORCodec(t *testing.T) {
	store := kvstore.NewMemory()
	cfg := imagecache.DefaultConfig()
	cfg.Codec = imagecache.CBORCodec{}
	c := imagecache.New(store, cfg)

	id := c.Add("data:image/png;base64,AAAA")

	raw, err := store.Get(imagecache.StorageKey)
	require.NoError(t, err)
	assert.NotEqual(t, byte('['), raw[0], "blob is not JSON")

	rec, ok := c.Find(id)
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAAA", rec.Data)
}

func TestRecent(t *testing.T) {
	all := records(12)

	got := imagecache.Recent(all, 10)
	require.Len(t, got, 10)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "12", got[9].ID)

	assert.Len(t, imagecache.Recent(all[:4], 10), 4)
	assert.Empty(t, imagecache.Recent(all, 0))
}

func TestCodecByName(t *testing.T) {
	c, err := imagecache.CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = imagecache.CodecByName("cbor")
	require.NoError(t, err)
	assert.Equal(t, "cbor", c.Name())

	_, err = imagecache.CodecByName("xml")
	assert.Error(t, err)
}
