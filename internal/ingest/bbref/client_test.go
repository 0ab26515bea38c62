package bbref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{pages: make(map[string]string)}
}

func (c *memoryCache) GetPage(_ context.Context, url string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", false, c.err
	}
	body, ok := c.pages[url]
	return body, ok, nil
}

func (c *memoryCache) SetPage(_ context.Context, url, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[url] = body
	return nil
}

func TestClientFetchSendsUserAgent(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)

	body, err := client.Fetch(context.Background(), srv.URL+"/teams/BOS/2025.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, DefaultUserAgent, agent)
	assert.Equal(t, srv.URL, client.BaseURL().String())
}

func TestClientFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), srv.URL+"/missing.html", nil)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClientUsesPageCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html>" + r.URL.Path + "</html>"))
	}))
	defer srv.Close()

	cache := newMemoryCache()
	client, err := NewClient(ClientConfig{BaseURL: srv.URL}, cache, nil)
	require.NoError(t, err)

	u := srv.URL + "/players/t/tatumja01.html"
	for i := 0; i < 3; i++ {
		body, err := client.Fetch(context.Background(), u, nil)
		require.NoError(t, err)
		assert.Equal(t, "<html>/players/t/tatumja01.html</html>", body)
	}
	assert.EqualValues(t, 1, hits.Load())
	assert.Contains(t, cache.pages, u)
}

func TestClientIgnoresBrokenCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	cache := newMemoryCache()
	cache.err = errors.New("connection refused")
	client, err := NewClient(ClientConfig{BaseURL: srv.URL}, cache, nil)
	require.NoError(t, err)

	doc, err := client.Document(context.Background(), srv.URL+"/", nil)
	require.NoError(t, err)
	assert.NotNil(t, doc)
}
