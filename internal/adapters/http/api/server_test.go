package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/mmwall/internal/application"
	"github.com/bnema/mmwall/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// fakeSlideshow cycles through a fixed number of images.
type fakeSlideshow struct {
	mu        sync.Mutex
	size      int
	current   int
	err       error
	listeners []chan application.Result
}

func newFakeSlideshow(size int) *fakeSlideshow {
	return &fakeSlideshow{size: size, current: -1}
}

func (f *fakeSlideshow) result(index int) application.Result {
	return application.Result{
		Index:    index,
		URL:      "https://img.example/" + string(rune('a'+index)) + ".jpg",
		PoolSize: f.size,
		At:       testNow,
	}
}

func (f *fakeSlideshow) move(delta int) (application.Result, error) {
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return application.Result{}, f.err
	}
	f.current = (f.current + delta + f.size) % f.size
	result := f.result(f.current)
	listeners := append([]chan application.Result{}, f.listeners...)
	f.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- result:
		default:
		}
	}
	return result, nil
}

func (f *fakeSlideshow) Next(context.Context) (application.Result, error) {
	return f.move(1)
}

func (f *fakeSlideshow) Previous(context.Context) (application.Result, error) {
	return f.move(-1)
}

func (f *fakeSlideshow) Refresh(context.Context) (application.RefreshResult, error) {
	return application.RefreshResult{Received: f.size, Accepted: f.size}, nil
}

func (f *fakeSlideshow) Status(context.Context) (application.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return application.Status{}, f.err
	}
	current := application.Result{Index: -1}
	if f.current >= 0 {
		current = f.result(f.current)
	}
	return application.Status{
		Now:            testNow,
		Method:         domain.SelectionWeightedRandom,
		CollectionSize: f.size,
		PoolSize:       f.size,
		Rotating:       true,
		Window:         domain.NewPoolWindow(f.size, f.size, 3),
		NextRotation:   testNow.Add(time.Hour),
		Current:        current,
		Ledger: application.LedgerStatus{Entries: []application.LedgerEntry{
			{URL: "https://img.example/a.jpg", ShownAt: testNow, Weight: 0},
		}},
	}, nil
}

func (f *fakeSlideshow) Subscribe() chan application.Result {
	ch := make(chan application.Result, 10)
	f.mu.Lock()
	f.listeners = append(f.listeners, ch)
	f.mu.Unlock()
	return ch
}

func (f *fakeSlideshow) Unsubscribe(ch chan application.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, listener := range f.listeners {
		if listener == ch {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

func (f *fakeSlideshow) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func serve(t *testing.T, server *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	server := NewServer(newFakeSlideshow(3), zerolog.Nop(), Options{})
	rec := serve(t, server, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestNextAndPrevious(t *testing.T) {
	t.Parallel()

	server := NewServer(newFakeSlideshow(3), zerolog.Nop(), Options{})

	rec := serve(t, server, http.MethodPost, "/api/next")
	require.Equal(t, http.StatusOK, rec.Code)
	var next selectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	assert.Equal(t, 0, next.Index)
	assert.Equal(t, "https://img.example/a.jpg", next.URL)
	assert.Equal(t, 3, next.PoolSize)

	rec = serve(t, server, http.MethodPost, "/api/previous")
	require.Equal(t, http.StatusOK, rec.Code)
	var previous selectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &previous))
	assert.Equal(t, 2, previous.Index)
}

func TestMethodsAreEnforced(t *testing.T) {
	t.Parallel()

	server := NewServer(newFakeSlideshow(3), zerolog.Nop(), Options{})

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, server, http.MethodGet, "/api/next").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, server, http.MethodPost, "/api/status").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, server, http.MethodGet, "/api/unknown").Code)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	slideshow := newFakeSlideshow(4)
	server := NewServer(slideshow, zerolog.Nop(), Options{})
	_, err := slideshow.Next(context.Background())
	require.NoError(t, err)

	rec := serve(t, server, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "weighted_random", status.Method)
	assert.Equal(t, 4, status.CollectionSize)
	assert.Equal(t, int64(3), status.Window.Bucket)
	require.NotNil(t, status.Window.NextRotation)
	assert.True(t, status.Window.NextRotation.Equal(testNow.Add(time.Hour)))
	assert.Equal(t, 0, status.Current.Index)
	assert.Len(t, status.Recent, 1)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	server := NewServer(newFakeSlideshow(5), zerolog.Nop(), Options{})
	rec := serve(t, server, http.MethodPost, "/api/refresh")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":5,"accepted":5,"changed":false}`, rec.Body.String())
}

func TestErrorsBecomeInternalServerError(t *testing.T) {
	t.Parallel()

	slideshow := newFakeSlideshow(3)
	slideshow.err = errors.New("state unavailable")
	server := NewServer(slideshow, zerolog.Nop(), Options{})

	rec := serve(t, server, http.MethodPost, "/api/next")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"state unavailable"}`, rec.Body.String())
}

func TestRateLimitRejectsBursts(t *testing.T) {
	t.Parallel()

	server := NewServer(newFakeSlideshow(3), zerolog.Nop(), Options{Rate: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, serve(t, server, http.MethodPost, "/api/next").Code)
	assert.Equal(t, http.StatusOK, serve(t, server, http.MethodPost, "/api/previous").Code)

	rec := serve(t, server, http.MethodPost, "/api/next")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many requests")

	assert.Equal(t, http.StatusOK, serve(t, server, http.MethodGet, "/api/status").Code, "reads are not limited")
}

func TestStreamPushesSelections(t *testing.T) {
	t.Parallel()

	slideshow := newFakeSlideshow(3)
	_, err := slideshow.Next(context.Background())
	require.NoError(t, err)

	httpServer := httptest.NewServer(NewServer(slideshow, zerolog.Nop(), Options{}).Handler())
	defer httpServer.Close()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var initial selectionResponse
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, 0, initial.Index)

	require.Eventually(t, func() bool { return slideshow.subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err = slideshow.Next(context.Background())
	require.NoError(t, err)

	var pushed selectionResponse
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, 1, pushed.Index)
	assert.Equal(t, "https://img.example/b.jpg", pushed.URL)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return slideshow.subscribers() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestServeListenerStopsOnCancel(t *testing.T) {
	t.Parallel()

	server := NewServer(newFakeSlideshow(1), zerolog.Nop(), Options{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, "127.0.0.1:0")
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
