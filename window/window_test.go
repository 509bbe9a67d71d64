package window

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/trae-op/electron-modular/logger"
	"github.com/trae-op/electron-modular/settings"
)

func TestTokenIdentity(t *testing.T) {
	if Token("main") != Token("main") {
		t.Error("expected same hash to yield equal tokens")
	}
	if Token("main") == Token("about") {
		t.Error("expected different hashes to yield distinct tokens")
	}
	if got := Token("main").String(); got != "window:main" {
		t.Errorf("Token name = %q, want window:main", got)
	}
}

func TestPageURLDevServer(t *testing.T) {
	s := &settings.Settings{LocalhostPort: 5173}
	s.ApplyDefaults()

	got := PageURL(s, Config{Hash: "main", Name: "index"})
	if got != "http://localhost:5173/index" {
		t.Errorf("PageURL = %q", got)
	}
}

func TestPageURLBuiltBundle(t *testing.T) {
	s := &settings.Settings{}
	s.ApplyDefaults()

	got := PageURL(s, Config{Hash: "main", Name: "index"})
	if got != "file://dist/renderer/index.html" {
		t.Errorf("PageURL = %q", got)
	}
}

func TestCSPIncludesConfiguredSources(t *testing.T) {
	s := &settings.Settings{CSPConnectSources: []string{"https://api.example.com"}}
	s.ApplyDefaults()

	csp := CSP(s)
	if !strings.Contains(csp, "connect-src 'self' https://api.example.com") {
		t.Errorf("unexpected CSP: %q", csp)
	}
}

func newCountingCache(counter *atomic.Int32) *Cache {
	return NewCache(func(_ context.Context, reg Registration, _ map[string]string) (*Handle, error) {
		counter.Add(1)
		return &Handle{Hash: reg.Config.Hash, URL: "test://" + reg.Config.Hash}, nil
	}, logger.Nop())
}

func TestCacheReturnsLiveHandle(t *testing.T) {
	var calls atomic.Int32
	cache := newCountingCache(&calls)
	factory := cache.Factory(Registration{Config: Config{Hash: "main"}})

	first, err := factory.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := factory.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first != second {
		t.Error("expected cached handle on second Create")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 creation, got %d", calls.Load())
	}
}

func TestCacheEvictsClosedHandle(t *testing.T) {
	var calls atomic.Int32
	cache := newCountingCache(&calls)
	factory := cache.Factory(Registration{Config: Config{Hash: "main"}})

	first, err := factory.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !first.Closed() {
		t.Fatal("expected handle to report closed")
	}

	second, err := factory.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create after close failed: %v", err)
	}
	if first == second {
		t.Error("expected a fresh handle after close")
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 creations, got %d", calls.Load())
	}
}

func TestCacheRelease(t *testing.T) {
	var calls atomic.Int32
	cache := newCountingCache(&calls)
	factory := cache.Factory(Registration{Config: Config{Hash: "main"}})

	if _, err := factory.Create(context.Background(), nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	cache.Release("main")
	if _, err := factory.Create(context.Background(), nil); err != nil {
		t.Fatalf("Create after Release failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 creations after Release, got %d", calls.Load())
	}
}

func TestCachePropagatesCreateError(t *testing.T) {
	wantErr := errors.New("display unavailable")
	cache := NewCache(func(_ context.Context, _ Registration, _ map[string]string) (*Handle, error) {
		return nil, wantErr
	}, logger.Nop())
	factory := cache.Factory(Registration{Config: Config{Hash: "main"}})

	if _, err := factory.Create(context.Background(), nil); !errors.Is(err, wantErr) {
		t.Errorf("expected create error to propagate, got %v", err)
	}
}

func TestCacheIsPerHash(t *testing.T) {
	var calls atomic.Int32
	cache := newCountingCache(&calls)
	main := cache.Factory(Registration{Config: Config{Hash: "main"}})
	about := cache.Factory(Registration{Config: Config{Hash: "about"}})

	h1, err := main.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create main failed: %v", err)
	}
	h2, err := about.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create about failed: %v", err)
	}
	if h1 == h2 {
		t.Error("expected distinct handles per hash")
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 creations, got %d", calls.Load())
	}
}

func TestMemoryFactoryUsesSettings(t *testing.T) {
	settings.Reset()
	t.Cleanup(settings.Reset)

	create := NewMemoryFactory()
	if _, err := create(context.Background(), Registration{Config: Config{Hash: "main", Name: "index"}}, nil); err == nil {
		t.Error("expected error when settings are not initialized")
	}

	if err := settings.Set(&settings.Settings{LocalhostPort: 4000}); err != nil {
		t.Fatalf("settings.Set failed: %v", err)
	}
	h, err := create(context.Background(), Registration{Config: Config{Hash: "main", Name: "index"}}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if h.URL != "http://localhost:4000/index" {
		t.Errorf("URL = %q", h.URL)
	}
	if h.Hash != "main" {
		t.Errorf("Hash = %q", h.Hash)
	}
}
