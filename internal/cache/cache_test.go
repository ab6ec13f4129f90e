package cache

import (
	"testing"
	"time"
)

func TestFigureKey(t *testing.T) {
	base := "fig:image"

	t.Run("noParams", func(t *testing.T) {
		if got := FigureKey("image", nil, nil); got != base {
			t.Fatalf("expected %q, got %q", base, got)
		}
	})

	t.Run("stableParamOrder", func(t *testing.T) {
		p1 := map[string]string{"origin": "lower", "min_visible": "0.1"}
		p2 := map[string]string{"min_visible": "0.1", "origin": "lower"}
		key1 := FigureKey("image", p1, []byte("{}"))
		key2 := FigureKey("image", p2, []byte("{}"))
		if key1 != key2 {
			t.Fatalf("expected stable key, got %q vs %q", key1, key2)
		}
		if key1 == base {
			t.Fatalf("expected parameterized key to differ from base")
		}
	})

	t.Run("bodyMatters", func(t *testing.T) {
		key1 := FigureKey("profile", nil, []byte(`{"re":[1]}`))
		key2 := FigureKey("profile", nil, []byte(`{"re":[2]}`))
		if key1 == key2 {
			t.Fatalf("expected different keys for different bodies")
		}
	})

	t.Run("paramBoundaries", func(t *testing.T) {
		key1 := FigureKey("image", map[string]string{"a": "b=c"}, nil)
		key2 := FigureKey("image", map[string]string{"a=b": "c"}, nil)
		if key1 == key2 {
			t.Fatalf("expected different keys, got %q", key1)
		}
	})
}

func TestScalebarKey(t *testing.T) {
	if got, want := ScalebarKey(0.5, 1000, 0.3), "scalebar:0.5/1000/0.3"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestManagerRoundTrip(t *testing.T) {
	m, err := NewManager(Config{FigureCacheSizeMB: 8, FigureTTL: time.Minute, QueryCacheSize: 4})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if _, ok := m.GetFigure("fig:x"); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	if err := m.SetFigure("fig:x", []byte("png")); err != nil {
		t.Fatalf("SetFigure: %v", err)
	}
	if data, ok := m.GetFigure("fig:x"); !ok || string(data) != "png" {
		t.Fatalf("GetFigure = %q, %v", data, ok)
	}

	m.SetQuery("q", []byte("{}"))
	if data, ok := m.GetQuery("q"); !ok || string(data) != "{}" {
		t.Fatalf("GetQuery = %q, %v", data, ok)
	}
	if stats := m.Stats(); stats["figure_cache_len"] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
}
