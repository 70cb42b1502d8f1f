package search

import (
	"testing"
	"time"

	"github.com/uzih05/lavalink-relay-bot/internal/player"
)

func TestCacheNormalizesWhitespace(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("  song   a ", []player.Track{{Title: "song a"}})

	tracks, ok := c.Get("song a")
	if !ok || len(tracks) != 1 || tracks[0].Title != "song a" {
		t.Fatalf("Get = %v, %v", tracks, ok)
	}
}

func TestCacheKeyPreservesCase(t *testing.T) {
	upper, lower := "https://youtu.be/AbCdE", "https://youtu.be/abcde"
	if Key(upper) == Key(lower) {
		t.Fatalf("Key(%q) == Key(%q)", upper, lower)
	}

	c := NewCache(time.Minute)
	c.Set(upper, []player.Track{{Title: "first"}})

	if _, ok := c.Get(lower); ok {
		t.Fatal("a URL differing only in case must miss")
	}
	if tracks, ok := c.Get(upper); !ok || tracks[0].Title != "first" {
		t.Fatalf("Get(%q) = %v, %v", upper, tracks, ok)
	}
}

func TestCacheExpires(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", []player.Track{{Title: "a"}})
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}

	c.Set("old", nil)
	now = now.Add(2 * time.Minute)
	c.Set("new", nil)
	if len(c.results) != 1 {
		t.Fatalf("len = %d, want expired entries pruned on Set", len(c.results))
	}
}

func TestCacheReturnsCopy(t *testing.T) {
	c := NewCache(0)
	c.Set("a", []player.Track{{Title: "a"}})

	tracks, _ := c.Get("a")
	tracks[0].Title = "changed"

	again, _ := c.Get("a")
	if again[0].Title != "a" {
		t.Fatal("cache entry was mutated through Get result")
	}
}
