package search

import (
	"strings"
	"sync"
	"time"

	"github.com/uzih05/lavalink-relay-bot/internal/player"
)

const DefaultTTL = 5 * time.Minute

type Result struct {
	Tracks    []player.Track
	CreatedAt time.Time
}

// Cache remembers recent search results by normalized query.
type Cache struct {
	results map[string]*Result
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		results: make(map[string]*Result),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key collapses whitespace only; URLs and video IDs are case-sensitive.
func Key(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func (sc *Cache) Set(query string, tracks []player.Track) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	now := sc.now()
	for key, existing := range sc.results {
		if now.Sub(existing.CreatedAt) > sc.ttl {
			delete(sc.results, key)
		}
	}

	sc.results[Key(query)] = &Result{
		Tracks:    append([]player.Track(nil), tracks...),
		CreatedAt: now,
	}
}

func (sc *Cache) Get(query string) ([]player.Track, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	key := Key(query)
	r, ok := sc.results[key]
	if !ok {
		return nil, false
	}
	if sc.now().Sub(r.CreatedAt) > sc.ttl {
		delete(sc.results, key)
		return nil, false
	}
	return append([]player.Track(nil), r.Tracks...), true
}
