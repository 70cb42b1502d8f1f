package player

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Registry owns one GuildSession per guild. Its lock guards only the map;
// per-guild exclusivity comes from each session's own lock.
type Registry struct {
	sessions map[snowflake.ID]*GuildSession
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[snowflake.ID]*GuildSession),
	}
}

func (r *Registry) Get(guildID snowflake.ID) *GuildSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[guildID]
}

func (r *Registry) GetOrCreate(guildID snowflake.ID) *GuildSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s
	}

	s := NewGuildSession(guildID)
	r.sessions[guildID] = s
	return s
}

// Clear resets the guild's session, keeping the entry for reuse. The caller
// must hold the session lock.
func (r *Registry) Clear(guildID snowflake.ID) {
	if s := r.Get(guildID); s != nil {
		s.Reset()
	}
}

func (r *Registry) Sessions() []*GuildSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*GuildSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, s)
	}
	return result
}
