package player

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateIdle
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdle:
		return "connected(idle)"
	case StatePlaying:
		return "connected(playing)"
	default:
		return "disconnected"
	}
}

func (s State) Connected() bool {
	return s == StateIdle || s == StatePlaying
}

// GuildSession is the voice and playback state of one guild.
//
// The exported fields and methods other than Lock, Unlock and Snapshot
// require the caller to hold the session lock.
type GuildSession struct {
	GuildID        snowflake.ID
	VoiceChannelID snowflake.ID
	TextChannelID  snowflake.ID
	State          State
	NowPlaying     *Track
	Queue          []Track
	// VoiceEpoch identifies the voice connection the session was joined on.
	VoiceEpoch uint64

	idleTimer *time.Timer
	idleGen   uint64
	mu        sync.Mutex
}

func NewGuildSession(guildID snowflake.ID) *GuildSession {
	return &GuildSession{GuildID: guildID}
}

func (s *GuildSession) Lock()   { s.mu.Lock() }
func (s *GuildSession) Unlock() { s.mu.Unlock() }

func (s *GuildSession) Add(tracks ...Track) {
	s.Queue = append(s.Queue, tracks...)
}

// Pop removes and returns the queue head.
func (s *GuildSession) Pop() (Track, bool) {
	if len(s.Queue) == 0 {
		return Track{}, false
	}

	next := s.Queue[0]
	s.Queue = s.Queue[1:]
	return next, true
}

// QueueList copies at most max tracks from the queue head.
func (s *GuildSession) QueueList(max int) []Track {
	n := len(s.Queue)
	if n > max {
		n = max
	}
	result := make([]Track, n)
	copy(result, s.Queue[:n])
	return result
}

// StartIdleTimer replaces any pending idle timer with one that calls fire
// after d. fire receives the timer generation, which is stale once
// IdleGeneration has moved past it.
func (s *GuildSession) StartIdleTimer(d time.Duration, fire func(gen uint64)) {
	s.CancelIdleTimer()
	gen := s.idleGen
	s.idleTimer = time.AfterFunc(d, func() { fire(gen) })
}

func (s *GuildSession) CancelIdleTimer() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	s.idleGen++
}

func (s *GuildSession) IdleGeneration() uint64 {
	return s.idleGen
}

// Reset returns the session to Disconnected with no track and an empty queue.
func (s *GuildSession) Reset() {
	s.CancelIdleTimer()
	s.VoiceChannelID = 0
	s.VoiceEpoch = 0
	s.State = StateDisconnected
	s.NowPlaying = nil
	s.Queue = nil
}

type Snapshot struct {
	GuildID        snowflake.ID
	VoiceChannelID snowflake.ID
	TextChannelID  snowflake.ID
	State          State
	NowPlaying     *Track
	Queue          []Track
	VoiceEpoch     uint64
}

// Snapshot copies the session under its lock.
func (s *GuildSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		GuildID:        s.GuildID,
		VoiceChannelID: s.VoiceChannelID,
		TextChannelID:  s.TextChannelID,
		State:          s.State,
		VoiceEpoch:     s.VoiceEpoch,
		Queue:          append([]Track(nil), s.Queue...),
	}
	if s.NowPlaying != nil {
		np := *s.NowPlaying
		snap.NowPlaying = &np
	}
	return snap
}
