package playback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pkg/errors"
	"github.com/uzih05/lavalink-relay-bot/internal/player"
	"github.com/uzih05/lavalink-relay-bot/internal/reply"
	"github.com/uzih05/lavalink-relay-bot/internal/search"
)

const (
	DefaultCallTimeout = 10 * time.Second
	DefaultIdleTimeout = 3 * time.Minute
)

// Coordinator sequences playback commands and audio node events against the
// session registry. Every operation holds the guild's session lock for its
// whole state transition, so operations on one guild never interleave while
// different guilds proceed independently.
type Coordinator struct {
	registry *player.Registry
	voice    VoiceService
	audio    AudioNode
	notifier Notifier
	cache    *search.Cache

	callTimeout time.Duration
	idleTimeout time.Duration
	joinCommand string

	wg sync.WaitGroup
}

type Option func(*Coordinator)

func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

func WithSearchCache(sc *search.Cache) Option {
	return func(c *Coordinator) { c.cache = sc }
}

func WithCallTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.callTimeout = d }
}

// WithIdleTimeout sets how long a connected guild may sit idle before it is
// disconnected. Zero disables the idle timer.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.idleTimeout = d }
}

// WithJoinCommand sets the command users are pointed to when not connected.
func WithJoinCommand(cmd string) Option {
	return func(c *Coordinator) { c.joinCommand = cmd }
}

func NewCoordinator(registry *player.Registry, voice VoiceService, audio AudioNode, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:    registry,
		voice:       voice,
		audio:       audio,
		callTimeout: DefaultCallTimeout,
		idleTimeout: DefaultIdleTimeout,
		joinCommand: "!join",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call runs fn bounded by the call timeout and converts any failure into an
// ExternalServiceError.
func (c *Coordinator) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = errors.Wrapf(ErrTimeout, "after %s", c.callTimeout)
	}
	return &ExternalServiceError{Op: op, Err: err}
}

func (c *Coordinator) notify(ctx context.Context, channelID snowflake.ID, text string) {
	if c.notifier == nil || channelID == 0 {
		return
	}
	if err := c.notifier.Notify(ctx, channelID, text); err != nil {
		slog.Error("notify failed", "channel", channelID, "error", err)
	}
}

// Join attaches the bot to voiceChannelID and opens an audio node session
// for the guild. voiceChannelID is the invoking user's channel, zero if the
// user is not in one.
func (c *Coordinator) Join(ctx context.Context, guildID, textChannelID, voiceChannelID snowflake.ID) (string, error) {
	if voiceChannelID == 0 {
		return "", &NoVoiceChannelError{}
	}

	s := c.registry.GetOrCreate(guildID)
	s.Lock()
	defer s.Unlock()

	if s.State != player.StateDisconnected {
		return reply.AlreadyConnected, nil
	}

	s.State = player.StateConnecting
	s.TextChannelID = textChannelID

	var handle VoiceHandle
	err := c.call(ctx, "voice attach", func(ctx context.Context) error {
		var err error
		handle, err = c.voice.Attach(ctx, guildID, voiceChannelID)
		return err
	})
	if err != nil {
		s.Reset()
		return "", err
	}

	err = c.call(ctx, "audio session", func(ctx context.Context) error {
		return c.audio.CreateSession(ctx, guildID, handle)
	})
	if err != nil {
		if derr := c.call(ctx, "voice detach", func(ctx context.Context) error {
			return c.voice.Detach(ctx, guildID)
		}); derr != nil {
			slog.Warn("rollback detach failed", "guild", guildID, "error", derr)
		}
		s.Reset()
		return "", err
	}

	s.VoiceChannelID = voiceChannelID
	s.VoiceEpoch = handle.Epoch
	s.State = player.StateIdle
	c.startIdleTimer(s)

	slog.Info("joined voice channel", "guild", guildID, "channel", voiceChannelID)
	return reply.Joined(voiceChannelID), nil
}

// Leave tears down the guild's audio session and voice connection. The
// guild always ends up disconnected; teardown errors are only reported.
func (c *Coordinator) Leave(ctx context.Context, guildID snowflake.ID) (string, error) {
	s := c.registry.Get(guildID)
	if s == nil {
		return "", c.notConnected()
	}

	s.Lock()
	defer s.Unlock()

	if !s.State.Connected() {
		return "", c.notConnected()
	}

	errs := c.teardown(ctx, s)
	slog.Info("left voice channel", "guild", guildID)
	if len(errs) > 0 {
		return fmt.Sprintf("%s Cleanup reported: %s", reply.Left(), joinErrors(errs)), nil
	}
	return reply.Left(), nil
}

// teardown must be called with the session lock held.
func (c *Coordinator) teardown(ctx context.Context, s *player.GuildSession) []error {
	var errs []error
	if err := c.call(ctx, "audio session teardown", func(ctx context.Context) error {
		return c.audio.DestroySession(ctx, s.GuildID)
	}); err != nil {
		slog.Warn("audio session teardown failed", "guild", s.GuildID, "error", err)
		errs = append(errs, err)
	}
	if err := c.call(ctx, "voice detach", func(ctx context.Context) error {
		return c.voice.Detach(ctx, s.GuildID)
	}); err != nil {
		slog.Warn("voice detach failed", "guild", s.GuildID, "error", err)
		errs = append(errs, err)
	}

	c.registry.Clear(s.GuildID)
	return errs
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (c *Coordinator) notConnected() error {
	return &NotConnectedError{JoinCommand: c.joinCommand}
}

// Play searches for query and plays the top result, or appends it to the
// queue when something is already playing.
func (c *Coordinator) Play(ctx context.Context, guildID, textChannelID snowflake.ID, query string) (string, error) {
	s := c.registry.Get(guildID)
	if s == nil {
		return "", c.notConnected()
	}

	s.Lock()
	defer s.Unlock()

	if !s.State.Connected() {
		return "", c.notConnected()
	}

	tracks, err := c.search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", &NotFoundError{Query: query}
	}

	track := tracks[0]
	s.TextChannelID = textChannelID

	if s.State == player.StatePlaying {
		s.Add(track)
		slog.Debug("track queued", "guild", guildID, "title", track.Title, "queue", len(s.Queue))
		return reply.AddedToQueue(track), nil
	}

	s.CancelIdleTimer()
	if err := c.call(ctx, "play", func(ctx context.Context) error {
		return c.audio.Play(ctx, guildID, track)
	}); err != nil {
		c.startIdleTimer(s)
		return "", err
	}

	s.NowPlaying = &track
	s.State = player.StatePlaying
	slog.Info("playback started", "guild", guildID, "title", track.Title)
	return reply.AddedToQueue(track), nil
}

func (c *Coordinator) search(ctx context.Context, query string) ([]player.Track, error) {
	if c.cache != nil {
		if tracks, ok := c.cache.Get(query); ok {
			return tracks, nil
		}
	}

	var tracks []player.Track
	err := c.call(ctx, "search", func(ctx context.Context) error {
		var err error
		tracks, err = c.audio.Search(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil && len(tracks) > 0 {
		c.cache.Set(query, tracks)
	}
	return tracks, nil
}

// Skip stops the current track and starts the next queued one, if any.
func (c *Coordinator) Skip(ctx context.Context, guildID snowflake.ID) (string, error) {
	s := c.registry.Get(guildID)
	if s == nil {
		return reply.NothingToSkip, nil
	}

	s.Lock()
	defer s.Unlock()

	if s.State != player.StatePlaying || s.NowPlaying == nil {
		return reply.NothingToSkip, nil
	}

	skipped := *s.NowPlaying
	next, err := c.advance(ctx, s, true)
	if err != nil {
		return "", err
	}
	return reply.Skipped(skipped, next), nil
}

// advance starts the first queued track that the audio node accepts. When
// none does, the session goes idle and, if stop is set, the node's current
// track is stopped. Must be called with the session lock held.
func (c *Coordinator) advance(ctx context.Context, s *player.GuildSession, stop bool) (*player.Track, error) {
	var lastErr error
	for {
		next, ok := s.Pop()
		if !ok {
			break
		}
		err := c.call(ctx, "play", func(ctx context.Context) error {
			return c.audio.Play(ctx, s.GuildID, next)
		})
		if err == nil {
			s.NowPlaying = &next
			s.State = player.StatePlaying
			return &next, nil
		}
		slog.Warn("queued track failed to start", "guild", s.GuildID, "title", next.Title, "error", err)
		lastErr = err
	}

	s.NowPlaying = nil
	s.State = player.StateIdle
	if stop {
		if err := c.call(ctx, "stop", func(ctx context.Context) error {
			return c.audio.Stop(ctx, s.GuildID)
		}); err != nil && lastErr == nil {
			lastErr = err
		}
	}
	c.startIdleTimer(s)
	return nil, lastErr
}

// startIdleTimer must be called with the session lock held.
func (c *Coordinator) startIdleTimer(s *player.GuildSession) {
	if c.idleTimeout <= 0 {
		return
	}
	guildID := s.GuildID
	s.StartIdleTimer(c.idleTimeout, func(gen uint64) {
		c.Handle(context.Background(), Event{Kind: EventIdleTimeout, GuildID: guildID, idleGen: gen})
	})
}

func (c *Coordinator) NowPlaying(guildID snowflake.ID) string {
	s := c.registry.Get(guildID)
	if s == nil {
		return reply.NothingPlaying
	}

	snap := s.Snapshot()
	if snap.NowPlaying == nil {
		return reply.NothingPlaying
	}
	return reply.NowPlaying(*snap.NowPlaying, c.audio.Position(guildID))
}

func (c *Coordinator) Queue(guildID snowflake.ID) string {
	s := c.registry.Get(guildID)
	if s == nil {
		return reply.Queue(nil, nil, 0)
	}

	s.Lock()
	defer s.Unlock()

	var now *player.Track
	if s.NowPlaying != nil {
		np := *s.NowPlaying
		now = &np
	}
	return reply.Queue(now, s.QueueList(reply.QueueListLimit), len(s.Queue))
}

// Snapshot returns a copy of the guild's session, or false if the guild has
// never joined.
func (c *Coordinator) Snapshot(guildID snowflake.ID) (player.Snapshot, bool) {
	s := c.registry.Get(guildID)
	if s == nil {
		return player.Snapshot{}, false
	}
	return s.Snapshot(), true
}

// Run handles events until ctx is done or events is closed. Each event is
// handled on its own goroutine; per-guild ordering comes from the session lock
// and stale events are discarded by Handle.
func (c *Coordinator) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			c.wg.Wait()
			return
		case ev, ok := <-events:
			if !ok {
				c.wg.Wait()
				return
			}
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.Handle(ctx, ev)
			}()
		}
	}
}

func (c *Coordinator) Handle(ctx context.Context, ev Event) {
	s := c.registry.Get(ev.GuildID)
	if s == nil {
		return
	}

	s.Lock()
	defer s.Unlock()

	switch ev.Kind {
	case EventTrackEnded, EventTrackStuck:
		if s.State != player.StatePlaying || !c.isCurrent(s, ev.Encoded) {
			return
		}
		if ev.Kind == EventTrackEnded && !ev.MayStartNext {
			return
		}
		if ev.Kind == EventTrackStuck {
			slog.Warn("track stuck", "guild", ev.GuildID, "title", s.NowPlaying.Title)
		}

		next, err := c.advance(ctx, s, ev.Kind == EventTrackStuck)
		if err != nil {
			slog.Error("advance failed", "guild", ev.GuildID, "error", err)
			c.notify(ctx, s.TextChannelID, err.Error())
		}
		if next != nil {
			c.notify(ctx, s.TextChannelID, reply.Announce(*next))
		}

	case EventTrackException:
		slog.Error("track exception", "guild", ev.GuildID, "reason", ev.Reason)

	case EventVoiceClosed:
		// A close from an earlier connection, such as the echo of a leave
		// that arrives after the next join, must not end this one.
		if !s.State.Connected() || ev.VoiceEpoch != s.VoiceEpoch {
			return
		}
		slog.Info("voice connection closed externally", "guild", ev.GuildID)
		c.teardown(ctx, s)

	case EventIdleTimeout:
		if s.State != player.StateIdle || ev.idleGen != s.IdleGeneration() {
			return
		}
		textChannelID := s.TextChannelID
		c.teardown(ctx, s)
		slog.Info("disconnected after idle timeout", "guild", ev.GuildID)
		c.notify(ctx, textChannelID, reply.IdleDisconnect(c.idleTimeout))
	}
}

func (c *Coordinator) isCurrent(s *player.GuildSession, encoded string) bool {
	if encoded == "" || s.NowPlaying == nil {
		return true
	}
	return s.NowPlaying.Encoded == encoded
}

// Shutdown disconnects every connected guild.
func (c *Coordinator) Shutdown(ctx context.Context) {
	for _, s := range c.registry.Sessions() {
		s.Lock()
		if s.State.Connected() {
			c.teardown(ctx, s)
		}
		s.Unlock()
	}
}
