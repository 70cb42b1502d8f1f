package bot

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pkg/errors"

	"github.com/uzih05/lavalink-relay-bot/internal/playback"
)

type voiceStateUpdater interface {
	UpdateVoiceState(ctx context.Context, guildID snowflake.ID, channelID *snowflake.ID, selfMute bool, selfDeaf bool) error
}

// voiceGateway asks the gateway to move the bot into a voice channel and
// collects the voice state and voice server updates that answer it.
type voiceGateway struct {
	updater voiceStateUpdater
	pending map[snowflake.ID]*voiceWaiter
	// epochs counts attaches per guild so a close can be tied to its connection.
	epochs map[snowflake.ID]uint64
	mu     sync.Mutex
}

type voiceWaiter struct {
	handle    playback.VoiceHandle
	gotState  bool
	gotServer bool
	done      chan struct{}
}

func newVoiceGateway(updater voiceStateUpdater) *voiceGateway {
	return &voiceGateway{
		updater: updater,
		pending: make(map[snowflake.ID]*voiceWaiter),
		epochs:  make(map[snowflake.ID]uint64),
	}
}

func (v *voiceGateway) Attach(ctx context.Context, guildID, channelID snowflake.ID) (playback.VoiceHandle, error) {
	w := &voiceWaiter{
		handle: playback.VoiceHandle{GuildID: guildID, ChannelID: channelID},
		done:   make(chan struct{}),
	}

	v.mu.Lock()
	v.epochs[guildID]++
	w.handle.Epoch = v.epochs[guildID]
	v.pending[guildID] = w
	v.mu.Unlock()

	if err := v.updater.UpdateVoiceState(ctx, guildID, &channelID, false, false); err != nil {
		v.forget(guildID, w)
		return playback.VoiceHandle{}, errors.Wrap(err, "failed to update voice state")
	}

	select {
	case <-w.done:
		return w.handle, nil
	case <-ctx.Done():
		v.forget(guildID, w)
		return playback.VoiceHandle{}, errors.Wrap(ctx.Err(), "no voice server assigned")
	}
}

func (v *voiceGateway) Detach(ctx context.Context, guildID snowflake.ID) error {
	v.mu.Lock()
	delete(v.pending, guildID)
	v.mu.Unlock()

	if err := v.updater.UpdateVoiceState(ctx, guildID, nil, false, false); err != nil {
		return errors.Wrap(err, "failed to leave voice channel")
	}
	return nil
}

// Epoch returns the guild's latest attach.
func (v *voiceGateway) Epoch(guildID snowflake.ID) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.epochs[guildID]
}

func (v *voiceGateway) forget(guildID snowflake.ID, w *voiceWaiter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending[guildID] == w {
		delete(v.pending, guildID)
	}
}

// deliverState reports whether the update was consumed by a pending Attach.
// A leave while an Attach is pending is the echo of an earlier Detach and is
// swallowed.
func (v *voiceGateway) deliverState(guildID snowflake.ID, channelID *snowflake.ID, sessionID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	w, ok := v.pending[guildID]
	if !ok {
		return false
	}
	if channelID == nil {
		return true
	}
	if *channelID != w.handle.ChannelID {
		return false
	}
	w.handle.SessionID = sessionID
	w.gotState = true
	v.completeLocked(guildID, w)
	return true
}

// deliverServer reports whether the update answered a pending Attach.
func (v *voiceGateway) deliverServer(guildID snowflake.ID, token, endpoint string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	w, ok := v.pending[guildID]
	if !ok {
		return false
	}
	w.handle.Token = token
	w.handle.Endpoint = endpoint
	w.gotServer = true
	v.completeLocked(guildID, w)
	return true
}

func (v *voiceGateway) completeLocked(guildID snowflake.ID, w *voiceWaiter) {
	if w.gotState && w.gotServer {
		delete(v.pending, guildID)
		close(w.done)
	}
}
