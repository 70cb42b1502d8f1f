package bot

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"

	"github.com/uzih05/lavalink-relay-bot/internal/command"
	"github.com/uzih05/lavalink-relay-bot/internal/playback"
)

func (b *Bot) onMessageCreate(event *events.GuildMessageCreate) {
	if event.Message.Author.Bot {
		return
	}

	msg := command.Message{
		ID:        event.MessageID,
		GuildID:   event.GuildID,
		ChannelID: event.ChannelID,
		AuthorID:  event.Message.Author.ID,
		Content:   event.Message.Content,
	}
	go b.Dispatcher.Dispatch(context.Background(), msg)
}

func (b *Bot) onVoiceStateUpdate(event *events.GuildVoiceStateUpdate) {
	if event.VoiceState.UserID != b.Client.ApplicationID() {
		return
	}

	guildID := event.VoiceState.GuildID
	if b.voice.deliverState(guildID, event.VoiceState.ChannelID, event.VoiceState.SessionID) {
		return
	}

	if b.Lavalink.ExistingPlayer(guildID) != nil {
		b.Lavalink.OnVoiceStateUpdate(context.TODO(), guildID, event.VoiceState.ChannelID, event.VoiceState.SessionID)
	}

	if event.VoiceState.ChannelID == nil {
		b.publish(playback.Event{
			Kind:       playback.EventVoiceClosed,
			GuildID:    guildID,
			VoiceEpoch: b.voice.Epoch(guildID),
		})
	}
}

func (b *Bot) onVoiceServerUpdate(event *events.VoiceServerUpdate) {
	if event.Endpoint == nil {
		return
	}
	if b.voice.deliverServer(event.GuildID, event.Token, *event.Endpoint) {
		return
	}
	if b.Lavalink.ExistingPlayer(event.GuildID) != nil {
		b.Lavalink.OnVoiceServerUpdate(context.TODO(), event.GuildID, event.Token, *event.Endpoint)
	}
}

// publish never blocks the gateway's event loop; events that do not fit the
// buffer are dropped.
func (b *Bot) publish(ev playback.Event) {
	select {
	case b.events <- ev:
	default:
		slog.Warn("event dropped", "kind", ev.Kind, "guild", ev.GuildID)
	}
}

func (b *Bot) onTrackStart(p disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", p.GuildID(), "title", event.Track.Info.Title)
}

func (b *Bot) onTrackEnd(p disgolink.Player, event lavalink.TrackEndEvent) {
	b.publish(playback.Event{
		Kind:         playback.EventTrackEnded,
		GuildID:      p.GuildID(),
		Encoded:      event.Track.Encoded,
		MayStartNext: event.Reason.MayStartNext(),
		Reason:       string(event.Reason),
	})
}

func (b *Bot) onTrackException(p disgolink.Player, event lavalink.TrackExceptionEvent) {
	b.publish(playback.Event{
		Kind:    playback.EventTrackException,
		GuildID: p.GuildID(),
		Encoded: event.Track.Encoded,
		Reason:  event.Exception.Message,
	})
}

func (b *Bot) onTrackStuck(p disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", p.GuildID(), "threshold", event.Threshold)
	b.publish(playback.Event{
		Kind:    playback.EventTrackStuck,
		GuildID: p.GuildID(),
		Encoded: event.Track.Encoded,
	})
}
