package playback

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uzih05/lavalink-relay-bot/internal/player"
)

// VoiceHandle carries what the audio node needs to take over a voice
// connection the chat gateway negotiated.
type VoiceHandle struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	SessionID string
	Token     string
	Endpoint  string
	// Epoch increases with every attach of the guild.
	Epoch uint64
}

type VoiceService interface {
	Attach(ctx context.Context, guildID, channelID snowflake.ID) (VoiceHandle, error)
	Detach(ctx context.Context, guildID snowflake.ID) error
}

type AudioNode interface {
	Search(ctx context.Context, query string) ([]player.Track, error)
	CreateSession(ctx context.Context, guildID snowflake.ID, handle VoiceHandle) error
	DestroySession(ctx context.Context, guildID snowflake.ID) error
	Play(ctx context.Context, guildID snowflake.ID, track player.Track) error
	Stop(ctx context.Context, guildID snowflake.ID) error
	// Position reports the playback position of the guild's current track.
	Position(guildID snowflake.ID) time.Duration
}

// Notifier posts messages that are not replies to a command.
type Notifier interface {
	Notify(ctx context.Context, channelID snowflake.ID, text string) error
}
