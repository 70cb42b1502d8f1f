package bot

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/uzih05/lavalink-relay-bot/internal/command"
	"github.com/uzih05/lavalink-relay-bot/internal/reply"
)

func (b *Bot) commands() []command.Command {
	return []command.Command{
		{
			Name:        "ping",
			Usage:       "ping",
			Description: "Shows the gateway latency",
			Handler:     b.handlePing,
		},
		{
			Name:        "join",
			Usage:       "join",
			Description: "Joins your voice channel",
			Handler:     b.handleJoin,
		},
		{
			Name:        "leave",
			Usage:       "leave",
			Description: "Stops playback and leaves the voice channel",
			Handler:     b.handleLeave,
		},
		{
			Name:        "play",
			Usage:       "play <query>",
			Description: "Plays the top search result for a query or URL, or queues it",
			MinArgs:     1,
			Handler:     b.handlePlay,
		},
		{
			Name:        "skip",
			Usage:       "skip",
			Description: "Skips the current track",
			Handler:     b.handleSkip,
		},
		{
			Name:        "now_playing",
			Aliases:     []string{"np"},
			Usage:       "now_playing",
			Description: "Shows the current track",
			Handler:     b.handleNowPlaying,
		},
		{
			Name:        "queue",
			Aliases:     []string{"q"},
			Usage:       "queue",
			Description: "Lists the queued tracks",
			Handler:     b.handleQueue,
		},
		{
			Name:        "help",
			Usage:       "help",
			Description: "Shows this help",
			Handler:     b.handleHelp,
		},
	}
}

func (b *Bot) handlePing(_ context.Context, _ *command.Invocation) (string, error) {
	return reply.Pong(b.Client.Gateway().Latency()), nil
}

// userVoiceChannel returns the voice channel the user is in, zero if none.
func (b *Bot) userVoiceChannel(guildID, userID snowflake.ID) snowflake.ID {
	vs, ok := b.Client.Caches().VoiceState(guildID, userID)
	if !ok || vs.ChannelID == nil {
		return 0
	}
	return *vs.ChannelID
}

func (b *Bot) handleJoin(ctx context.Context, inv *command.Invocation) (string, error) {
	msg := inv.Message
	return b.Coordinator.Join(ctx, msg.GuildID, msg.ChannelID, b.userVoiceChannel(msg.GuildID, msg.AuthorID))
}

func (b *Bot) handleLeave(ctx context.Context, inv *command.Invocation) (string, error) {
	return b.Coordinator.Leave(ctx, inv.Message.GuildID)
}

func (b *Bot) handlePlay(ctx context.Context, inv *command.Invocation) (string, error) {
	return b.Coordinator.Play(ctx, inv.Message.GuildID, inv.Message.ChannelID, inv.RawArgs)
}

func (b *Bot) handleSkip(ctx context.Context, inv *command.Invocation) (string, error) {
	return b.Coordinator.Skip(ctx, inv.Message.GuildID)
}

func (b *Bot) handleNowPlaying(_ context.Context, inv *command.Invocation) (string, error) {
	return b.Coordinator.NowPlaying(inv.Message.GuildID), nil
}

func (b *Bot) handleQueue(_ context.Context, inv *command.Invocation) (string, error) {
	return b.Coordinator.Queue(inv.Message.GuildID), nil
}

func (b *Bot) handleHelp(_ context.Context, _ *command.Invocation) (string, error) {
	return reply.Help(b.Dispatcher.Prefix(), b.Dispatcher.HelpEntries()), nil
}
