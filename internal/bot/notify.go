package bot

import (
	"context"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/pkg/errors"
)

const maxMessageLength = 2000

// Reply sends text to channelID, referencing messageID when it is set.
func (b *Bot) Reply(ctx context.Context, channelID, messageID snowflake.ID, text string) error {
	builder := discord.NewMessageCreateBuilder().
		SetContent(truncate(text, maxMessageLength))
	if messageID != 0 {
		builder.SetMessageReferenceByID(messageID)
	}

	if _, err := b.Client.Rest().CreateMessage(channelID, builder.Build(), rest.WithCtx(ctx)); err != nil {
		return errors.Wrap(err, "failed to send message")
	}
	return nil
}

func (b *Bot) Notify(ctx context.Context, channelID snowflake.ID, text string) error {
	return b.Reply(ctx, channelID, 0, text)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
