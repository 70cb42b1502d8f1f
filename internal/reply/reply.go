// Package reply renders the text the bot sends back to a channel.
package reply

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uzih05/lavalink-relay-bot/internal/command"
	"github.com/uzih05/lavalink-relay-bot/internal/player"
)

const (
	NothingPlaying   = "Nothing is playing."
	NothingToSkip    = "Nothing to skip."
	AlreadyConnected = "Already connected to a voice channel."
	QueueEmpty       = "The queue is empty."

	// QueueListLimit caps how many pending tracks the queue reply lists.
	QueueListLimit = 10
)

func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if minutes >= 60 {
		hours := minutes / 60
		minutes = minutes % 60
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func trackDuration(t player.Track) string {
	if t.Stream {
		return "LIVE"
	}
	return FormatDuration(t.Duration)
}

func Pong(latency time.Duration) string {
	return fmt.Sprintf("Ping took %d ms", latency.Milliseconds())
}

func Joined(channelID snowflake.ID) string {
	return fmt.Sprintf("Joined <#%s>.", channelID)
}

func Left() string {
	return "Left the voice channel."
}

func AddedToQueue(t player.Track) string {
	return fmt.Sprintf("Added to queue: %s", t.Title)
}

func Skipped(skipped player.Track, next *player.Track) string {
	if next == nil {
		return fmt.Sprintf("Skipped: %s", skipped.Title)
	}
	return fmt.Sprintf("Skipped: %s\nNow playing: %s", skipped.Title, next.Title)
}

func NowPlaying(t player.Track, position time.Duration) string {
	var sb strings.Builder
	sb.WriteString("Now playing: ")
	sb.WriteString(t.Title)
	if t.Author != "" {
		sb.WriteString(" by ")
		sb.WriteString(t.Author)
	}

	if t.Stream {
		sb.WriteString("\n`LIVE`")
		return sb.String()
	}
	if position > 0 && t.Duration > 0 {
		fmt.Fprintf(&sb, "\n%s `%s / %s`", progressBar(position, t.Duration, 16), FormatDuration(position), FormatDuration(t.Duration))
	} else if t.Duration > 0 {
		fmt.Fprintf(&sb, " `%s`", FormatDuration(t.Duration))
	}
	return sb.String()
}

// Announce is posted when playback advances without a command.
func Announce(t player.Track) string {
	return fmt.Sprintf("Now playing: %s `%s`", t.Title, trackDuration(t))
}

func IdleDisconnect(timeout time.Duration) string {
	return fmt.Sprintf("Nothing played for %s, leaving the voice channel.", FormatDuration(timeout))
}

func progressBar(position, total time.Duration, length int) string {
	if total <= 0 {
		return ""
	}

	filled := int(float64(position) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}
	if filled < 0 {
		filled = 0
	}

	var sb strings.Builder
	for i := 0; i < length; i++ {
		switch {
		case i == filled:
			sb.WriteString("●")
		case i < filled:
			sb.WriteString("▬")
		default:
			sb.WriteString("━")
		}
	}
	return sb.String()
}

// Queue renders the head of the queue. pending holds at most QueueListLimit
// tracks and total is the full queue length.
func Queue(now *player.Track, pending []player.Track, total int) string {
	var sb strings.Builder

	if now != nil {
		fmt.Fprintf(&sb, "**Now playing:** %s `%s`\n\n", now.Title, trackDuration(*now))
	} else {
		sb.WriteString(NothingPlaying + "\n\n")
	}

	if total == 0 {
		sb.WriteString(QueueEmpty)
		return sb.String()
	}

	for i, t := range pending {
		fmt.Fprintf(&sb, "`%d.` %s `%s`\n", i+1, t.Title, trackDuration(t))
	}
	if more := total - len(pending); more > 0 {
		fmt.Fprintf(&sb, "... and %d more", more)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func Help(prefix string, entries []command.HelpEntry) string {
	var sb strings.Builder
	sb.WriteString("**Commands**\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "`%s%s`", prefix, e.Usage)
		if len(e.Aliases) > 0 {
			fmt.Fprintf(&sb, " (`%s%s`)", prefix, strings.Join(e.Aliases, "`, `"+prefix))
		}
		fmt.Fprintf(&sb, " %s\n", e.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
