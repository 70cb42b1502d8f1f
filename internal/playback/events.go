package playback

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"
)

type EventKind int

const (
	EventTrackEnded EventKind = iota
	EventTrackStuck
	EventTrackException
	// EventVoiceClosed means the bot's voice connection went away without a leave command.
	EventVoiceClosed
	EventIdleTimeout
)

func (k EventKind) String() string {
	switch k {
	case EventTrackEnded:
		return "track_ended"
	case EventTrackStuck:
		return "track_stuck"
	case EventTrackException:
		return "track_exception"
	case EventVoiceClosed:
		return "voice_closed"
	case EventIdleTimeout:
		return "idle_timeout"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is an asynchronous notification from the audio node or voice gateway.
type Event struct {
	Kind    EventKind
	GuildID snowflake.ID
	// Encoded identifies the track the event refers to, if any.
	Encoded string
	// MayStartNext is set on track end when the queue may advance.
	MayStartNext bool
	Reason       string
	// VoiceEpoch is the voice connection a VoiceClosed event refers to.
	VoiceEpoch uint64

	idleGen uint64
}
