package bot

import (
	"context"
	"regexp"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/pkg/errors"

	"github.com/uzih05/lavalink-relay-bot/internal/player"
	"github.com/uzih05/lavalink-relay-bot/internal/playback"
)

var (
	urlPattern = regexp.MustCompile(`^https?://`)

	errNoNode   = errors.New("no lavalink node available")
	errNoPlayer = errors.New("no lavalink player for guild")
)

// audioNode adapts a disgolink client to playback.AudioNode.
type audioNode struct {
	link disgolink.Client
}

func newAudioNode(link disgolink.Client) *audioNode {
	return &audioNode{link: link}
}

func searchIdentifier(query string) string {
	if urlPattern.MatchString(query) {
		return query
	}
	return lavalink.SearchTypeYouTube.Apply(query)
}

func (a *audioNode) Search(ctx context.Context, query string) ([]player.Track, error) {
	node := a.link.BestNode()
	if node == nil {
		return nil, errNoNode
	}

	var (
		found   []lavalink.Track
		loadErr error
	)
	node.LoadTracksHandler(ctx, searchIdentifier(query), disgolink.NewResultHandler(
		func(track lavalink.Track) {
			found = []lavalink.Track{track}
		},
		func(playlist lavalink.Playlist) {
			found = playlist.Tracks
		},
		func(tracks []lavalink.Track) {
			found = tracks
		},
		func() {},
		func(err error) {
			loadErr = err
		},
	))
	if loadErr != nil {
		return nil, errors.Wrap(loadErr, "failed to load tracks")
	}

	tracks := make([]player.Track, 0, len(found))
	for _, t := range found {
		tracks = append(tracks, toTrack(t))
	}
	return tracks, nil
}

func toTrack(t lavalink.Track) player.Track {
	source := t.Info.Identifier
	if t.Info.URI != nil {
		source = *t.Info.URI
	}
	return player.Track{
		Title:    t.Info.Title,
		Author:   t.Info.Author,
		Source:   source,
		Duration: toDuration(t.Info.Length),
		Stream:   t.Info.IsStream,
		Encoded:  t.Encoded,
	}
}

func toDuration(d lavalink.Duration) time.Duration {
	return time.Duration(d) * time.Millisecond
}

// CreateSession hands the negotiated voice connection over to the node.
func (a *audioNode) CreateSession(ctx context.Context, guildID snowflake.ID, handle playback.VoiceHandle) error {
	if a.link.BestNode() == nil {
		return errNoNode
	}

	// Player creates the guild's player on the best node. The voice updates
	// below are only forwarded for guilds that already have one.
	_ = a.link.Player(guildID)
	channelID := handle.ChannelID
	a.link.OnVoiceStateUpdate(ctx, guildID, &channelID, handle.SessionID)
	a.link.OnVoiceServerUpdate(ctx, guildID, handle.Token, handle.Endpoint)
	return nil
}

func (a *audioNode) DestroySession(ctx context.Context, guildID snowflake.ID) error {
	p := a.link.ExistingPlayer(guildID)
	if p == nil {
		return nil
	}

	err := p.Update(ctx, lavalink.WithNullTrack())
	a.link.RemovePlayer(guildID)
	if err != nil {
		return errors.Wrap(err, "failed to stop player")
	}
	return nil
}

func (a *audioNode) Play(ctx context.Context, guildID snowflake.ID, track player.Track) error {
	p := a.link.ExistingPlayer(guildID)
	if p == nil {
		return errNoPlayer
	}
	if err := p.Update(ctx, lavalink.WithTrack(lavalink.Track{Encoded: track.Encoded})); err != nil {
		return errors.Wrapf(err, "failed to play %q", track.Title)
	}
	return nil
}

func (a *audioNode) Stop(ctx context.Context, guildID snowflake.ID) error {
	p := a.link.ExistingPlayer(guildID)
	if p == nil {
		return errNoPlayer
	}
	return errors.Wrap(p.Update(ctx, lavalink.WithNullTrack()), "failed to stop player")
}

func (a *audioNode) Position(guildID snowflake.ID) time.Duration {
	p := a.link.ExistingPlayer(guildID)
	if p == nil {
		return 0
	}
	return toDuration(p.Position())
}
