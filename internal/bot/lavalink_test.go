package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
)

func TestSearchIdentifier(t *testing.T) {
	if got := searchIdentifier("https://youtu.be/abc"); got != "https://youtu.be/abc" {
		t.Errorf("url identifier = %q", got)
	}
	if got := searchIdentifier("song a"); got != lavalink.SearchTypeYouTube.Apply("song a") {
		t.Errorf("search identifier = %q", got)
	}
}

func TestToTrack(t *testing.T) {
	uri := "https://example.com/a"
	tr := toTrack(lavalink.Track{
		Encoded: "QAAA",
		Info: lavalink.TrackInfo{
			Identifier: "abc",
			Title:      "song A",
			Author:     "artist",
			Length:     lavalink.Duration(90_000),
			URI:        &uri,
		},
	})

	if tr.Title != "song A" || tr.Author != "artist" || tr.Encoded != "QAAA" || tr.Source != uri {
		t.Fatalf("track = %+v", tr)
	}
	if tr.Duration != 90*time.Second {
		t.Errorf("duration = %s", tr.Duration)
	}

	noURI := toTrack(lavalink.Track{Info: lavalink.TrackInfo{Identifier: "abc"}})
	if noURI.Source != "abc" {
		t.Errorf("source = %q, want identifier fallback", noURI.Source)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	long := strings.Repeat("é", 30)
	got := truncate(long, 10)
	if n := len([]rune(got)); n != 10 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncate = %q (%d runes)", got, n)
	}
}
