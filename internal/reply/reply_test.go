package reply

import (
	"strings"
	"testing"
	"time"

	"github.com/uzih05/lavalink-relay-bot/internal/command"
	"github.com/uzih05/lavalink-relay-bot/internal/player"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{65 * time.Second, "1:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNowPlaying(t *testing.T) {
	tr := player.Track{Title: "song A", Author: "artist", Duration: 2 * time.Minute}

	if got := NowPlaying(tr, 0); got != "Now playing: song A by artist `2:00`" {
		t.Errorf("NowPlaying = %q", got)
	}

	got := NowPlaying(tr, time.Minute)
	if !strings.Contains(got, "`1:00 / 2:00`") || !strings.Contains(got, "●") {
		t.Errorf("NowPlaying with position = %q", got)
	}

	live := NowPlaying(player.Track{Title: "radio", Stream: true}, time.Minute)
	if !strings.HasSuffix(live, "`LIVE`") {
		t.Errorf("NowPlaying stream = %q", live)
	}
}

func TestProgressBar(t *testing.T) {
	bar := progressBar(time.Minute, 2*time.Minute, 10)
	if n := len([]rune(bar)); n != 10 {
		t.Fatalf("bar length = %d", n)
	}
	if []rune(bar)[5] != '●' {
		t.Errorf("bar = %q, want marker at the midpoint", bar)
	}
	if progressBar(time.Minute, 0, 10) != "" {
		t.Error("zero total should render nothing")
	}
}

func TestQueue(t *testing.T) {
	if got := Queue(nil, nil, 0); got != NothingPlaying+"\n\n"+QueueEmpty {
		t.Errorf("empty queue = %q", got)
	}

	now := &player.Track{Title: "a", Duration: time.Minute}
	var pending []player.Track
	for i := 0; i < QueueListLimit; i++ {
		pending = append(pending, player.Track{Title: "t", Stream: i == 0})
	}
	got := Queue(now, pending, 12)
	if !strings.HasPrefix(got, "**Now playing:** a `1:00`") {
		t.Errorf("queue head = %q", got)
	}
	if !strings.Contains(got, "`1.` t `LIVE`") || !strings.Contains(got, "`10.` t") || strings.Contains(got, "`11.`") {
		t.Errorf("queue list = %q", got)
	}
	if !strings.HasSuffix(got, "... and 2 more") {
		t.Errorf("queue tail = %q", got)
	}
}

func TestSkipped(t *testing.T) {
	a, b := player.Track{Title: "a"}, player.Track{Title: "b"}
	if got := Skipped(a, nil); got != "Skipped: a" {
		t.Errorf("Skipped = %q", got)
	}
	if got := Skipped(a, &b); got != "Skipped: a\nNow playing: b" {
		t.Errorf("Skipped = %q", got)
	}
}

func TestHelp(t *testing.T) {
	got := Help("!", []command.HelpEntry{
		{Usage: "play <query>", Description: "Plays"},
		{Usage: "now_playing", Aliases: []string{"np"}, Description: "Shows"},
	})
	if !strings.Contains(got, "`!play <query>` Plays") || !strings.Contains(got, "`!now_playing` (`!np`) Shows") {
		t.Errorf("Help = %q", got)
	}
}

func TestPong(t *testing.T) {
	if got := Pong(42 * time.Millisecond); got != "Ping took 42 ms" {
		t.Errorf("Pong = %q", got)
	}
}
