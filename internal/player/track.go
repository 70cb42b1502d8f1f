package player

import "time"

// Track describes a playable item resolved by the audio node.
type Track struct {
	Title    string
	Author   string
	Source   string
	Duration time.Duration
	Stream   bool

	// Encoded is the audio node's opaque handle for the track.
	Encoded string
}
