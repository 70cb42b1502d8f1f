package playback

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrTimeout = errors.New("timed out")

type NoVoiceChannelError struct{}

func (e *NoVoiceChannelError) Error() string {
	return "You need to be in a voice channel first."
}

type NotConnectedError struct {
	JoinCommand string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("I'm not in a voice channel, use `%s` first.", e.JoinCommand)
}

// ExternalServiceError wraps a failed voice session or audio node call.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No results found for: %s", e.Query)
}
