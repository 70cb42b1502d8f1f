package command

import (
	"context"
	"strings"
	"unicode"

	"github.com/disgoorg/snowflake/v2"
)

// Message is an inbound chat message, reduced to what commands need.
type Message struct {
	ID        snowflake.ID
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	AuthorID  snowflake.ID
	Content   string
}

// Invocation is a parsed command invocation. Handlers must not retain it.
type Invocation struct {
	Message Message
	// Name is the name the command was invoked by, which may be an alias.
	Name string
	// RawArgs is everything after the command name, trimmed.
	RawArgs string
	Args    []string
}

// Handler runs a command and returns the reply text. A returned error is
// reported to the invoking channel instead of the reply.
type Handler func(ctx context.Context, inv *Invocation) (string, error)

type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	MinArgs     int
	Handler     Handler
}

// HelpEntry is what the help command lists for one command.
type HelpEntry struct {
	Usage       string
	Aliases     []string
	Description string
}

// Parse splits content into a lowercase command name and its raw arguments.
// ok is false when content does not start with prefix or names no command.
func Parse(prefix, content string) (name, rawArgs string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}

	rest := strings.TrimSpace(content[len(prefix):])
	if rest == "" {
		return "", "", false
	}

	name = rest
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		name, rawArgs = rest[:i], rest[i:]
	}
	return strings.ToLower(name), strings.TrimSpace(rawArgs), true
}
