package command

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"
)

const slowDown = "You're sending commands too quickly, slow down."

// Replier sends text to a channel.
type Replier interface {
	Reply(ctx context.Context, channelID, messageID snowflake.ID, text string) error
}

type Dispatcher struct {
	prefix   string
	replier  Replier
	commands []Command
	byName   map[string]*Command

	limit    rate.Limit
	burst    int
	limiters map[snowflake.ID]*rate.Limiter
	now      func() time.Time
	mu       sync.Mutex
}

type Option func(*Dispatcher)

// WithRateLimit limits every author to r commands per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(d *Dispatcher) {
		d.limit = r
		d.burst = burst
	}
}

func NewDispatcher(prefix string, replier Replier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		prefix:   prefix,
		replier:  replier,
		byName:   make(map[string]*Command),
		limit:    rate.Inf,
		limiters: make(map[snowflake.ID]*rate.Limiter),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Register adds commands. Later registrations win on name collisions.
func (d *Dispatcher) Register(cmds ...Command) {
	d.commands = append(d.commands, cmds...)

	d.byName = make(map[string]*Command, len(d.commands))
	for i := range d.commands {
		cmd := &d.commands[i]
		d.byName[strings.ToLower(cmd.Name)] = cmd
		for _, alias := range cmd.Aliases {
			d.byName[strings.ToLower(alias)] = cmd
		}
	}
}

func (d *Dispatcher) HelpEntries() []HelpEntry {
	entries := make([]HelpEntry, 0, len(d.commands))
	for _, c := range d.commands {
		entries = append(entries, HelpEntry{
			Usage:       c.Usage,
			Aliases:     c.Aliases,
			Description: c.Description,
		})
	}
	return entries
}

// Dispatch parses msg and runs the matching command, replying in the
// message's channel. It reports whether msg named a registered command.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) bool {
	name, rawArgs, ok := Parse(d.prefix, msg.Content)
	if !ok {
		return false
	}

	cmd, ok := d.byName[name]
	if !ok {
		return false
	}

	if !d.allow(msg.AuthorID) {
		d.reply(ctx, msg, slowDown)
		return true
	}

	inv := &Invocation{
		Message: msg,
		Name:    name,
		RawArgs: rawArgs,
		Args:    strings.Fields(rawArgs),
	}

	if len(inv.Args) < cmd.MinArgs {
		err := &ArgumentError{
			Command: d.prefix + cmd.Name,
			Usage:   d.prefix + cmd.Usage,
			Want:    cmd.MinArgs,
			Got:     len(inv.Args),
		}
		d.reply(ctx, msg, err.Error())
		return true
	}

	text, err := cmd.Handler(ctx, inv)
	if err != nil {
		slog.Info("command failed", "command", cmd.Name, "guild", msg.GuildID, "user", msg.AuthorID, "error", err)
		d.reply(ctx, msg, err.Error())
		return true
	}

	slog.Debug("command handled", "command", cmd.Name, "guild", msg.GuildID, "user", msg.AuthorID)
	if text != "" {
		d.reply(ctx, msg, text)
	}
	return true
}

func (d *Dispatcher) allow(userID snowflake.ID) bool {
	if d.limit == rate.Inf {
		return true
	}

	d.mu.Lock()
	lim, ok := d.limiters[userID]
	if !ok {
		// A limiter with a full bucket behaves like a new one.
		now := d.now()
		for id, l := range d.limiters {
			if l.TokensAt(now) >= float64(l.Burst()) {
				delete(d.limiters, id)
			}
		}
		lim = rate.NewLimiter(d.limit, d.burst)
		d.limiters[userID] = lim
	}
	d.mu.Unlock()

	return lim.Allow()
}

func (d *Dispatcher) reply(ctx context.Context, msg Message, text string) {
	if err := d.replier.Reply(ctx, msg.ChannelID, msg.ID, text); err != nil {
		slog.Error("reply failed", "channel", msg.ChannelID, "error", err)
	}
}
